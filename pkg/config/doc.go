// Package config loads environment-driven configuration structs using
// struct tags, with optional .env file support for local development.
//
// Each package that needs configuration declares its own Config struct
// with `env` tags and default values; this package only provides the
// parsing entry points.
package config
