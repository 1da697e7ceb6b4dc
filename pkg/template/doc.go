// Package template renders named notification templates by
// substituting {{key}} placeholders in the title and body.
//
// Substitution is deliberately lossy-but-safe: a placeholder with no
// matching variable becomes an empty string instead of leaking the
// literal token to the end user. This behavior is load-bearing and
// covered by tests.
package template
