package template

import "context"

// Storage handles template persistence and retrieval.
type Storage interface {
	// Put stores or replaces a template.
	Put(ctx context.Context, tmpl Template) error

	// Get retrieves a template by ID.
	Get(ctx context.Context, id string) (*Template, error)

	// List returns all stored templates.
	List(ctx context.Context) ([]Template, error)

	// Delete removes a template.
	Delete(ctx context.Context, id string) error
}
