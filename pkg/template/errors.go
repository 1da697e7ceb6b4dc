package template

import "errors"

var (
	// ErrTemplateNotFound is returned when a template is not found.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateIDRequired is returned when storing a template without an ID.
	ErrTemplateIDRequired = errors.New("template ID is required")
)
