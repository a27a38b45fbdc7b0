// Package apperr defines the error taxonomy shared across Vordr.
package apperr

import "errors"

var (
	// ErrNotFound: no note exists for the requested path.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists: a note already exists for the normalized path.
	ErrAlreadyExists = errors.New("already exists")
	// ErrSchemaInvalid: the note record failed schema validation.
	ErrSchemaInvalid = errors.New("schema invalid")
	// ErrIOFailure: disk read/write/permission failure.
	ErrIOFailure = errors.New("io failure")
)
