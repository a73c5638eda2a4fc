package documents

import "errors"

// Domain errors for document persistence.
var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicate   = errors.New("document already exists")
	ErrMapping     = errors.New("stored document is missing a required field")
	ErrPersistence = errors.New("document persistence failed")
)
