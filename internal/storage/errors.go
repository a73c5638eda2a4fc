package storage

import "errors"

var (
	ErrNotFound         = errors.New("storage: key not found")
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey covers empty keys and keys escaping the base path.
	ErrInvalidKey = errors.New("storage: invalid key")
)
