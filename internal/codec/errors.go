// Package codec encodes raster images into PDF documents and decodes, edits,
// merges and rasterizes PDF bytes. Every operation is pure: inputs are never
// mutated and new byte slices are returned.
package codec

import "errors"

// Codec errors.
var (
	ErrInvalidData      = errors.New("data is not a parseable pdf document")
	ErrIndexOutOfRange  = errors.New("page index out of range")
	ErrEmptySelection   = errors.New("page selection is empty")
	ErrInvalidRotation  = errors.New("rotation must be a multiple of 90 degrees")
	ErrNoImages         = errors.New("no images to encode")
	ErrInvalidPageRange = errors.New("invalid page range")
	ErrEncodeFailed     = errors.New("encode failed")
	ErrRenderFailed     = errors.New("render failed")
)
