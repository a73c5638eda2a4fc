package editor

import "errors"

var (
	ErrNoSelection  = errors.New("no page selected")
	ErrInvalidWidth = errors.New("preview width must be positive")
)
