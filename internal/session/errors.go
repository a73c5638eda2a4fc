package session

import "errors"

var (
	ErrEmptyName = errors.New("draft name is empty")
	ErrNoPages   = errors.New("draft has no pages")
)
