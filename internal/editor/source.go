package editor

import "github.com/Bluenz7/pdfredactor/internal/documents"

// Source kinds.
const (
	KindSaved     = "saved"
	KindEphemeral = "ephemeral"
)

// Source says where edits are delivered: to a stored document or to a callback.
// Implementations are Saved and Ephemeral.
type Source interface {
	Kind() string
	source()
}

// Saved edits a document persisted in a store.
type Saved struct {
	Document documents.Document
}

func (Saved) Kind() string { return KindSaved }
func (Saved) source()      {}

// Ephemeral edits bytes that are not persisted.
// OnUpdate, when set, receives a copy of the bytes after every edit.
type Ephemeral struct {
	OnUpdate func(data []byte)
}

func (Ephemeral) Kind() string { return KindEphemeral }
func (Ephemeral) source()      {}
