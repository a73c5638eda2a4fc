package api

import (
	"github.com/Bluenz7/pdfredactor/internal/collection"
	"github.com/Bluenz7/pdfredactor/internal/merge"
)

// Domain holds the engine systems behind the API.
type Domain struct {
	Merge      *merge.Engine
	Collection *collection.Manager
}

// NewDomain creates the engine systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	engine := merge.New(runtime.Codec, runtime.Store, runtime.Logger)

	return &Domain{
		Merge:      engine,
		Collection: collection.New(runtime.Store, engine, runtime.Logger),
	}
}
