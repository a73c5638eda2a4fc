package editor

import (
	"bytes"
	"image"
	"slices"
)

// Snapshot is an immutable view of editor state.
type Snapshot struct {
	Source   Source
	Data     []byte
	Previews []image.Image
	Width    float64
	Selected int
}

// HasSelection reports whether a page is selected.
func (s Snapshot) HasSelection() bool {
	return s.Selected != noSelection
}

// Snapshot captures the current state. Selected is -1 without a selection.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Source:   e.source,
		Data:     bytes.Clone(e.data),
		Previews: slices.Clone(e.previews),
		Width:    e.width,
		Selected: e.selected,
	}
}
