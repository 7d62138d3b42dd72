package repository

import (
	"context"
	"encoding/json"
	"io"

	"github.com/fastygo/todolist/domain"
)

// RawDocument is a stored document as read from a backend, before migration
// and validation. A nil Version means the document predates versioning.
type RawDocument struct {
	Version  *int            `json:"version,omitempty"`
	Todos    json.RawMessage `json:"todos"`
	Settings json.RawMessage `json:"settings"`
}

// DefaultRawDocument is what a backend returns on first run, when nothing has
// been stored yet. It carries no version so the loader stamps one.
func DefaultRawDocument() *RawDocument {
	return &RawDocument{
		Todos:    json.RawMessage(`[]`),
		Settings: json.RawMessage(`{"theme":"light"}`),
	}
}

// DocumentRepository persists the whole document as a single unit.
type DocumentRepository interface {
	// Load returns the stored document, or DefaultRawDocument when nothing has
	// been stored yet. Any other failure is returned as an IO domain error.
	Load(ctx context.Context) (*RawDocument, error)
	// Save replaces the stored document. A reader never observes a partially
	// written document.
	Save(ctx context.Context, doc domain.Document) error
	// Ping reports whether the backend is reachable and writable.
	Ping(ctx context.Context) error
	// Snapshot writes a consistent copy of the stored data to w.
	Snapshot(w io.Writer) error
	// Name identifies the backend in logs and health output.
	Name() string
}
