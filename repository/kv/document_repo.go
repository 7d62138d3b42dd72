// Package kv stores the document as separate keys in a local key/value store,
// mirroring how the web client keeps its copy in browser storage.
package kv

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"

	"github.com/fastygo/todolist/domain"
	kvstore "github.com/fastygo/todolist/internal/infrastructure/kv"
	"github.com/fastygo/todolist/repository"
)

// Storage keys.
const (
	KeyTodos   = "todos"
	KeyTheme   = "themePreference"
	KeyVersion = "version"
)

type documentRepository struct {
	store  *kvstore.Store
	logger *zap.Logger
}

// NewDocumentRepository returns a repository over an open key/value store.
func NewDocumentRepository(store *kvstore.Store, logger *zap.Logger) repository.DocumentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentRepository{store: store, logger: logger}
}

func (r *documentRepository) Name() string {
	return "bolt"
}

// Load reads the three keys in one transaction. Each key is independent: a
// missing todos key loads as an empty list, a missing or unreadable theme as
// the default, and a missing version as unversioned. Malformed todos bytes
// are handed on untouched so validation rejects them.
func (r *documentRepository) Load(ctx context.Context) (*repository.RawDocument, error) {
	values, err := r.store.GetMany(KeyTodos, KeyTheme, KeyVersion)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeIO, "read local store", err)
	}

	doc := repository.DefaultRawDocument()

	if raw, ok := values[KeyTodos]; ok {
		doc.Todos = json.RawMessage(raw)
	}

	if raw, ok := values[KeyTheme]; ok {
		var theme string
		if err := json.Unmarshal(raw, &theme); err != nil {
			r.logger.Error("error loading theme from local store", zap.Error(err))
		} else {
			settings, _ := json.Marshal(map[string]string{"theme": theme})
			doc.Settings = settings
		}
	}

	if raw, ok := values[KeyVersion]; ok {
		var version int
		if err := json.Unmarshal(raw, &version); err != nil {
			r.logger.Error("error loading version from local store", zap.Error(err))
		} else {
			doc.Version = &version
		}
	}

	return doc, nil
}

// Save writes every key in one bbolt transaction.
func (r *documentRepository) Save(ctx context.Context, doc domain.Document) error {
	todos := doc.Todos
	if todos == nil {
		todos = []domain.Task{}
	}
	todosJSON, err := json.Marshal(todos)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "encode todos", err)
	}
	themeJSON, err := json.Marshal(doc.Settings.Theme)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "encode theme", err)
	}
	versionJSON, err := json.Marshal(doc.Version)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "encode version", err)
	}

	if err := r.store.PutMany(map[string][]byte{
		KeyTodos:   todosJSON,
		KeyTheme:   themeJSON,
		KeyVersion: versionJSON,
	}); err != nil {
		r.logger.Error("error saving to local store", zap.Error(err))
		return domain.WrapError(domain.ErrCodeIO, "write local store", err)
	}
	return nil
}

func (r *documentRepository) Ping(ctx context.Context) error {
	if _, err := r.store.Size(); err != nil {
		return domain.WrapError(domain.ErrCodeIO, "local store unavailable", err)
	}
	return nil
}

func (r *documentRepository) Snapshot(w io.Writer) error {
	if _, err := r.store.WriteTo(w); err != nil {
		return domain.WrapError(domain.ErrCodeIO, "snapshot local store", err)
	}
	return nil
}
