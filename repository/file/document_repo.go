// Package file stores the document as one JSON file on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/todolist/domain"
	"github.com/fastygo/todolist/internal/infrastructure/filesys"
	"github.com/fastygo/todolist/repository"
)

const (
	// TempSuffix is appended to the document path for the staging file. It
	// lives in the same directory so the final rename stays on one filesystem.
	TempSuffix = ".tmp"

	filePerm = 0o644
	dirPerm  = 0o755
)

type documentRepository struct {
	path   string
	fs     filesys.FS
	logger *zap.Logger

	// mu keeps Snapshot from reading between a Save's rename and its return.
	// It does not protect against other processes writing the same file.
	mu sync.RWMutex
}

// Option customises a file repository.
type Option func(*documentRepository)

// WithFS swaps the filesystem, used by tests to inject failures.
func WithFS(fsys filesys.FS) Option {
	return func(r *documentRepository) {
		if fsys != nil {
			r.fs = fsys
		}
	}
}

// NewDocumentRepository returns a repository backed by the JSON file at path.
// The parent directory is created if missing.
func NewDocumentRepository(path string, logger *zap.Logger, opts ...Option) (repository.DocumentRepository, error) {
	if path == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "data file path is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &documentRepository{
		path:   filepath.Clean(path),
		fs:     filesys.NewOS(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.path), dirPerm); err != nil {
		return nil, domain.WrapError(domain.ErrCodeIO, "create data directory", err)
	}
	return r, nil
}

func (r *documentRepository) Name() string {
	return "file"
}

func (r *documentRepository) Load(ctx context.Context) (*repository.RawDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Info("data file not found, starting with an empty document", zap.String("path", r.path))
			return repository.DefaultRawDocument(), nil
		}
		return nil, domain.WrapError(domain.ErrCodeIO, "read data file", err)
	}

	var doc repository.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrCodeIO, fmt.Sprintf("decode data file %s", r.path), err)
	}
	return &doc, nil
}

// Save writes the document to <path>.tmp and renames it over <path>. If any
// step fails the staging file is removed on a best-effort basis and the
// original error is returned; the real path keeps its previous content.
func (r *documentRepository) Save(ctx context.Context, doc domain.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "encode document", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := r.path + TempSuffix
	if err := r.writeThenRename(tmp, data); err != nil {
		r.logger.Error("failed to write data file", zap.String("path", r.path), zap.Error(err))
		if rmErr := r.fs.Remove(tmp); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			r.logger.Debug("temp file cleanup failed", zap.String("path", tmp), zap.Error(rmErr))
		}
		return domain.WrapError(domain.ErrCodeIO, "write data file", err)
	}
	return nil
}

func (r *documentRepository) writeThenRename(tmp string, data []byte) error {
	if err := r.fs.WriteFile(tmp, data, filePerm); err != nil {
		return err
	}
	return r.fs.Rename(tmp, r.path)
}

// Ping checks that the data directory exists and is a directory.
func (r *documentRepository) Ping(ctx context.Context) error {
	info, err := r.fs.Stat(filepath.Dir(r.path))
	if err != nil {
		return domain.WrapError(domain.ErrCodeIO, "stat data directory", err)
	}
	if !info.IsDir() {
		return domain.NewError(domain.ErrCodeIO, fmt.Sprintf("%s is not a directory", filepath.Dir(r.path)))
	}
	return nil
}

// Snapshot copies the current data file to w. A missing file snapshots as the
// default document.
func (r *documentRepository) Snapshot(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := r.fs.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		data, err = json.MarshalIndent(domain.NewDocument(), "", "  ")
	}
	if err != nil {
		return domain.WrapError(domain.ErrCodeIO, "snapshot data file", err)
	}
	_, err = w.Write(data)
	return err
}
