package todo

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/todolist/domain"
	"github.com/fastygo/todolist/internal/ordering"
	"github.com/fastygo/todolist/internal/schema"
	appLogger "github.com/fastygo/todolist/pkg/logger"
	"github.com/fastygo/todolist/repository"
)

// UseCase owns the in-memory task collection and settings. It is the only
// writer: every read hands out copies, and every mutation is applied to a
// copy, persisted as a whole document, and only then committed.
//
// All operations are serialized by mu, so the collection behaves as if
// requests ran one at a time. Nothing guards against a second process
// writing the same store.
type UseCase struct {
	repo   repository.DocumentRepository
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	doc      domain.Document
	lastID   int64
	lastSave time.Time
	loaded   bool
}

// Option customises a UseCase.
type Option func(*UseCase)

// WithClock replaces time.Now, used for id generation and save timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// Stats is a point-in-time summary for health reporting.
type Stats struct {
	Loaded   bool      `json:"loaded"`
	Tasks    int       `json:"tasks"`
	LastSave time.Time `json:"last_save,omitempty"`
}

// New returns a UseCase holding an empty document until Load is called.
func New(repo repository.DocumentRepository, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		doc:    domain.NewDocument(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Load reads the stored document and replaces the in-memory state.
//
// Records are migrated then validated. A collection that fails validation is
// replaced by an empty one and a warning is logged, so a corrupt store never
// prevents startup; the same applies to settings. A document without a
// version is stamped with the current one and written back immediately,
// unless either part fell back: the stored data is then left untouched on
// disk until the next mutation. Storage failures other than "nothing stored
// yet" are returned.
func (uc *UseCase) Load(ctx context.Context) error {
	log := appLogger.WithRequestID(ctx, uc.logger).With(zap.String("store", uc.repo.Name()))

	uc.mu.Lock()
	defer uc.mu.Unlock()

	raw, err := uc.repo.Load(ctx)
	if err != nil {
		return err
	}

	doc := domain.NewDocument()

	log.Info("checking data version for migration")
	stamped := false
	switch {
	case raw.Version == nil:
		log.Info("data is version 0, migrating", zap.Int("to", domain.CurrentVersion))
		stamped = true
	case *raw.Version > domain.CurrentVersion:
		log.Info("data is newer than this build, loading as-is", zap.Int("version", *raw.Version))
		doc.Version = *raw.Version
	default:
		log.Info("no migration needed", zap.Int("version", *raw.Version))
		doc.Version = *raw.Version
	}

	fellBack := false

	todos, err := schema.DecodeTodos(raw.Todos)
	switch {
	case err == nil:
		doc.Todos = todos
	case errors.Is(err, domain.ErrValidation):
		log.Warn("validation failed for todos, data might be corrupted or not of expected type; starting empty", zap.Error(err))
		fellBack = true
	default:
		return err
	}

	settings, err := schema.DecodeSettings(raw.Settings)
	switch {
	case err == nil:
		doc.Settings = settings
	case errors.Is(err, domain.ErrValidation):
		log.Warn("validation failed for settings, using defaults", zap.Error(err))
		fellBack = true
	default:
		return err
	}

	switch {
	case stamped && fellBack:
		log.Warn("stored data failed validation, leaving it unstamped on disk")
	case stamped:
		if err := uc.repo.Save(context.WithoutCancel(ctx), doc); err != nil {
			return err
		}
		uc.lastSave = uc.now()
		log.Info("migration complete", zap.Int("version", doc.Version))
	}

	uc.doc = doc
	uc.lastID = maxID(doc.Todos)
	uc.loaded = true
	log.Info("todos loaded", zap.Int("count", len(doc.Todos)), zap.String("theme", string(doc.Settings.Theme)))
	return nil
}

// List returns the collection in display order. The stored order is never
// changed by listing.
func (uc *UseCase) List(ctx context.Context) []domain.Task {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return ordering.Sort(uc.doc.Todos)
}

// Get returns one task by id.
func (uc *UseCase) Get(ctx context.Context, id int64) (domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.doc.IndexOf(id)
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return uc.doc.Todos[i].Clone(), nil
}

// Add appends a new task with a fresh id, status todo and no flag. Text is
// stored as given; trimming and emptiness checks belong to the caller.
func (uc *UseCase) Add(ctx context.Context, text string, dueDate *string, tags []string) (domain.Task, error) {
	var created domain.Task
	err := uc.mutate(ctx, "add", func(doc *domain.Document) error {
		created = domain.Task{
			ID:      uc.nextID(),
			Text:    text,
			Status:  domain.StatusTodo,
			DueDate: cloneDue(dueDate),
			Tags:    domain.CloneTags(tags),
			Flagged: false,
		}
		doc.Todos = append(doc.Todos, created)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return created.Clone(), nil
}

// Update replaces text, due date and tags of a task. Status and flag are left
// untouched.
func (uc *UseCase) Update(ctx context.Context, id int64, text string, dueDate *string, tags []string) (domain.Task, error) {
	return uc.mutateTask(ctx, "update", id, func(t *domain.Task) error {
		t.Text = text
		t.DueDate = cloneDue(dueDate)
		t.Tags = domain.CloneTags(tags)
		return nil
	})
}

// SetStatus overwrites the status of a task.
func (uc *UseCase) SetStatus(ctx context.Context, id int64, status domain.Status) (domain.Task, error) {
	if !status.Valid() {
		return domain.Task{}, domain.ErrInvalidStatus
	}
	return uc.mutateTask(ctx, "set_status", id, func(t *domain.Task) error {
		t.Status = status
		return nil
	})
}

// ToggleFlag flips the flagged marker of a task.
func (uc *UseCase) ToggleFlag(ctx context.Context, id int64) (domain.Task, error) {
	return uc.mutateTask(ctx, "toggle_flag", id, func(t *domain.Task) error {
		t.Flagged = !t.Flagged
		return nil
	})
}

// Delete removes a task.
func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.mutate(ctx, "delete", func(doc *domain.Document) error {
		i := doc.IndexOf(id)
		if i < 0 {
			return domain.ErrTaskNotFound
		}
		doc.Todos = append(doc.Todos[:i], doc.Todos[i+1:]...)
		return nil
	})
}

// Theme returns the stored settings.
func (uc *UseCase) Theme(ctx context.Context) domain.Settings {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.doc.Settings
}

// SetTheme persists a new theme preference.
func (uc *UseCase) SetTheme(ctx context.Context, theme domain.Theme) (domain.Settings, error) {
	if !theme.Valid() {
		return domain.Settings{}, domain.ErrInvalidTheme
	}
	var settings domain.Settings
	err := uc.mutate(ctx, "set_theme", func(doc *domain.Document) error {
		doc.Settings.Theme = theme
		settings = doc.Settings
		return nil
	})
	return settings, err
}

// Stats summarises the collection for the health monitor.
func (uc *UseCase) Stats() Stats {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return Stats{
		Loaded:   uc.loaded,
		Tasks:    len(uc.doc.Todos),
		LastSave: uc.lastSave,
	}
}

func (uc *UseCase) mutateTask(ctx context.Context, op string, id int64, fn func(t *domain.Task) error) (domain.Task, error) {
	var updated domain.Task
	err := uc.mutate(ctx, op, func(doc *domain.Document) error {
		i := doc.IndexOf(id)
		if i < 0 {
			return domain.ErrTaskNotFound
		}
		if err := fn(&doc.Todos[i]); err != nil {
			return err
		}
		updated = doc.Todos[i].Clone()
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// mutate applies fn to a copy of the document and persists it. The copy only
// becomes the live state once the store has accepted it, so a failed write
// leaves memory exactly as it was. Once started the write is not cancelled.
func (uc *UseCase) mutate(ctx context.Context, op string, fn func(doc *domain.Document) error) error {
	log := appLogger.WithRequestID(ctx, uc.logger).With(zap.String("operation", op))

	uc.mu.Lock()
	defer uc.mu.Unlock()

	lastID := uc.lastID
	next := uc.doc.Clone()
	if err := fn(&next); err != nil {
		uc.lastID = lastID
		return err
	}
	next.Version = max(next.Version, domain.CurrentVersion)

	if err := uc.repo.Save(context.WithoutCancel(ctx), next); err != nil {
		uc.lastID = lastID
		log.Error("failed to persist todos", zap.Error(err))
		return err
	}

	uc.doc = next
	uc.lastSave = uc.now()
	log.Debug("todos persisted", zap.Int("count", len(next.Todos)))
	return nil
}

// nextID returns a millisecond timestamp id, bumped past the previous id when
// two tasks are created within the same millisecond. Callers hold mu.
func (uc *UseCase) nextID() int64 {
	id := uc.now().UnixMilli()
	if id <= uc.lastID {
		id = uc.lastID + 1
	}
	uc.lastID = id
	return id
}

func maxID(tasks []domain.Task) int64 {
	var id int64
	for _, t := range tasks {
		id = max(id, t.ID)
	}
	return id
}

func cloneDue(due *string) *string {
	if due == nil {
		return nil
	}
	d := *due
	return &d
}
