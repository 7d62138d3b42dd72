package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/todolist/domain"
)

// backupTimeLayout sorts lexically in time order.
const backupTimeLayout = "20060102T150405.000Z"

// Snapshotter is a store that can copy out its data.
type Snapshotter interface {
	Snapshot(w io.Writer) error
	Name() string
}

// BackupConfig controls where and how often snapshots are taken.
type BackupConfig struct {
	Dir string
	// Schedule is a cron spec; seconds are optional and descriptors such as
	// "@hourly" or "@every 30m" are accepted.
	Schedule string
	// Keep is how many backups survive pruning. Zero keeps all of them.
	Keep int
	// BaseName and Ext name the files: <BaseName>-<UTC time><Ext>.
	BaseName string
	Ext      string
}

// BackupProcessor periodically snapshots the active store into a directory and
// prunes old snapshots.
type BackupProcessor struct {
	store  Snapshotter
	logger *zap.Logger
	cron   *cron.Cron
	cfg    BackupConfig
	now    func() time.Time

	// mu keeps a scheduled run and a shutdown flush from interleaving.
	mu sync.Mutex
}

var backupParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewBackupProcessor validates cfg and registers the schedule. An empty
// schedule yields a processor that only runs through RunOnce.
func NewBackupProcessor(store Snapshotter, logger *zap.Logger, cfg BackupConfig) (*BackupProcessor, error) {
	if store == nil {
		return nil, fmt.Errorf("backup processor: store is required")
	}
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup processor: directory is required")
	}
	if cfg.Keep < 0 {
		cfg.Keep = 0
	}
	if cfg.BaseName == "" {
		cfg.BaseName = "todos"
	}
	if cfg.Ext == "" {
		cfg.Ext = ".bak"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BackupProcessor{
		store:  store,
		logger: logger.With(zap.String("component", "backup"), zap.String("store", store.Name())),
		cfg:    cfg,
		now:    time.Now,
		cron: cron.New(
			cron.WithParser(backupParser),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}

	if cfg.Schedule != "" {
		if _, err := bp.cron.AddFunc(cfg.Schedule, bp.scheduledRun); err != nil {
			return nil, fmt.Errorf("backup processor: invalid schedule %q: %w", cfg.Schedule, err)
		}
	}
	return bp, nil
}

// Start launches the cron scheduler.
func (bp *BackupProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("backup processor started", zap.String("schedule", bp.cfg.Schedule), zap.String("dir", bp.cfg.Dir))
}

// Stop gracefully stops the scheduler, waiting for a running backup until ctx ends.
func (bp *BackupProcessor) Stop(ctx context.Context) {
	if bp == nil || bp.cron == nil {
		return
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	bp.logger.Info("backup processor stopped")
}

func (bp *BackupProcessor) scheduledRun() {
	if _, err := bp.RunOnce(context.Background()); err != nil {
		bp.logger.Error("scheduled backup failed", zap.Error(err))
	}
}

// RunOnce writes one snapshot and prunes old ones. It returns the path of the
// new backup. Pruning failures are logged, not returned.
func (bp *BackupProcessor) RunOnce(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()

	var buf bytes.Buffer
	if err := bp.store.Snapshot(&buf); err != nil {
		return "", err
	}

	if err := os.MkdirAll(bp.cfg.Dir, 0o755); err != nil {
		return "", domain.WrapError(domain.ErrCodeIO, "create backup directory", err)
	}

	name := fmt.Sprintf("%s-%s%s", bp.cfg.BaseName, bp.now().UTC().Format(backupTimeLayout), bp.cfg.Ext)
	path := filepath.Join(bp.cfg.Dir, name)
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", domain.WrapError(domain.ErrCodeIO, "write backup", err)
	}
	bp.logger.Info("backup written", zap.String("path", path), zap.Int("bytes", buf.Len()))

	if removed, err := bp.prune(); err != nil {
		bp.logger.Warn("backup pruning failed", zap.Error(err))
	} else if removed > 0 {
		bp.logger.Debug("old backups pruned", zap.Int("removed", removed))
	}
	return path, nil
}

// Backups lists existing backup files, oldest first.
func (bp *BackupProcessor) Backups() ([]string, error) {
	entries, err := os.ReadDir(bp.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	prefix := bp.cfg.BaseName + "-"
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, bp.cfg.Ext) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(bp.cfg.Dir, name)
	}
	return paths, nil
}

func (bp *BackupProcessor) prune() (int, error) {
	if bp.cfg.Keep == 0 {
		return 0, nil
	}
	paths, err := bp.Backups()
	if err != nil {
		return 0, err
	}
	if len(paths) <= bp.cfg.Keep {
		return 0, nil
	}

	removed := 0
	for _, path := range paths[:len(paths)-bp.cfg.Keep] {
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
