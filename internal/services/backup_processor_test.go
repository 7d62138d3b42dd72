package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	data string
	err  error
}

func (f *fakeSnapshotter) Snapshot(w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.data)
	return err
}

func (f *fakeSnapshotter) Name() string { return "fake" }

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}

func TestRunOnce_WritesSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	bp, err := NewBackupProcessor(&fakeSnapshotter{data: `{"version":1}`}, nil, BackupConfig{Dir: dir, BaseName: "db", Ext: ".json"})
	require.NoError(t, err)
	bp.now = func() time.Time { return time.Date(2025, 4, 5, 6, 7, 8, 9_000_000, time.FixedZone("X", 3600)) }

	path, err := bp.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "db-20250405T050708.009Z.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))
}

func TestRunOnce_PrunesToKeep(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))

	bp, err := NewBackupProcessor(&fakeSnapshotter{data: "{}"}, nil, BackupConfig{Dir: dir, Keep: 2})
	require.NoError(t, err)
	bp.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Minute)

	var written []string
	for i := 0; i < 4; i++ {
		path, err := bp.RunOnce(context.Background())
		require.NoError(t, err)
		written = append(written, path)
	}

	backups, err := bp.Backups()
	require.NoError(t, err)
	assert.Equal(t, written[2:], backups)
	assert.FileExists(t, filepath.Join(dir, "unrelated.txt"))
}

func TestRunOnce_KeepZeroKeepsAll(t *testing.T) {
	bp, err := NewBackupProcessor(&fakeSnapshotter{data: "{}"}, nil, BackupConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	bp.now = steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)

	for i := 0; i < 3; i++ {
		_, err := bp.RunOnce(context.Background())
		require.NoError(t, err)
	}

	backups, err := bp.Backups()
	require.NoError(t, err)
	assert.Len(t, backups, 3)
}

func TestRunOnce_SnapshotFailure(t *testing.T) {
	dir := t.TempDir()
	bp, err := NewBackupProcessor(&fakeSnapshotter{err: errors.New("locked")}, nil, BackupConfig{Dir: dir})
	require.NoError(t, err)

	_, err = bp.RunOnce(context.Background())
	require.Error(t, err)

	backups, err := bp.Backups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRunOnce_CancelledContext(t *testing.T) {
	bp, err := NewBackupProcessor(&fakeSnapshotter{data: "{}"}, nil, BackupConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = bp.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewBackupProcessor_Validation(t *testing.T) {
	_, err := NewBackupProcessor(nil, nil, BackupConfig{Dir: "x"})
	assert.Error(t, err)

	_, err = NewBackupProcessor(&fakeSnapshotter{}, nil, BackupConfig{})
	assert.Error(t, err)

	_, err = NewBackupProcessor(&fakeSnapshotter{}, nil, BackupConfig{Dir: "x", Schedule: "every tuesday"})
	assert.Error(t, err)

	for _, spec := range []string{"@hourly", "@every 30m", "0 3 * * *", "*/10 * * * * *"} {
		_, err = NewBackupProcessor(&fakeSnapshotter{}, nil, BackupConfig{Dir: "x", Schedule: spec})
		assert.NoError(t, err, spec)
	}
}

func TestScheduledBackupRuns(t *testing.T) {
	dir := t.TempDir()
	bp, err := NewBackupProcessor(&fakeSnapshotter{data: "{}"}, nil, BackupConfig{Dir: dir, Schedule: "@every 1s"})
	require.NoError(t, err)

	bp.Start()
	defer bp.Stop(context.Background())

	require.Eventually(t, func() bool {
		backups, err := bp.Backups()
		return err == nil && len(backups) > 0
	}, 5*time.Second, 50*time.Millisecond)
}
