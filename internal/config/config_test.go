package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todolist/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "SERVER_HOST", "SERVER_PORT", "STORAGE_DRIVER", "DATA_FILE",
		"BOLT_PATH", "BACKUP_DIR", "BACKUP_SCHEDULE", "BACKUP_KEEP", "CORS_ALLOWED_ORIGINS",
		"JWT_SECRET", "JWT_ISSUER", "LOG_LEVEL", "LOG_ENCODING", "REQUEST_TIMEOUT_SECONDS",
		"SHUTDOWN_TIMEOUT_SECONDS", "MONITOR_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "todolist", cfg.AppName)
	assert.Equal(t, "0.0.0.0:3001", cfg.Address())
	assert.Equal(t, config.DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "./data/db.json", cfg.StoragePath())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Backup.Enabled())
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, 5*time.Second, cfg.Context.RequestTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "BOLT")
	t.Setenv("BOLT_PATH", "/tmp/todos.db")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("BACKUP_SCHEDULE", "@hourly")
	t.Setenv("BACKUP_KEEP", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://todo.example.com ,")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "2")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "1500ms")

	cfg, err := config.Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, config.DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/todos.db", cfg.StoragePath())
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, 3, cfg.Backup.Keep)
	assert.Equal(t, []string{"http://localhost:3000", "https://todo.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Context.ShutdownTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DATA_FILE")
	os.Unsetenv("LOG_LEVEL")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_FILE=/srv/db.json\nLOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("DATA_FILE")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/db.json", cfg.Storage.DataFile)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := config.Load(missingEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestValidate_NegativeKeep(t *testing.T) {
	cfg := &config.Config{
		HTTP:    config.HTTPConfig{Port: "3001"},
		Storage: config.StorageConfig{Driver: config.DriverFile, DataFile: "db.json"},
		Backup:  config.BackupConfig{Keep: -1},
	}
	assert.Error(t, cfg.Validate())
}
