package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todolist/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		HTTP:    config.HTTPConfig{Port: "3001"},
		Storage: config.StorageConfig{Driver: config.DriverFile, DataFile: "./data/db.json", BoltPath: "./data/todos.db"},
	}
}

func TestFlags_Override(t *testing.T) {
	f, err := parseFlags([]string{"--data-file", "/tmp/x.json", "--driver", "BOLT", "-p", "8080", "--env-file", "prod.env"})
	require.NoError(t, err)
	assert.Equal(t, "prod.env", f.envFile)

	cfg := baseConfig()
	require.NoError(t, f.apply(cfg))

	assert.Equal(t, "/tmp/x.json", cfg.Storage.DataFile)
	assert.Equal(t, config.DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestFlags_UnsetLeavesConfig(t *testing.T) {
	f, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, ".env", f.envFile)

	cfg := baseConfig()
	require.NoError(t, f.apply(cfg))
	assert.Equal(t, baseConfig(), cfg)
}

func TestFlags_InvalidDriver(t *testing.T) {
	f, err := parseFlags([]string{"--driver", "redis"})
	require.NoError(t, err)
	assert.Error(t, f.apply(baseConfig()))
}

func TestBackupName(t *testing.T) {
	base, ext := backupName("./data/db.json")
	assert.Equal(t, "db", base)
	assert.Equal(t, ".json", ext)

	base, ext = backupName("/var/lib/todos")
	assert.Equal(t, "todos", base)
	assert.Equal(t, "", ext)
}
