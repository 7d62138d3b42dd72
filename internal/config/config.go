package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	DriverFile = "file"
	DriverBolt = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Backup      BackupConfig
	Monitor     MonitorConfig
	CORS        CORSConfig
	JWT         JWTConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type StorageConfig struct {
	Driver   string
	DataFile string
	BoltPath string
}

type BackupConfig struct {
	Dir      string
	Schedule string
	Keep     int
}

// Enabled reports whether scheduled backups should run.
func (b BackupConfig) Enabled() bool {
	return b.Dir != "" && b.Schedule != ""
}

type MonitorConfig struct {
	Interval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig guards /api when Secret is set.
type JWTConfig struct {
	Secret string
	Issuer string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads configuration from environment variables, after loading envFile
// (".env" when empty) if it exists, and applies defaults so the service can
// boot with no configuration at all.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		AppName:     getString("APP_NAME", "todolist"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "3001"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(getString("STORAGE_DRIVER", DriverFile)),
			DataFile: getString("DATA_FILE", "./data/db.json"),
			BoltPath: getString("BOLT_PATH", "./data/todos.db"),
		},
		Backup: BackupConfig{
			Dir:      getString("BACKUP_DIR", "./data/backups"),
			Schedule: os.Getenv("BACKUP_SCHEDULE"),
			Keep:     getInt("BACKUP_KEEP", 7),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 10*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: os.Getenv("JWT_ISSUER"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad(envFile string) *Config {
	cfg, err := Load(envFile)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.DataFile == "" {
			return errors.New("config: DATA_FILE must not be empty")
		}
	case DriverBolt:
		if c.Storage.BoltPath == "" {
			return errors.New("config: BOLT_PATH must not be empty")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q (want %s or %s)", c.Storage.Driver, DriverFile, DriverBolt)
	}
	if c.HTTP.Port == "" {
		return errors.New("config: SERVER_PORT must not be empty")
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("config: BACKUP_KEEP must not be negative, got %d", c.Backup.Keep)
	}
	return nil
}

// StoragePath is the file backing the selected driver.
func (c *Config) StoragePath() string {
	if c.Storage.Driver == DriverBolt {
		return c.Storage.BoltPath
	}
	return c.Storage.DataFile
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
