package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/todolist/api/handler"
	"github.com/fastygo/todolist/internal/config"
	kvstore "github.com/fastygo/todolist/internal/infrastructure/kv"
	"github.com/fastygo/todolist/internal/infrastructure/monitor"
	"github.com/fastygo/todolist/internal/middleware"
	"github.com/fastygo/todolist/internal/router"
	"github.com/fastygo/todolist/internal/services"
	"github.com/fastygo/todolist/internal/services/lifecycle"
	"github.com/fastygo/todolist/pkg/httpcontext"
	"github.com/fastygo/todolist/pkg/logger"
	"github.com/fastygo/todolist/repository"
	"github.com/fastygo/todolist/repository/file"
	"github.com/fastygo/todolist/repository/kv"
	todoUC "github.com/fastygo/todolist/usecase/todo"
)

type flags struct {
	envFile  string
	dataFile string
	driver   string
	port     string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("todolist", pflag.ContinueOnError)
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&f.dataFile, "data-file", "", "path of the JSON data file (overrides DATA_FILE)")
	fs.StringVar(&f.driver, "driver", "", "storage driver: file or bolt (overrides STORAGE_DRIVER)")
	fs.StringVarP(&f.port, "port", "p", "", "listen port (overrides SERVER_PORT)")
	return f, fs.Parse(args)
}

// apply layers explicitly set flags over the environment configuration.
func (f flags) apply(cfg *config.Config) error {
	if f.dataFile != "" {
		cfg.Storage.DataFile = f.dataFile
	}
	if f.driver != "" {
		cfg.Storage.Driver = strings.ToLower(f.driver)
	}
	if f.port != "" {
		cfg.HTTP.Port = f.port
	}
	return cfg.Validate()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "todolist: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := opts.apply(cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	zapLogger := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.NotifyContext(context.Background())
	defer stop()

	repo, err := openRepository(cfg, manager, zapLogger)
	if err != nil {
		return fmt.Errorf("storage error: %w", err)
	}

	todoUseCase := todoUC.New(repo, zapLogger)
	if err := todoUseCase.Load(appCtx); err != nil {
		return fmt.Errorf("load todos: %w", err)
	}

	mon := monitor.New(repo, func() (int, time.Time) {
		stats := todoUseCase.Stats()
		return stats.Tasks, stats.LastSave
	}, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if cfg.Backup.Enabled() {
		base, ext := backupName(cfg.StoragePath())
		backups, err := services.NewBackupProcessor(repo, zapLogger, services.BackupConfig{
			Dir:      cfg.Backup.Dir,
			Schedule: cfg.Backup.Schedule,
			Keep:     cfg.Backup.Keep,
			BaseName: base,
			Ext:      ext,
		})
		if err != nil {
			return err
		}
		backups.Start()
		manager.Register("backup_processor", func(ctx context.Context) error {
			backups.Stop(ctx)
			_, err := backups.RunOnce(ctx)
			return err
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Todo:     apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Settings: apiHandler.NewSettingsHandler(todoUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, "", ctxAdapter, zapLogger),
	}

	var apiGuard router.Middleware
	if cfg.JWT.Secret != "" {
		apiGuard = middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	} else {
		zapLogger.Warn("JWT_SECRET not set, /api is unauthenticated")
	}
	r := router.New(handlers, apiGuard)

	server := &fasthttp.Server{
		Handler:      router.Chain(r.Handler, middleware.CORS(cfg.CORS.AllowedOrigins)),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("driver", repo.Name()),
			zap.String("path", cfg.StoragePath()),
		)
		serveErr <- server.ListenAndServe(cfg.Address())
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	var runErr error
	select {
	case <-appCtx.Done():
	case err := <-serveErr:
		if err != nil {
			zapLogger.Error("server crashed", zap.Error(err))
			runErr = err
		}
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	return runErr
}

func openRepository(cfg *config.Config, manager *lifecycle.Manager, log *zap.Logger) (repository.DocumentRepository, error) {
	switch cfg.Storage.Driver {
	case config.DriverBolt:
		store, err := kvstore.Open(cfg.Storage.BoltPath, kvstore.DefaultBucket)
		if err != nil {
			return nil, err
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return store.Close()
		})
		return kv.NewDocumentRepository(store, log), nil
	default:
		return file.NewDocumentRepository(cfg.Storage.DataFile, log)
	}
}

// backupName splits the data path into the prefix and extension used for
// backup file names.
func backupName(path string) (string, string) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
