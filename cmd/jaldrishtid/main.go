package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	jhttp "github.com/jaldrishti/jaldrishti/http"
	"github.com/jaldrishti/jaldrishti/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	loadDotEnv()
	if err := run(ctx, os.Stdout, os.Stderr, os.Args, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads .env from the working directory or up to two parents.
func loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	dir, _ := os.Getwd()
	for i := 0; i < 2; i++ {
		dir = filepath.Join(dir, "..")
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
}

// run is the main entry point for the application, designed for testability.
// It accepts all external dependencies (IO, args, env) as parameters.
func run(
	ctx context.Context,
	stdout, stderr io.Writer,
	args []string,
	getenv func(string) string,
) error {
	// Load configuration
	cfg, err := LoadConfig(getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure logger
	logger := newLogger(stderr, cfg)
	slog.SetDefault(logger)
	logger.Debug("logger initialized", slog.String("level", cfg.LogLevel))
	logger.Debug("application configuration",
		slog.String("environment", cfg.Environment),
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port))

	if len(args) > 1 && args[1] == "seed" {
		return runSeed(ctx, stdout, cfg, logger)
	}

	// Connect to the database only when a component needs it
	var db *postgres.DB
	if cfg.NeedsDatabase() {
		db, err = openDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	// Initialize services
	services, err := initServices(ctx, db, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing services: %w", err)
	}
	defer func() {
		if err := services.Close(); err != nil {
			logger.Error("closing services", slog.String("error", err.Error()))
		}
	}()

	// Create HTTP server configuration
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	serverCfg := jhttp.Config{
		Addr:   addr,
		Logger: logger,
		APIKey: cfg.APIKey,
		AnalyzeRateLimit: jhttp.RateLimitConfig{
			PerMinute:       float64(cfg.AnalyzeRateLimit),
			Burst:           cfg.AnalyzeRateBurst,
			CleanupInterval: time.Hour,
			IdleTimeout:     time.Hour,
		},
		Classifier:        services.Classifier,
		ReportService:     services.ReportService,
		RiskScorer:        services.RiskScorer,
		Predictor:         services.Predictor,
		RainfallEstimator: services.RainfallEstimator,
		Reference:         services.Reference,
		RiskPolicy:        services.RiskPolicy,
		FileStorage:       services.FileStorage,
	}
	if cfg.StorageProvider == "local" {
		serverCfg.UploadsDir = cfg.StorageLocalPath
	}

	// Create HTTP server
	server := jhttp.NewServer(serverCfg)

	// Create channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", addr))
		if err := server.Open(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	// Graceful shutdown
	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer shutdownCancel()

	if err := server.Close(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

// runSeed imports the file reference data into PostgreSQL.
func runSeed(ctx context.Context, stdout io.Writer, cfg *Config, logger *slog.Logger) error {
	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ref, err := loadReference(ctx, fileReferenceLoader(cfg), logger)
	if err != nil {
		return err
	}
	if len(ref.Wards) == 0 {
		return errors.New("seed: no wards found in reference files")
	}
	if err := db.ReferenceService.ImportReference(ctx, ref); err != nil {
		return fmt.Errorf("importing reference data: %w", err)
	}

	fmt.Fprintf(stdout, "imported %d wards and %d locations\n", len(ref.Wards), len(ref.Locations))
	return nil
}

// openDatabase connects to PostgreSQL and applies migrations.
func openDatabase(ctx context.Context, cfg *Config, logger *slog.Logger) (*postgres.DB, error) {
	pool, err := newDatabasePool(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	db := postgres.NewDB(pool)

	logger.Info("running database migrations...")
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database migrations completed")
	return db, nil
}

// newLogger creates a configured slog.Logger based on environment.
func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// newDatabasePool creates a configured pgxpool connection pool.
func newDatabasePool(ctx context.Context, cfg *Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	connString := cfg.DatabaseURL()
	logger.Debug("connecting to database")

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("database connection pool established")
	return pool, nil
}
