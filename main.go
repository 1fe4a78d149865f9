package main

import (
	"apartmenthub/config"
	"apartmenthub/database"
	"apartmenthub/handlers"
	"apartmenthub/logging"
	"apartmenthub/service"
	"apartmenthub/storage"
	"apartmenthub/validation"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apartmenthub",
	Short: "Apartment listings API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, nil)
		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		})); err != nil {
			logger.Warn("failed to set GOMAXPROCS", "error", err)
		}
		return cfg.RequireDatabase()
	},
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back schema migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := database.Up
		if len(args) == 1 {
			direction = database.Direction(args[0])
		}
		return database.Migrate(cfg.DatabaseURL, direction, logger)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the starter projects and apartments",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Seed(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("command failed", "error", err)
		}
		os.Exit(1)
	}
}

func connect(ctx context.Context) (*database.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context) error {
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	images, err := storage.NewLocalImageStore(cfg.ImageDir, cfg.ImageURLPrefix, logger)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Apartments:     service.NewApartmentService(db, db, logger),
		Images:         service.NewImageService(images, logger),
		Health:         db,
		Validator:      validation.New(),
		Logger:         logger,
		CORSOrigins:    cfg.CORSOrigins,
		ImageDir:       images.Dir(),
		ImageURLPrefix: cfg.ImageURLPrefix,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, draining requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown after timeout: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
