package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/todolist/internal/application/todo"
	"github.com/rezkam/todolist/internal/config"
	httpserver "github.com/rezkam/todolist/internal/infrastructure/http"
	"github.com/rezkam/todolist/internal/infrastructure/http/handler"
	"github.com/rezkam/todolist/internal/infrastructure/http/openapi"
	"github.com/rezkam/todolist/internal/storage/sqlstore"
	"github.com/rezkam/todolist/pkg/observability"
)

// telemetryFlushTimeout bounds exporter flushing when the collector is unreachable.
const telemetryFlushTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context for normal operation; cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	obsCfg := observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		LogLevel:    cfg.Observability.LogLevel,
	}

	lp, logger, err := observability.InitLogger(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("failed to init tracer provider: %w", err)
	}

	mp, err := observability.InitMeterProvider(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("failed to init meter provider: %w", err)
	}

	telemetry := shutdownFunc(func(ctx context.Context) error {
		return observability.Shutdown(ctx, tp, mp, lp)
	})

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		newCleanup(context.Background(), telemetry, nil)()
		return err
	}

	// Store closes before telemetry flushes so its final log lines are exported.
	cleanup := newCleanup(context.Background(), telemetry, store)
	defer cleanup()

	repos := todo.Repositories{
		Lists: sqlstore.Factory(store, sqlstore.ListSchema),
		Items: sqlstore.Factory(store, sqlstore.ItemSchema),
	}

	if cfg.Database.Seed {
		if _, err := todo.Seed(ctx, repos); err != nil {
			return err
		}
	}

	svc := todo.NewService(repos, todo.Config{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	})

	doc := openapi.NewDocument()
	docs, err := openapi.NewHandlers(doc)
	if err != nil {
		return fmt.Errorf("failed to render openapi document: %w", err)
	}

	server := httpserver.NewAPIServer(handler.NewAPIRouter(svc, doc), docs, store, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		RateLimitRPS:      cfg.HTTP.RateLimitRPS,
		RateLimitBurst:    cfg.HTTP.RateLimitBurst,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")

		shutdownCtx, cancel := newShutdownContext(cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "HTTP server shutdown timed out", "error", err)
			return err
		}
		slog.InfoContext(shutdownCtx, "HTTP server shutdown complete")
		return nil
	case err := <-errResult:
		return err
	}
}

// openStore connects to the configured database and applies migrations when enabled.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*sqlstore.Store, error) {
	storeCfg, err := cfg.Store()
	if err != nil {
		return nil, err
	}

	store, err := sqlstore.Open(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	slog.InfoContext(ctx, "storage initialized", "driver", storeCfg.Driver, "dsn", maskPassword(storeCfg.DSN))

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}

	return store, nil
}

// newShutdownContext creates a fresh context with timeout for graceful shutdown.
// The main context is already cancelled at shutdown time.
func newShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	if connStr == "" {
		return "(in-memory)"
	}
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
