// Package runtime wires configuration, storage, services and the HTTP server
// into a runnable process.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/bod9dzys/order-api-mvp/internal/app"
	"github.com/bod9dzys/order-api-mvp/internal/app/auth"
	"github.com/bod9dzys/order-api-mvp/internal/app/httpapi"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage/postgres"
	"github.com/bod9dzys/order-api-mvp/internal/config"
	"github.com/bod9dzys/order-api-mvp/internal/logging"
	"github.com/bod9dzys/order-api-mvp/internal/metrics"
	"github.com/bod9dzys/order-api-mvp/internal/middleware"
	"github.com/bod9dzys/order-api-mvp/internal/platform/migrations"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	app    *app.Application
	server *http.Server
	db     *sql.DB
}

// NewApplication constructs a new application instance with default wiring.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig wires an application from an already loaded config.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	var (
		db     *sql.DB
		stores app.Stores
	)
	if cfg.Database.DSN != "" {
		var err error
		db, err = openDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := migrations.Apply(migrateCtx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		store := postgres.New(db)
		stores = app.Stores{Users: store, Customers: store, Products: store, Orders: store}
	} else {
		log.Warn("DATABASE_URL not set; using in-memory storage")
	}

	application, err := app.New(stores, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build application: %w", err)
	}

	reqLog := logging.NewLogger(log)
	tokens := auth.New(cfg.Auth.SecretKey, cfg.Auth.AccessTokenMinutes, cfg.Auth.RefreshTokenMinutes)
	m := metrics.New("orderapi")

	apiHandler, err := httpapi.NewHandler(httpapi.Config{
		App:          application,
		Tokens:       tokens,
		Metrics:      m,
		Log:          reqLog,
		AuditLogPath: cfg.AuditLog,
	})
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("build handler: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, reqLog)
	limiter.StartCleanup(5 * time.Minute)
	cors := middleware.NewCORSMiddleware([]string{"*"})

	handler := cors.Handler(limiter.Handler(apiHandler))

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		cfg:    cfg,
		log:    log,
		app:    application,
		server: server,
		db:     db,
	}, nil
}

// Migrate applies the database schema and exits without serving traffic.
func (a *Application) Migrate(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database not configured")
	}
	return migrations.Apply(ctx, a.db)
}

// Run starts background services and the HTTP server, blocking until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server, background services and the
// database connection.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := a.app.Stop(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("error stopping services")
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}

	return nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
