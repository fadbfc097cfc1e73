// Package server wires configuration, storage, services and the gRPC
// transport into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/minibank/internal/logging"
	"github.com/dmitrijs2005/minibank/internal/server/auth"
	"github.com/dmitrijs2005/minibank/internal/server/config"
	"github.com/dmitrijs2005/minibank/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibank/internal/server/services"
	"github.com/dmitrijs2005/minibank/internal/server/throttle"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/minibank/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	closers    []io.Closer
	users      *services.UserService
	transfers  *services.TransferService
	statements *services.StatementService
}

// NewApp opens the database, applies migrations and builds every service.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	app := &App{config: cfg, logger: logger, db: db}

	limiter, err := app.newLimiter(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	secret := []byte(cfg.SecretKey)
	accounts := services.NewAccountService(db, m, cfg, logger)
	ledger := services.NewSessionLedger(db, m, logger)

	app.users = services.NewUserService(db, accounts, ledger, auth.NewIssuer(secret, cfg.TokenTTL), auth.NewVerifier(secret), limiter, logger)
	app.transfers = services.NewTransferService(db, m, accounts, cfg, logger)
	app.statements = services.NewStatementService(app.transfers, cfg, logger)

	return app, nil
}

func (app *App) newLimiter(ctx context.Context) (services.LoginLimiter, error) {
	if app.config.RedisURL == "" {
		app.logger.Info(ctx, "Login throttling disabled")
		return throttle.Nop{}, nil
	}

	client, err := throttle.NewRedisClient(ctx, app.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client)

	return throttle.NewRedisLimiter(client, app.config.LoginAttemptsPerMinute, time.Minute), nil
}

// Close releases the database and cache connections.
func (app *App) Close() error {
	for _, c := range app.closers {
		_ = c.Close()
	}
	return app.db.Close()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.transfers, app.statements)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or SIGINT, SIGTERM or SIGQUIT arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(context.Background(), "close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

// Main loads configuration from args and runs the server. It returns the
// process exit code.
func Main(args []string) int {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return 1
	}

	app.Run(ctx)
	return 0
}
