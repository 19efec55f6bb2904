// Package server wires configuration, storage, services and transports into
// a runnable application and manages its lifecycle.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/dmitrijs2005/taskkeeper/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	gs "github.com/dmitrijs2005/taskkeeper/internal/server/grpc"
)

const dbPingTimeout = 5 * time.Second

// openDB is a seam for tests.
var openDB = sql.Open

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler http.Handler
}

// OpenDatabase connects with the pgx driver, verifies the connection and
// applies pending migrations.
func OpenDatabase(ctx context.Context, dsn string, m repomanager.RepositoryManager) (*sql.DB, error) {
	db, err := openDB("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDatabase(ctx, c.DSN(), rm)
	if err != nil {
		return nil, err
	}

	var st services.ObjectStorage
	if c.AttachmentsEnabled() {
		s3, err := storage.NewS3Storage(ctx, c)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		st = s3
	} else {
		logger.Info(ctx, "S3 bucket not configured, attachments disabled")
	}

	return newApp(c, logger, db, rm, st), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, st services.ObjectStorage) *App {
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	us := services.NewUserService(db, rm, hasher, tokens)
	ts := services.NewTaskService(db, rm, st)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "taskkeeper"),
	)

	var limiter *httpserver.ClientLimiter
	if c.AuthRateLimit > 0 {
		limiter = httpserver.NewClientLimiter(rate.Limit(c.AuthRateLimit), c.AuthRateBurst, httpserver.DefaultLimiterIdleTTL)
	}

	api := httpserver.NewAPI(us, ts, tokens, db, logger)
	handler := httpserver.NewRouter(api, httpserver.NewMetrics(reg), limiter)

	return &App{config: c, logger: logger, db: db, handler: handler}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

// start runs r until it returns; a failure stops the whole app.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC health until ctx is cancelled or a signal
// arrives, then closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	servers := map[string]runner{
		"http": httpserver.NewServer(app.config.HTTPAddr, app.handler, app.logger),
		"grpc": gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.db),
	}

	var wg sync.WaitGroup
	for name, srv := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.start(ctx, cancelFunc, name, srv)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
