// Package server wires the casauth components together: the OSF directory
// database, the ticket registry and its storage, the access token codec and
// the gRPC and HTTP endpoints. Run blocks until a signal or a fatal serve
// error and then shuts everything down.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/casauth/internal/dbx"
	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/dmitrijs2005/casauth/internal/server/auth"
	"github.com/dmitrijs2005/casauth/internal/server/config"
	"github.com/dmitrijs2005/casauth/internal/server/directory"
	"github.com/dmitrijs2005/casauth/internal/server/httpapi"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/casauth/internal/server/services"
	"github.com/dmitrijs2005/casauth/internal/server/tickets"
	"github.com/dmitrijs2005/casauth/internal/server/tokens"

	gs "github.com/dmitrijs2005/casauth/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	registry *tickets.Registry
	logins   *services.LoginService
	profiles *services.ProfileService
	closers  []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if c.UsesDevelopmentKeys() {
		logger.Warn(ctx, "using development token keys; set CAS_SIGNING_KEY and CAS_ENCRYPTION_KEY")
	}

	db, err := dbx.Open(ctx, c.DatabaseDSN, dbx.PoolOptions{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := newApp(c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.closers = append(app.closers, db.Close)
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db dbx.DBTX, rm repomanager.RepositoryManager) (*App, error) {
	storage, closer, err := newTicketStorage(c, db, rm)
	if err != nil {
		return nil, err
	}

	codec, err := tokens.NewCodec(c.SigningKey, c.EncryptionKey, tokens.WithIssuer(c.TokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	registry := tickets.NewRegistry(storage,
		tickets.WithLifetimes(c.TicketGrantingTTL, c.ServiceTicketTTL),
		tickets.WithReleasePolicy(tickets.ReleasePolicy(c.ReleasePolicy)),
		tickets.WithRegistryLogger(logger),
	)

	dir := directory.New(rm.Users(db), rm.SecondFactors(db), rm.Guids(db))
	authenticator := auth.NewAuthenticator(dir,
		auth.WithLogger(logger),
		auth.WithNameTransformer(nameTransformer(c.UsernameSuffix)),
	)

	app := &App{
		config:   c,
		logger:   logger,
		registry: registry,
		logins:   services.NewLoginService(authenticator, registry, codec, logger),
		profiles: services.NewProfileService(registry, codec, logger),
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func nameTransformer(suffix string) auth.NameTransformer {
	if suffix == "" {
		return auth.TrimSpaceTransformer
	}
	strip := auth.SuffixStrippingTransformer(suffix)
	return func(s string) string { return strip(auth.TrimSpaceTransformer(s)) }
}

// newTicketStorage picks the ticket backend. The returned closer may be nil.
func newTicketStorage(c *config.Config, db dbx.DBTX, rm repomanager.RepositoryManager) (tickets.Storage, func() error, error) {
	switch c.TicketStore {
	case config.TicketStoreMemory:
		return tickets.NewMemoryStorage(c.TicketPurgeInterval), nil, nil
	case config.TicketStoreRedis:
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		return tickets.NewRedisStorage(client), client.Close, nil
	case config.TicketStorePostgres:
		return tickets.NewPostgresStorage(rm.Tickets(db)), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown ticket store %q", c.TicketStore)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.logins, app.profiles)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server stopped", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	lis, err := net.Listen("tcp", app.config.EndpointAddrHTTP)
	if err != nil {
		app.logger.Error(ctx, "http listen failed", "error", err)
		cancelFunc()
		return
	}
	if err := app.serveHTTP(ctx, lis); err != nil {
		app.logger.Error(ctx, "http server stopped", "error", err)
		cancelFunc()
	}
}

// serveHTTP serves the profile endpoint on lis until ctx is done.
func (app *App) serveHTTP(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           httpapi.NewRouter(app.profiles, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn(context.Background(), "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "ticket_store", app.config.TicketStore)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.registry.RunPurger(ctx, app.config.TicketPurgeInterval)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Warn(context.Background(), "close resources", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database and ticket store connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
