// Package server initializes and runs the GophSocial server.
// It opens the database, applies migrations, wires storage, events and
// metrics into the services, and runs the HTTP API next to the gRPC
// health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/auth"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
	"github.com/dmitrijs2005/gophsocial/internal/server/httpapi"
	"github.com/dmitrijs2005/gophsocial/internal/server/imagestore"
	"github.com/dmitrijs2005/gophsocial/internal/server/metrics"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/gophsocial/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	publisher events.Publisher
	metrics   *metrics.Metrics
	services  httpapi.Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	images, err := imagestore.NewS3Store(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	var publisher events.Publisher = events.Noop{}
	if c.NATSURL != "" {
		p, err := events.NewNatsPublisher(ctx, c.NATSURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("nats init error: %w", err)
		}
		publisher = p
	} else {
		logger.Warn(ctx, "NATS URL is empty, follow events are not published")
	}

	m := metrics.New()

	svc := httpapi.Services{
		Profiles:      services.NewProfileService(db, rm),
		Relationships: services.NewRelationshipService(db, rm, publisher, m, logger),
		Suggestions:   services.NewSuggestionService(db, rm),
		Updates:       services.NewProfileUpdateService(db, rm, images, auth.NewBcryptHasher(c.BcryptCost), m, logger, c),
		Notifications: services.NewNotificationService(db, rm),
	}

	return &App{config: c, logger: logger, db: db, publisher: publisher, metrics: m, services: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(httpapi.Options{
		Address:        app.config.EndpointAddrHTTP,
		SecretKey:      app.config.SecretKey,
		BodyLimit:      bodyLimit(app.config.ImageMaxBytes),
		RateLimitRPS:   app.config.RateLimitRPS,
		RateLimitBurst: app.config.RateLimitBurst,
		Observer:       app.metrics,
		MetricsHandler: app.metrics.Handler(),
	}, app.services, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.publisher.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}

// bodyLimit leaves room for two base64-encoded images plus the text fields.
func bodyLimit(imageMaxBytes int64) int {
	const overhead = 64 << 10
	if imageMaxBytes <= 0 {
		return 0
	}
	return int(imageMaxBytes/3*4*2) + overhead
}
