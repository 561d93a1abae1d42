// Package httpapi exposes the social operations as a JSON API on fiber.
package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

const shutdownTimeout = 10 * time.Second

// Options configures NewServer.
type Options struct {
	Address        string
	SecretKey      string
	BodyLimit      int
	RateLimitRPS   float64
	RateLimitBurst int
	Observer       RequestObserver
	MetricsHandler http.Handler
}

type Server struct {
	app     *fiber.App
	address string
	logger  logging.Logger
}

func NewServer(opts Options, svc Services, l logging.Logger) *Server {
	logger := l.With("module", "http_server")

	cfg := fiber.Config{AppName: "gophsocial"}
	if opts.BodyLimit > 0 {
		cfg.BodyLimit = opts.BodyLimit
	}
	app := fiber.New(cfg)

	app.Use(NewAccessLogMiddleware(logger, opts.Observer).Middleware())
	app.Use(NewErrorMiddleware(logger).Middleware())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(opts.MetricsHandler))
	}

	api := app.Group("/api")
	if opts.RateLimitRPS > 0 {
		api.Use(NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware())
	}
	api.Use(NewAuthMiddleware(opts.SecretKey).Middleware())
	NewUserHandler(svc).RegisterRoutes(api)

	return &Server{app: app, address: opts.Address, logger: logger}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())

	return s.app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true})
}
