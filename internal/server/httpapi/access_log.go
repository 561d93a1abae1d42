package httpapi

import (
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestObserver receives one observation per finished request.
// *metrics.Metrics implements it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type AccessLogMiddleware struct {
	logger   logging.Logger
	observer RequestObserver
}

func NewAccessLogMiddleware(l logging.Logger, o RequestObserver) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: l, observer: o}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		dur := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		if m.observer != nil {
			m.observer.ObserveRequest(c.Method(), route, status, dur)
		}

		m.logger.Info(c.Context(), "http access",
			"rid", rid,
			"ip", c.IP(),
			"method", c.Method(),
			"path", c.OriginalURL(),
			"route", route,
			"status", status,
			"latency", dur.String(),
			"ua", c.Get(fiber.HeaderUserAgent),
		)

		return err
	}
}
