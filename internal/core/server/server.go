package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "courier-dispatch/docs/swagger"
)

// RayIDHeader carries the request id echoed back in error bodies.
const RayIDHeader = "X-Ray-ID"

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
}

// New creates a new Server instance with configured middleware, /metrics,
// /health and the API docs under /swagger.
func New(cfg *config.AppConfig, checks map[string]HealthCheck) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "courier-dispatch",
	})

	app.Use(requestid.New(requestid.Config{
		Header: RayIDHeader,
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	app.Use(instrument)

	metrics.Register()
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	app.Get("/health", health(checks))
	app.Get("/swagger/*", swagger.HandlerDefault)

	return &Server{
		App: app,
		cfg: cfg,
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}

func instrument(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	path := c.Route().Path
	labels := []string{c.Method(), path, strconv.Itoa(status)}
	metrics.HTTPRequests.WithLabelValues(labels...).Inc()
	metrics.HTTPDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	return err
}

func health(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		result := fiber.Map{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				healthy = false
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}

		if !healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "checks": result})
		}
		return c.JSON(fiber.Map{"status": "ok", "checks": result})
	}
}
