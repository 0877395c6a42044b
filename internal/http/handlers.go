// Package http exposes the query API over fiber.
package http

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/bridge"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/repository"
	"github.com/ANIKETSHETTY47/smart-incubator-monitor/internal/service"
)

const (
	defaultReadingLimit = 100
	defaultAlertLimit   = 20
)

// StatsReporter reports ingestion state for /api/status.
type StatsReporter interface {
	Stats() bridge.Stats
}

// ObserverCounter reports the number of live realtime observers.
type ObserverCounter interface {
	Count() int
}

type Options struct {
	MaxLimit  int
	Bridge    StatsReporter
	Observers ObserverCounter
}

// NewApp builds the fiber app with the shared middleware.
func NewApp(logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger(logger))
	return app
}

func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("took", time.Since(start)).
			Msg("request")
		return err
	}
}

func Register(app *fiber.App, svcs *service.Services, opts Options) {
	if opts.MaxLimit < 1 {
		opts.MaxLimit = 1000
	}

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	g := app.Group("/api")
	g.Get("/readings", func(c *fiber.Ctx) error {
		f := repository.ReadingFilter{}
		if s := c.Query("type"); s != "" {
			kind, err := domain.ParseKind(s)
			if err != nil {
				return writeError(c, err)
			}
			f.Kind = &kind
		}
		var err error
		if f.Limit, err = limitParam(c, defaultReadingLimit, opts.MaxLimit); err != nil {
			return writeError(c, err)
		}
		if f.Skip, err = skipParam(c); err != nil {
			return writeError(c, err)
		}

		items, err := svcs.Readings.List(c.UserContext(), f)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(items)
	})
	g.Get("/readings/latest", func(c *fiber.Ctx) error {
		latest, err := svcs.Readings.Latest(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(latest)
	})
	g.Get("/alerts", func(c *fiber.Ctx) error {
		f := repository.AlertFilter{}
		if s := c.Query("resolved"); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return writeError(c, invalid("resolved must be true or false"))
			}
			f.Resolved = &b
		}
		var severity *domain.Severity
		if s := c.Query("severity"); s != "" {
			sev, err := domain.ParseSeverity(s)
			if err != nil {
				return writeError(c, err)
			}
			severity = &sev
		}
		var err error
		if f.Limit, err = limitParam(c, defaultAlertLimit, opts.MaxLimit); err != nil {
			return writeError(c, err)
		}

		items, err := svcs.Alerts.List(c.UserContext(), f, severity)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(items)
	})
	g.Put("/alerts/:id/resolve", func(c *fiber.Ctx) error {
		a, err := svcs.Alerts.Resolve(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(a)
	})
	g.Get("/status", func(c *fiber.Ctx) error {
		out := fiber.Map{}
		if opts.Bridge != nil {
			out["bridge"] = opts.Bridge.Stats()
		}
		if opts.Observers != nil {
			out["observers"] = opts.Observers.Count()
		}
		return c.JSON(out)
	})
}

func limitParam(c *fiber.Ctx, def, ceiling int) (int, error) {
	s := c.Query("limit")
	if s == "" {
		return min(def, ceiling), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, invalid("limit must be a positive integer")
	}
	return min(n, ceiling), nil
}

func skipParam(c *fiber.Ctx) (int, error) {
	s := c.Query("skip")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, invalid("skip must be a non-negative integer")
	}
	return n, nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, msg)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
