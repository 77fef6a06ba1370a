// Package server exposes the moderation operations over HTTP. Handlers
// are transport glue only: parse, call the core, map the error taxonomy
// onto status codes.
package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/wardenbot/warden/internal/config"
	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/moderation"
)

type Server struct {
	cfg config.Config
	svc *moderation.Service
	app *fiber.App
}

func New(cfg config.Config, svc *moderation.Service) *Server {
	s := &Server{
		cfg: cfg,
		svc: svc,
		app: fiber.New(fiber.Config{DisableStartupMessage: true}),
	}
	s.app.Use(recover.New())
	s.app.Use(requestid.New())

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := s.app.Group("/v1", s.authRequired)

	members := v1.Group("/members/:id")
	members.Post("/warnings/:category", s.Warn)
	members.Get("/warnings", s.WarningCounts)
	members.Delete("/warnings/:category", s.ClearWarnings)
	members.Post("/bans", s.Ban)
	members.Delete("/bans/:category", s.Unban)
	members.Post("/global-ban", s.GlobalBan)
	members.Delete("/global-ban", s.GlobalUnban)
	members.Post("/timeout", s.Timeout)
	members.Get("/sanctions", s.Sanctions)
	members.Delete("/sanctions", s.ClearSanctions)
	members.Get("/summary", s.Summary)
	members.Post("/notes", s.NoteAdd)
	members.Get("/notes", s.NoteList)
	members.Delete("/notes", s.NoteClear)

	v1.Get("/cases/:id", s.Case)

	v1.Get("/staff", s.StaffList)
	v1.Post("/staff/:id", s.StaffAdd)
	v1.Delete("/staff/:id", s.StaffRemove)

	return s
}

func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.ListenAddr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// parseID reads a numeric path parameter; on failure it writes the 400
// response itself and reports ok=false.
func (s *Server) parseID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		_ = respondError(c, fmt.Errorf("parameter %s: %w", name, apperr.ErrInvalidInput))
		return 0, false
	}
	return id, true
}

// respondError maps the core error taxonomy onto HTTP status codes.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		// The platform refused the actuation, not us.
		status = fiber.StatusBadGateway
	case errors.Is(err, apperr.ErrStoreUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
