package moderation

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wardenbot/warden/internal/config"
	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/policy/access"
)

// Service is the request-path entry point for every moderation operation.
// Each operation authorizes first, applies the real-world effect through
// the actuator, persists the sanction and warning state, and writes a case
// ledger entry. Best-effort notifications go out after the authoritative
// writes.
type Service struct {
	cfg       config.Moderation
	gate      *access.Gate
	warnings  *WarningLedger
	sanctions *SanctionStore
	cases     *CaseLedger
	notes     *NoteBook
	actuator  Actuator
	notifier  Notifier
	roles     map[Category]int64
}

func NewService(
	cfg config.Moderation,
	gate *access.Gate,
	warnings *WarningLedger,
	sanctions *SanctionStore,
	cases *CaseLedger,
	notes *NoteBook,
	actuator Actuator,
	notifier Notifier,
) *Service {
	return &Service{
		cfg:       cfg,
		gate:      gate,
		warnings:  warnings,
		sanctions: sanctions,
		cases:     cases,
		notes:     notes,
		actuator:  actuator,
		notifier:  notifier,
		roles:     RoleMap(cfg),
	}
}

// RoleMap resolves the configured category names into the closed
// enumeration, dropping anything unknown at the boundary.
func RoleMap(cfg config.Moderation) map[Category]int64 {
	roles := make(map[Category]int64, len(cfg.CategoryRoles))
	for name, roleID := range cfg.CategoryRoles {
		cat, err := ParseCategory(name)
		if err != nil {
			log.WithField("category", name).Warn("ignoring unknown category in role mapping")
			continue
		}
		roles[cat] = roleID
	}
	return roles
}

func (s *Service) getLogEntry() *log.Entry {
	return log.WithField("context", "moderation")
}

// authorize runs the gate before any side effect. A denied actor gets
// ErrUnauthorized and nothing else happens.
func (s *Service) authorize(ctx context.Context, actor access.Actor) error {
	ok, err := s.gate.IsAuthorized(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrUnauthorized
	}
	return nil
}

// authorizeAdmin is the stricter check for staff-set management: platform
// administrator capability only.
func (s *Service) authorizeAdmin(actor access.Actor) error {
	if !s.gate.IsAdmin(actor) {
		return apperr.ErrUnauthorized
	}
	return nil
}

func (s *Service) validReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", fmt.Errorf("reason required: %w", apperr.ErrInvalidInput)
	}
	if len(reason) > s.cfg.ReasonMaxLen {
		return "", fmt.Errorf("reason exceeds %d characters: %w", s.cfg.ReasonMaxLen, apperr.ErrInvalidInput)
	}
	return reason, nil
}

// record writes a case and mirrors it to the audit feed.
func (s *Service) record(ctx context.Context, c Case) (int64, error) {
	id, err := s.cases.Record(ctx, c)
	if err != nil {
		return 0, err
	}
	c.ID = id
	if s.notifier != nil {
		s.notifier.MirrorCase(c)
	}
	return id, nil
}

// recordQuiet audits read-path operations; an audit failure must not fail
// the read itself.
func (s *Service) recordQuiet(ctx context.Context, c Case) {
	if _, err := s.record(ctx, c); err != nil {
		s.getLogEntry().WithError(err).WithField("action", c.Action).Error("failed to audit read operation")
	}
}

func (s *Service) dm(memberID int64, text string) {
	if s.notifier != nil {
		s.notifier.DirectMessage(memberID, text)
	}
}

func durationLabel(duration string) string {
	if duration == "" {
		return "Permanent"
	}
	return duration
}
