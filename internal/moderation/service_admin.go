package moderation

import (
	"context"
	"fmt"
	"strings"

	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/policy/access"
)

// Case retrieves a stored audit entry by id.
func (s *Service) Case(ctx context.Context, actor access.Actor, id int64) (Case, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return Case{}, err
	}
	c, err := s.cases.Get(ctx, id)
	if err != nil {
		return Case{}, err
	}
	s.recordQuiet(ctx, Case{
		Action:      "Case Retrieve",
		ModeratorID: actor.ID,
		Reason:      fmt.Sprintf("Retrieved Case #%d", id),
	})
	return c, nil
}

// NoteAdd attaches a context note to the member.
func (s *Service) NoteAdd(ctx context.Context, actor access.Actor, memberID int64, note string) (string, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return "", err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return "", fmt.Errorf("note required: %w", apperr.ErrInvalidInput)
	}
	if len(note) > s.cfg.ReasonMaxLen {
		return "", fmt.Errorf("note exceeds %d characters: %w", s.cfg.ReasonMaxLen, apperr.ErrInvalidInput)
	}
	entry, err := s.notes.Add(ctx, memberID, actor.ID, note)
	if err != nil {
		return "", err
	}
	s.recordQuiet(ctx, Case{
		Action:      "Context Add",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      entry,
	})
	return entry, nil
}

func (s *Service) NoteList(ctx context.Context, actor access.Actor, memberID int64) ([]string, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, memberID)
	if err != nil {
		return nil, err
	}
	s.recordQuiet(ctx, Case{
		Action:      "Context List",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("Listed %d notes", len(notes)),
	})
	return notes, nil
}

func (s *Service) NoteClear(ctx context.Context, actor access.Actor, memberID int64) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	if err := s.notes.Clear(ctx, memberID); err != nil {
		return 0, err
	}
	return s.record(ctx, Case{
		Action:      "Context Clear",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      "Cleared notes",
	})
}

// Summary is the staff-facing profile of a member's moderation history.
type Summary struct {
	SanctionCount int
	Latest        []Entry
	Warnings      map[WarnCategory]int64
}

// Summary returns the member's sanction count, the most recent records and
// the warning counters.
func (s *Service) Summary(ctx context.Context, actor access.Actor, memberID int64) (Summary, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return Summary{}, err
	}
	entries, err := s.sanctions.Entries(ctx, memberID)
	if err != nil {
		return Summary{}, err
	}
	warnings := make(map[WarnCategory]int64, 2)
	for _, cat := range []WarnCategory{WarnAuction, WarnGeneral} {
		count, err := s.warnings.Count(ctx, memberID, cat)
		if err != nil {
			return Summary{}, err
		}
		warnings[cat] = count
	}

	latest := entries
	if len(latest) > 3 {
		latest = latest[len(latest)-3:]
	}
	s.recordQuiet(ctx, Case{
		Action:      "User Profile View",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("Sanctions count: %d", len(entries)),
	})
	return Summary{SanctionCount: len(entries), Latest: latest, Warnings: warnings}, nil
}

// StaffAdd grants memberID moderation authority. Administrators only; the
// staff set never manages itself.
func (s *Service) StaffAdd(ctx context.Context, actor access.Actor, memberID int64) (int64, error) {
	if err := s.authorizeAdmin(actor); err != nil {
		return 0, err
	}
	if err := s.gate.GrantStaff(ctx, memberID); err != nil {
		return 0, err
	}
	return s.record(ctx, Case{
		Action:      "Staff Add",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      "Added to staff set",
	})
}

func (s *Service) StaffRemove(ctx context.Context, actor access.Actor, memberID int64) (int64, error) {
	if err := s.authorizeAdmin(actor); err != nil {
		return 0, err
	}
	if err := s.gate.RevokeStaff(ctx, memberID); err != nil {
		return 0, err
	}
	return s.record(ctx, Case{
		Action:      "Staff Remove",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      "Removed from staff set",
	})
}

func (s *Service) StaffList(ctx context.Context, actor access.Actor) ([]int64, error) {
	if err := s.authorizeAdmin(actor); err != nil {
		return nil, err
	}
	return s.gate.ListStaff(ctx)
}
