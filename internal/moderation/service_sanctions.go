package moderation

import (
	"context"
	"fmt"
	"time"

	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/observability"
	"github.com/wardenbot/warden/internal/policy/access"
)

// Ban applies the category's enforcement role to the member and appends a
// ban-role sanction record. An empty duration means permanent.
func (s *Service) Ban(ctx context.Context, actor access.Actor, memberID int64, cat Category, reason, duration string) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	reason, err := s.validReason(reason)
	if err != nil {
		return 0, err
	}
	if err := validDuration(duration); err != nil {
		return 0, err
	}
	roleID, ok := s.roles[cat]
	if !ok {
		return 0, fmt.Errorf("no role mapped for category %s: %w", cat, apperr.ErrNotFound)
	}

	// The actuator call comes first: no sanction record is written for an
	// enforcement that never happened.
	if err := s.actuator.AddRole(ctx, memberID, roleID); err != nil {
		return 0, fmt.Errorf("add role: %w", err)
	}

	rec := Sanction{
		Kind:      KindCategoryBan,
		Category:  cat,
		Reason:    reason,
		Moderator: actor.ID,
		IssuedAt:  time.Now().UTC(),
		Duration:  duration,
	}
	if err := s.sanctions.Append(ctx, memberID, rec); err != nil {
		return 0, err
	}
	observability.RecordSanctionIssued(string(KindCategoryBan))

	s.dm(memberID, fmt.Sprintf("You have been banned from %s.\nReason: %s\nDuration: %s", cat, reason, durationLabel(duration)))

	return s.record(ctx, Case{
		Action:      fmt.Sprintf("Ban Role (%s)", cat),
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("%s • Duration: %s", reason, durationLabel(duration)),
		Category:    "ban",
	})
}

// Unban removes the category's enforcement role.
func (s *Service) Unban(ctx context.Context, actor access.Actor, memberID int64, cat Category) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	roleID, ok := s.roles[cat]
	if !ok {
		return 0, fmt.Errorf("no role mapped for category %s: %w", cat, apperr.ErrNotFound)
	}
	if err := s.actuator.RemoveRole(ctx, memberID, roleID); err != nil {
		return 0, fmt.Errorf("remove role: %w", err)
	}
	return s.record(ctx, Case{
		Action:      fmt.Sprintf("Unban (%s)", cat),
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Category:    "ban",
	})
}

// GlobalBan bans the account server-wide.
func (s *Service) GlobalBan(ctx context.Context, actor access.Actor, memberID int64, reason, duration string) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	reason, err := s.validReason(reason)
	if err != nil {
		return 0, err
	}
	if err := validDuration(duration); err != nil {
		return 0, err
	}

	if err := s.actuator.BanAccount(ctx, memberID, reason); err != nil {
		return 0, fmt.Errorf("ban account: %w", err)
	}

	rec := Sanction{
		Kind:      KindGlobalBan,
		Reason:    reason,
		Moderator: actor.ID,
		IssuedAt:  time.Now().UTC(),
		Duration:  duration,
	}
	if err := s.sanctions.Append(ctx, memberID, rec); err != nil {
		return 0, err
	}
	observability.RecordSanctionIssued(string(KindGlobalBan))

	s.dm(memberID, fmt.Sprintf("You have received a Global Ban.\nReason: %s\nDuration: %s", reason, durationLabel(duration)))

	return s.record(ctx, Case{
		Action:      "All-Ban",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("%s • Duration: %s", reason, durationLabel(duration)),
		Category:    "ban",
	})
}

// GlobalUnban lifts a server-wide ban.
func (s *Service) GlobalUnban(ctx context.Context, actor access.Actor, memberID int64) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	if err := s.actuator.UnbanAccount(ctx, memberID); err != nil {
		return 0, fmt.Errorf("unban account: %w", err)
	}
	return s.record(ctx, Case{
		Action:      "All-Unban",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Category:    "ban",
	})
}

// Timeout applies a platform timeout for the given number of minutes. The
// platform's own clock lifts it, the reconciler does not.
func (s *Service) Timeout(ctx context.Context, actor access.Actor, memberID int64, reason string, minutes int) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	reason, err := s.validReason(reason)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("timeout minutes must be positive: %w", apperr.ErrInvalidInput)
	}

	until := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)
	if err := s.actuator.ApplyTimeout(ctx, memberID, until); err != nil {
		return 0, fmt.Errorf("apply timeout: %w", err)
	}

	duration := fmt.Sprintf("%d minutes", minutes)
	rec := Sanction{
		Kind:      KindTimeout,
		Reason:    reason,
		Moderator: actor.ID,
		IssuedAt:  time.Now().UTC(),
		Duration:  duration,
	}
	if err := s.sanctions.Append(ctx, memberID, rec); err != nil {
		return 0, err
	}
	observability.RecordSanctionIssued(string(KindTimeout))

	s.dm(memberID, fmt.Sprintf("You have been put in timeout.\nReason: %s\nDuration: %s", reason, duration))

	return s.record(ctx, Case{
		Action:      "Timeout",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("%s • Duration: %s", reason, duration),
		Category:    "timeout",
	})
}

// Sanctions lists the member's records in insertion order.
func (s *Service) Sanctions(ctx context.Context, actor access.Actor, memberID int64) ([]Entry, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}
	return s.sanctions.Entries(ctx, memberID)
}

// ClearSanctions drops the member's entire sanction list.
func (s *Service) ClearSanctions(ctx context.Context, actor access.Actor, memberID int64) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	if err := s.sanctions.Clear(ctx, memberID); err != nil {
		return 0, err
	}
	return s.record(ctx, Case{
		Action:      "Clear Sanctions",
		ModeratorID: actor.ID,
		TargetID:    memberID,
	})
}

func validDuration(duration string) error {
	if duration == "" {
		return nil
	}
	if _, ok := ParseSpan(duration); !ok {
		return fmt.Errorf("unparseable duration %q: %w", duration, apperr.ErrInvalidInput)
	}
	return nil
}
