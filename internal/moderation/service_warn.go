package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wardenbot/warden/internal/observability"
	"github.com/wardenbot/warden/internal/policy/access"
)

// WarnResult reports what one warning operation did.
type WarnResult struct {
	Count  int64
	Cap    int64
	CaseID int64
	// ThresholdCaseID is set when this warning reached the category cap
	// and a threshold-crossing audit entry was written. Crossing the cap
	// is a signal only; escalation stays an explicit staff decision.
	ThresholdCaseID int64
}

// Warn increments the member's counter for cat, appends a warning record
// to the sanction list and audits the action.
func (s *Service) Warn(ctx context.Context, actor access.Actor, memberID int64, cat WarnCategory, reason string) (WarnResult, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return WarnResult{}, err
	}
	reason, err := s.validReason(reason)
	if err != nil {
		return WarnResult{}, err
	}

	count, err := s.warnings.Increment(ctx, memberID, cat)
	if err != nil {
		return WarnResult{}, err
	}

	kind := KindGeneralWarning
	if cat == WarnAuction {
		kind = KindAuctionWarning
	}
	rec := Sanction{
		Kind:      kind,
		Reason:    reason,
		Moderator: actor.ID,
		IssuedAt:  time.Now().UTC(),
		Count:     count,
	}
	if err := s.sanctions.Append(ctx, memberID, rec); err != nil {
		return WarnResult{}, err
	}
	observability.RecordSanctionIssued(string(kind))

	result := WarnResult{Count: count, Cap: s.warnings.Cap(cat)}

	s.dm(memberID, warnMessage(cat, reason, count, result.Cap))

	result.CaseID, err = s.record(ctx, Case{
		Action:      fmt.Sprintf("Warn (%s)", cat),
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("%s • Count %d", reason, count),
		Category:    strings.ToLower(string(cat)),
	})
	if err != nil {
		return WarnResult{}, err
	}

	if s.warnings.AtCap(cat, count) {
		result.ThresholdCaseID, err = s.record(ctx, Case{
			Action:      fmt.Sprintf("%s Threshold Reached (>= %d)", cat, result.Cap),
			ModeratorID: actor.ID,
			TargetID:    memberID,
			Reason:      fmt.Sprintf("Count: %d", count),
			Category:    strings.ToLower(string(cat)),
		})
		if err != nil {
			return WarnResult{}, err
		}
		s.dm(memberID, fmt.Sprintf(
			"You reached the %s warning threshold (%d/%d). Staff may take further action; you can appeal to the staff.",
			strings.ToLower(string(cat)), count, result.Cap,
		))
	}
	return result, nil
}

// WarningCounts returns the member's counters for every warning category.
func (s *Service) WarningCounts(ctx context.Context, actor access.Actor, memberID int64) (map[WarnCategory]int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}
	counts := make(map[WarnCategory]int64, 2)
	for _, cat := range []WarnCategory{WarnAuction, WarnGeneral} {
		count, err := s.warnings.Count(ctx, memberID, cat)
		if err != nil {
			return nil, err
		}
		counts[cat] = count
	}
	s.recordQuiet(ctx, Case{
		Action:      "Warnings View",
		ModeratorID: actor.ID,
		TargetID:    memberID,
		Reason:      fmt.Sprintf("Auction=%d, General=%d", counts[WarnAuction], counts[WarnGeneral]),
	})
	return counts, nil
}

// ClearWarnings deletes the member's counter for cat.
func (s *Service) ClearWarnings(ctx context.Context, actor access.Actor, memberID int64, cat WarnCategory) (int64, error) {
	if err := s.authorize(ctx, actor); err != nil {
		return 0, err
	}
	if err := s.warnings.Clear(ctx, memberID, cat); err != nil {
		return 0, err
	}
	return s.record(ctx, Case{
		Action:      fmt.Sprintf("Clear Warnings (%s)", cat),
		ModeratorID: actor.ID,
		TargetID:    memberID,
	})
}

func warnMessage(cat WarnCategory, reason string, count, cap int64) string {
	if cap > 0 {
		return fmt.Sprintf("You have received a %s Warning.\nReason: %s\nTotal %s Warnings: %d/%d", cat, reason, cat, count, cap)
	}
	return fmt.Sprintf("You have received a %s Warning.\nReason: %s\nTotal %s Warnings: %d", cat, reason, cat, count)
}
