package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wardenbot/warden/internal/config"
	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/store"
)

type warnCounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// WarningLedger keeps one monotonic counter per (member, category) pair.
// Increments ride on the store's atomic increment, so concurrent warnings
// never lose updates.
type WarningLedger struct {
	store warnCounterStore
	caps  map[WarnCategory]int64
}

func NewWarningLedger(store warnCounterStore, cfg config.Moderation) *WarningLedger {
	return &WarningLedger{
		store: store,
		caps: map[WarnCategory]int64{
			WarnAuction: cfg.AuctionCap,
			WarnGeneral: cfg.GeneralCap,
		},
	}
}

// Increment bumps the counter and returns the post-increment value
// actually stored.
func (l *WarningLedger) Increment(ctx context.Context, memberID int64, cat WarnCategory) (int64, error) {
	return l.store.Incr(ctx, store.WarnKey(string(cat), memberID))
}

// Count reads the current counter; an absent counter is zero.
func (l *WarningLedger) Count(ctx context.Context, memberID int64, cat WarnCategory) (int64, error) {
	raw, err := l.store.Get(ctx, store.WarnKey(string(cat), memberID))
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parseCount(raw)
}

// Clear deletes the counter unconditionally.
func (l *WarningLedger) Clear(ctx context.Context, memberID int64, cat WarnCategory) error {
	return l.store.Del(ctx, store.WarnKey(string(cat), memberID))
}

// Cap returns the configured threshold for cat; zero means uncapped.
func (l *WarningLedger) Cap(cat WarnCategory) int64 {
	return l.caps[cat]
}

// AtCap reports whether count has reached the category threshold. Crossing
// it is an audit-only signal, escalation stays a staff decision.
func (l *WarningLedger) AtCap(cat WarnCategory, count int64) bool {
	cap := l.caps[cat]
	return cap > 0 && count >= cap
}

func parseCount(raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter value %q: %w", raw, apperr.ErrMalformedRecord)
	}
	return n, nil
}
