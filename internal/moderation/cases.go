package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/observability"
	"github.com/wardenbot/warden/internal/store"
)

// Presentation color tags stored with each case so retrieval reproduces
// the original categorization without re-deriving it from the action text.
const (
	colorDefault = 0x5865F2
	colorBan     = 0xED4245
	colorWarn    = 0xFEE75C
	colorTimeout = 0x57F287
)

// Case is an immutable audit entry. The id is assigned at write time and
// never reused, even when a later lookup fails.
type Case struct {
	ID          int64     `json:"-"`
	Action      string    `json:"action"`
	ModeratorID int64     `json:"moderator_id"`
	TargetID    int64     `json:"target_id,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Category    string    `json:"category,omitempty"`
	Color       int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
}

type caseStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// CaseLedger assigns strictly increasing case ids and stores the bodies.
type CaseLedger struct {
	store caseStore
}

func NewCaseLedger(store caseStore) *CaseLedger {
	return &CaseLedger{store: store}
}

// Record assigns the next case id and persists the entry. The id draw is a
// single atomic increment, so concurrent writers never collide.
func (l *CaseLedger) Record(ctx context.Context, c Case) (int64, error) {
	if c.Color == 0 {
		c.Color = colorFor(c.Category)
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}

	id, err := l.store.Incr(ctx, store.CaseCounterKey)
	if err != nil {
		return 0, err
	}
	c.ID = id

	body, err := json.Marshal(c)
	if err != nil {
		return 0, fmt.Errorf("marshal case: %w", err)
	}
	if err := l.store.Set(ctx, store.CaseKey(id), string(body)); err != nil {
		// The id stays burned; ids are never reassigned.
		return 0, err
	}
	observability.RecordCaseWritten()
	return id, nil
}

// Get returns the stored case verbatim. Unknown ids report ErrNotFound, a
// record is never fabricated.
func (l *CaseLedger) Get(ctx context.Context, id int64) (Case, error) {
	body, err := l.store.Get(ctx, store.CaseKey(id))
	if err != nil {
		return Case{}, err
	}
	var c Case
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return Case{}, fmt.Errorf("case %d: %w", id, apperr.ErrMalformedRecord)
	}
	c.ID = id
	return c, nil
}

func colorFor(category string) int {
	switch category {
	case "ban":
		return colorBan
	case "auction", "general":
		return colorWarn
	case "timeout":
		return colorTimeout
	}
	return colorDefault
}
