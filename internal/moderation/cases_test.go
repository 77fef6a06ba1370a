package moderation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	apperr "github.com/wardenbot/warden/internal/errors"
	"github.com/wardenbot/warden/internal/store"
)

func TestCaseLedgerRoundTrip(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	in := Case{
		Action:      "Ban Role (Market)",
		ModeratorID: 100,
		TargetID:    200,
		Reason:      "resale scam • Duration: 2 days",
		Category:    "ban",
		Color:       colorBan,
		Timestamp:   time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
	id, err := env.cases.Record(ctx, in)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if id != 1 {
		t.Fatalf("first case id = %d, want 1", id)
	}

	got, err := env.cases.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id {
		t.Fatalf("got.ID = %d, want %d", got.ID, id)
	}
	if got.Action != in.Action || got.ModeratorID != in.ModeratorID || got.TargetID != in.TargetID ||
		got.Reason != in.Reason || got.Category != in.Category || got.Color != in.Color {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Equal(in.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, in.Timestamp)
	}
}

func TestCaseLedgerIDsStrictlyIncrease(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	const writers = 25
	ids := make([]int64, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := env.cases.Record(ctx, Case{Action: "Warn (Auction)", ModeratorID: 1, TargetID: 2})
			if err != nil {
				t.Errorf("record: %v", err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		if id != int64(i+1) {
			t.Fatalf("ids have gaps or duplicates: %v", ids)
		}
	}
}

func TestCaseLedgerGetMissing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if _, err := env.cases.Get(context.Background(), 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCaseLedgerGetCorruptBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.cases.Record(ctx, Case{Action: "Timeout", ModeratorID: 1, TargetID: 2})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := env.kv.Set(ctx, store.CaseKey(id), "{not json"); err != nil {
		t.Fatalf("corrupt body: %v", err)
	}
	if _, err := env.cases.Get(ctx, id); !errors.Is(err, apperr.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestColorFor(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		category string
		want     int
	}{
		{"ban", colorBan},
		{"auction", colorWarn},
		{"general", colorWarn},
		{"timeout", colorTimeout},
		{"", colorDefault},
	} {
		if got := colorFor(tc.category); got != tc.want {
			t.Errorf("colorFor(%q) = %#x, want %#x", tc.category, got, tc.want)
		}
	}
}
