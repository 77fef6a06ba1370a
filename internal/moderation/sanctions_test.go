package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/wardenbot/warden/internal/store"
)

func TestSanctionStoreAppendAndEntries(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	first := Sanction{Kind: KindAuctionWarning, Category: CategoryAuction, Reason: "late payment", Moderator: 1, IssuedAt: time.Now().UTC(), Count: 1}
	second := Sanction{Kind: KindCategoryBan, Category: CategoryMarket, Reason: "resale scam", Moderator: 1, IssuedAt: time.Now().UTC(), Duration: "2 days"}
	for _, rec := range []Sanction{first, second} {
		if err := env.sanctions.Append(ctx, 42, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := env.sanctions.Entries(ctx, 42)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Sanction.Kind != KindAuctionWarning || entries[1].Sanction.Kind != KindCategoryBan {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[1].Sanction.Duration != "2 days" {
		t.Fatalf("duration = %q", entries[1].Sanction.Duration)
	}
}

func TestSanctionStoreEntriesMissingMember(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	entries, err := env.sanctions.Entries(context.Background(), 999)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(entries))
	}
}

func TestSanctionStorePreservesMalformedEntries(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.kv.RPush(ctx, store.SanctionsKey(42), "not json at all"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := env.sanctions.Append(ctx, 42, Sanction{Kind: KindTimeout, Moderator: 1, IssuedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := env.sanctions.Entries(ctx, 42)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if !entries[0].Malformed {
		t.Fatal("unparseable element must be flagged malformed")
	}
	if entries[0].Raw != "not json at all" {
		t.Fatalf("raw = %q, want the stored bytes verbatim", entries[0].Raw)
	}
	if entries[1].Malformed {
		t.Fatal("valid element wrongly flagged malformed")
	}
}

func TestSanctionStoreRemoveDropsOneElement(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	issued := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	keep := Sanction{Kind: KindCategoryBan, Category: CategorySpawn, Moderator: 1, IssuedAt: issued}
	drop := Sanction{Kind: KindCategoryBan, Category: CategoryMarket, Moderator: 1, IssuedAt: issued, Duration: "12h"}
	for _, rec := range []Sanction{keep, drop} {
		if err := env.sanctions.Append(ctx, 7, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := env.sanctions.Entries(ctx, 7)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if err := env.sanctions.Remove(ctx, 7, entries[1].Raw); err != nil {
		t.Fatalf("remove: %v", err)
	}

	entries, err = env.sanctions.Entries(ctx, 7)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Sanction.Category != CategorySpawn {
		t.Fatalf("wrong element removed: %+v", entries[0])
	}
}

func TestSanctionStoreMembers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	for _, id := range []int64{11, 22, 33} {
		if err := env.sanctions.Append(ctx, id, Sanction{Kind: KindTimeout, Moderator: 1, IssuedAt: time.Now().UTC()}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	members, err := env.sanctions.Members(ctx)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	seen := make(map[int64]bool, len(members))
	for _, id := range members {
		seen[id] = true
	}
	for _, id := range []int64{11, 22, 33} {
		if !seen[id] {
			t.Fatalf("member %d missing from scan: %v", id, members)
		}
	}
}

func TestSanctionStoreClear(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.sanctions.Append(ctx, 5, Sanction{Kind: KindTimeout, Moderator: 1, IssuedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := env.sanctions.Clear(ctx, 5); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := env.sanctions.Entries(ctx, 5)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(entries))
	}
}
