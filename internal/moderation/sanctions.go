package moderation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wardenbot/warden/internal/store"
)

type sanctionListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string) ([]string, error)
	LRem(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Entry is one element of a member's sanction list. Malformed marks a
// stored element that no longer parses; such entries are preserved opaque
// and never expired, reconciliation must not silently delete what it
// cannot interpret.
type Entry struct {
	Raw       string
	Sanction  Sanction
	Malformed bool
}

// SanctionStore keeps the append-only-per-member sanction lists.
type SanctionStore struct {
	store sanctionListStore
}

func NewSanctionStore(store sanctionListStore) *SanctionStore {
	return &SanctionStore{store: store}
}

// Append adds rec to the end of the member's list. Prior entries are never
// overwritten.
func (s *SanctionStore) Append(ctx context.Context, memberID int64, rec Sanction) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal sanction: %w", err)
	}
	return s.store.RPush(ctx, store.SanctionsKey(memberID), string(raw))
}

// Entries returns the member's sanctions in insertion order.
func (s *SanctionStore) Entries(ctx context.Context, memberID int64) ([]Entry, error) {
	raws, err := s.store.LRange(ctx, store.SanctionsKey(memberID))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		entry := Entry{Raw: raw}
		if err := json.Unmarshal([]byte(raw), &entry.Sanction); err != nil {
			entry.Malformed = true
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Remove deletes exactly one list element equal to raw. Element-wise
// removal leaves concurrent appends untouched.
func (s *SanctionStore) Remove(ctx context.Context, memberID int64, raw string) error {
	return s.store.LRem(ctx, store.SanctionsKey(memberID), raw)
}

// Clear drops the member's entire sanction list.
func (s *SanctionStore) Clear(ctx context.Context, memberID int64) error {
	return s.store.Del(ctx, store.SanctionsKey(memberID))
}

// Members lists every member id that currently has a sanction list.
func (s *SanctionStore) Members(ctx context.Context) ([]int64, error) {
	keys, err := s.store.Scan(ctx, store.SanctionsScanPattern)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, err := store.MemberFromSanctionsKey(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
