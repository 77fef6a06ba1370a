// Package access decides whether an acting staff identity may perform a
// moderation operation.
package access

import (
	"context"
	"strconv"

	"github.com/wardenbot/warden/internal/store"
)

// Actor is the authenticated identity behind a moderation request. Admin
// reflects the platform-level administrator capability, not store state.
type Actor struct {
	ID    int64
	Admin bool
}

type staffStore interface {
	SAdd(ctx context.Context, key, member string) error
	SRem(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
}

// Gate answers authorization questions against the staff set.
type Gate struct {
	store staffStore
}

func NewGate(store staffStore) *Gate {
	return &Gate{store: store}
}

// IsAuthorized reports whether actor may perform moderation operations:
// platform administrators always may, anyone else must be in the staff set.
func (g *Gate) IsAuthorized(ctx context.Context, actor Actor) (bool, error) {
	if actor.Admin {
		return true, nil
	}
	return g.store.SIsMember(ctx, store.StaffKey, strconv.FormatInt(actor.ID, 10))
}

// IsAdmin reports whether actor may manage the staff set itself. The staff
// set never grants this.
func (g *Gate) IsAdmin(actor Actor) bool {
	return actor.Admin
}

func (g *Gate) GrantStaff(ctx context.Context, memberID int64) error {
	return g.store.SAdd(ctx, store.StaffKey, strconv.FormatInt(memberID, 10))
}

func (g *Gate) RevokeStaff(ctx context.Context, memberID int64) error {
	return g.store.SRem(ctx, store.StaffKey, strconv.FormatInt(memberID, 10))
}

func (g *Gate) ListStaff(ctx context.Context) ([]int64, error) {
	raw, err := g.store.SMembers(ctx, store.StaffKey)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, member := range raw {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			// Set entries are written by GrantStaff only; skip anything
			// that predates it rather than failing the listing.
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
