package moderation

import (
	"context"
	"time"
)

// Actuator is the external capability that actually grants or revokes
// roles, timeouts and account bans. The core consumes it, it never owns
// it. Implementations report ErrForbidden when the caller lacks the
// capability and ErrNotFound when the target no longer exists.
type Actuator interface {
	AddRole(ctx context.Context, memberID, roleID int64) error
	RemoveRole(ctx context.Context, memberID, roleID int64) error
	ApplyTimeout(ctx context.Context, memberID int64, until time.Time) error
	BanAccount(ctx context.Context, memberID int64, reason string) error
	UnbanAccount(ctx context.Context, memberID int64) error
}

// Notifier delivers best-effort side effects after the authoritative state
// transition commits. Delivery failure never propagates into the
// operation's result.
type Notifier interface {
	DirectMessage(memberID int64, text string)
	MirrorCase(c Case)
}
