// Package notify delivers the best-effort side channels of a moderation
// operation: the direct message to the sanctioned member and the
// human-readable mirror of every case ledger write. Both are dispatched
// after the authoritative state transition commits and neither can fail
// the operation that triggered them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wardenbot/warden/internal/moderation"
)

// Messenger delivers a direct message to a member.
type Messenger interface {
	DirectMessage(ctx context.Context, memberID int64, text string) error
}

// Feed mirrors audit events to the staff log surface.
type Feed interface {
	Publish(ctx context.Context, event Event) error
}

// Event is the feed payload for one case ledger write.
type Event struct {
	EventID     string    `json:"event_id"`
	CaseID      int64     `json:"case_id"`
	Action      string    `json:"action"`
	ModeratorID int64     `json:"moderator_id"`
	TargetID    int64     `json:"target_id,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Category    string    `json:"category,omitempty"`
	Color       int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
}

const taskTimeout = 10 * time.Second

// Dispatcher runs notification deliveries as detached, cancellable tasks.
type Dispatcher struct {
	messenger Messenger
	feed      Feed

	runMutex sync.Mutex
	started  bool
	runCtx   context.Context
	cancel   context.CancelFunc
	tasksWg  sync.WaitGroup
}

func NewDispatcher(messenger Messenger, feed Feed) *Dispatcher {
	return &Dispatcher{messenger: messenger, feed: feed}
}

func (d *Dispatcher) Name() string { return "dispatcher" }

func (d *Dispatcher) Start(ctx context.Context) error {
	d.runMutex.Lock()
	defer d.runMutex.Unlock()
	if d.started {
		return nil
	}
	d.runCtx, d.cancel = context.WithCancel(ctx)
	d.started = true
	return nil
}

// Stop waits for in-flight deliveries, giving up at ctx's deadline.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.runMutex.Lock()
	if !d.started {
		d.runMutex.Unlock()
		return nil
	}
	d.started = false
	cancel := d.cancel
	d.runMutex.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.tasksWg.Wait()
	}()

	select {
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	case <-done:
		cancel()
		return nil
	}
}

// DirectMessage sends text to the member, fire and forget.
func (d *Dispatcher) DirectMessage(memberID int64, text string) {
	if d.messenger == nil {
		return
	}
	d.dispatch("dm", func(ctx context.Context) error {
		return d.messenger.DirectMessage(ctx, memberID, text)
	})
}

// MirrorCase forwards a case ledger write to the feed, fire and forget.
func (d *Dispatcher) MirrorCase(c moderation.Case) {
	if d.feed == nil {
		return
	}
	event := Event{
		EventID:     uuid.NewRandom().String(),
		CaseID:      c.ID,
		Action:      c.Action,
		ModeratorID: c.ModeratorID,
		TargetID:    c.TargetID,
		Reason:      c.Reason,
		Category:    c.Category,
		Color:       c.Color,
		Timestamp:   c.Timestamp,
	}
	d.dispatch("feed", func(ctx context.Context) error {
		return d.feed.Publish(ctx, event)
	})
}

func (d *Dispatcher) dispatch(kind string, fn func(ctx context.Context) error) {
	d.runMutex.Lock()
	if !d.started {
		d.runMutex.Unlock()
		log.WithField("notification", kind).Debug("dispatcher stopped, dropping notification")
		return
	}
	runCtx := d.runCtx
	d.tasksWg.Add(1)
	d.runMutex.Unlock()

	go func() {
		defer d.tasksWg.Done()
		ctx, cancel := context.WithTimeout(runCtx, taskTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.WithError(err).WithField("notification", kind).Warn("notification delivery failed")
		}
	}()
}
