package moderation

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wardenbot/warden/internal/observability"
)

// Reconciler periodically scans every member's sanction list, reverses the
// real-world effect of lapsed time-bound sanctions and removes their
// records. All of its state is derived from stored fields, so a restart
// mid-cycle loses at most one cycle's worth of timing.
type Reconciler struct {
	sanctions *SanctionStore
	actuator  Actuator
	roles     map[Category]int64
	interval  time.Duration

	// now is swapped in tests to move the clock.
	now func() time.Time

	runMutex  sync.Mutex
	started   bool
	runCancel context.CancelFunc
	workersWg sync.WaitGroup
}

func NewReconciler(sanctions *SanctionStore, actuator Actuator, roles map[Category]int64, interval time.Duration) *Reconciler {
	return &Reconciler{
		sanctions: sanctions,
		actuator:  actuator,
		roles:     roles,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reconciler) Name() string { return "reconciler" }

func (r *Reconciler) Start(ctx context.Context) error {
	r.runMutex.Lock()
	defer r.runMutex.Unlock()
	if r.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.runCancel = cancel

	r.workersWg.Add(1)
	go func() {
		defer r.workersWg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := r.Cycle(runCtx); err != nil && !errorsIsCanceled(err) {
					observability.RecordReconcileCycle("error")
					log.WithError(err).Error("reconciliation cycle failed, retrying next interval")
					continue
				}
				observability.RecordReconcileCycle("ok")
			}
		}
	}()

	r.started = true
	return nil
}

// Stop cancels the loop. A new cycle will not start; an in-flight one is
// allowed to finish within ctx's deadline.
func (r *Reconciler) Stop(ctx context.Context) error {
	r.runMutex.Lock()
	if !r.started {
		r.runMutex.Unlock()
		return nil
	}
	r.started = false
	cancel := r.runCancel
	r.runMutex.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.workersWg.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Cycle runs one full reconciliation pass. A member whose reconciliation
// fails is logged and skipped; the pass continues with the next member.
func (r *Reconciler) Cycle(ctx context.Context) error {
	members, err := r.sanctions.Members(ctx)
	if err != nil {
		return err
	}
	for _, memberID := range members {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.reconcileMember(ctx, memberID); err != nil {
			if errorsIsCanceled(err) {
				return err
			}
			log.WithError(err).WithField("member_id", memberID).Error("failed to reconcile member")
		}
	}
	return nil
}

func (r *Reconciler) reconcileMember(ctx context.Context, memberID int64) error {
	entries, err := r.sanctions.Entries(ctx, memberID)
	if err != nil {
		return err
	}
	now := r.now()
	for _, entry := range entries {
		if entry.Malformed {
			// Unreadable records are kept forever rather than guessed at.
			continue
		}
		deadline, ok := entry.Sanction.Deadline()
		if !ok || now.Before(deadline) {
			continue
		}

		r.reverse(ctx, memberID, entry.Sanction)

		// The record goes even when reversal failed: one attempt, no
		// tight retry loop against a dead target.
		if err := r.sanctions.Remove(ctx, memberID, entry.Raw); err != nil {
			return err
		}
	}
	return nil
}

// reverse undoes the sanction's real-world effect. Failures are logged and
// swallowed so one member's dead role cannot stall everyone else.
func (r *Reconciler) reverse(ctx context.Context, memberID int64, rec Sanction) {
	entry := log.WithFields(log.Fields{
		"context":   "reconciler",
		"member_id": memberID,
		"kind":      string(rec.Kind),
	})

	var err error
	switch rec.Kind {
	case KindCategoryBan:
		roleID, ok := r.roles[rec.Category]
		if !ok {
			entry.WithField("category", string(rec.Category)).Warn("no role mapped for expired ban, dropping record")
			observability.RecordReversal(string(rec.Kind), "skipped")
			return
		}
		err = r.actuator.RemoveRole(ctx, memberID, roleID)
	case KindGlobalBan:
		err = r.actuator.UnbanAccount(ctx, memberID)
	default:
		// Timeouts lapse on the platform's own clock; warnings carry no
		// enforcement to undo.
		observability.RecordReversal(string(rec.Kind), "skipped")
		return
	}

	if err != nil {
		observability.RecordReversal(string(rec.Kind), "error")
		entry.WithError(err).Error("failed to reverse expired sanction")
		return
	}
	observability.RecordReversal(string(rec.Kind), "ok")
	entry.Info("expired sanction reversed")
}

func errorsIsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
