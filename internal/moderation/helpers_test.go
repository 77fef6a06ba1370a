package moderation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wardenbot/warden/internal/config"
	"github.com/wardenbot/warden/internal/policy/access"
	"github.com/wardenbot/warden/internal/store"
)

type actuatorCall struct {
	op       string
	memberID int64
	roleID   int64
}

type fakeActuator struct {
	mu    sync.Mutex
	calls []actuatorCall
	err   error
}

func (f *fakeActuator) record(op string, memberID, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, actuatorCall{op: op, memberID: memberID, roleID: roleID})
	return f.err
}

func (f *fakeActuator) AddRole(ctx context.Context, memberID, roleID int64) error {
	return f.record("add_role", memberID, roleID)
}

func (f *fakeActuator) RemoveRole(ctx context.Context, memberID, roleID int64) error {
	return f.record("remove_role", memberID, roleID)
}

func (f *fakeActuator) ApplyTimeout(ctx context.Context, memberID int64, until time.Time) error {
	return f.record("apply_timeout", memberID, 0)
}

func (f *fakeActuator) BanAccount(ctx context.Context, memberID int64, reason string) error {
	return f.record("ban_account", memberID, 0)
}

func (f *fakeActuator) UnbanAccount(ctx context.Context, memberID int64) error {
	return f.record("unban_account", memberID, 0)
}

func (f *fakeActuator) callsFor(op string) []actuatorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []actuatorCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeNotifier struct {
	mu    sync.Mutex
	dms   []string
	cases []Case
}

func (f *fakeNotifier) DirectMessage(memberID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dms = append(f.dms, text)
}

func (f *fakeNotifier) MirrorCase(c Case) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cases = append(f.cases, c)
}

type testEnv struct {
	kv        *store.Client
	gate      *access.Gate
	warnings  *WarningLedger
	sanctions *SanctionStore
	cases     *CaseLedger
	notes     *NoteBook
	actuator  *fakeActuator
	notifier  *fakeNotifier
	svc       *Service
}

func testConfig() config.Moderation {
	return config.Moderation{
		AuctionCap:        5,
		GeneralCap:        0,
		ReasonMaxLen:      500,
		ReconcileInterval: time.Minute,
		StoreTimeout:      5 * time.Second,
		CategoryRoles: map[string]int64{
			"Auction": 201,
			"Market":  202,
			"Spawn":   203,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	kv := store.NewClientFromRedis(rdb, 5*time.Second)

	cfg := testConfig()
	env := &testEnv{
		kv:        kv,
		gate:      access.NewGate(kv),
		warnings:  NewWarningLedger(kv, cfg),
		sanctions: NewSanctionStore(kv),
		cases:     NewCaseLedger(kv),
		notes:     NewNoteBook(kv),
		actuator:  &fakeActuator{},
		notifier:  &fakeNotifier{},
	}
	env.svc = NewService(cfg, env.gate, env.warnings, env.sanctions, env.cases, env.notes, env.actuator, env.notifier)
	return env
}

// staffActor registers a non-admin staff member and returns its actor.
func (e *testEnv) staffActor(t *testing.T, id int64) access.Actor {
	t.Helper()
	if err := e.gate.GrantStaff(context.Background(), id); err != nil {
		t.Fatalf("grant staff: %v", err)
	}
	return access.Actor{ID: id}
}
