package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

func testRetry() model.RetryConfig {
	return model.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func newTestScheduler(adapter *fakeAdapter, store *fakeStore, retry model.RetryConfig) (*Scheduler, *Guard, *fakeClock) {
	guard := NewGuard()
	s := New(store, guard, NewExecutor(adapter), retry)
	clock := newFakeClock(timeBase())
	s.now = clock.Now
	return s, guard, clock
}

func lockAction(id, guildID, channelID string, prior model.PermissionState, createdAt time.Time, durationSeconds int64) *model.ScheduledAction {
	payload := &model.LockActionPayload{
		TargetChannelID:         channelID,
		PreviousPermissionState: prior,
	}
	return &model.ScheduledAction{
		ID:              id,
		Kind:            model.ActionKindUnlock,
		Payload:         payload,
		GuildID:         guildID,
		OriginChannelID: channelID,
		ActorID:         "actor",
		CreatedAt:       createdAt,
		DurationSeconds: durationSeconds,
		DueAt:           createdAt.Add(time.Duration(durationSeconds) * time.Second),
	}
}

func TestRegisterBeforeStartRejected(t *testing.T) {
	s, _, clock := newTestScheduler(newFakeAdapter(), newFakeStore(), testRetry())
	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now(), 60)
	assert.ErrorIs(t, s.Register(a), ErrNotReady)
}

func TestRegisterValidatesAction(t *testing.T) {
	s, _, clock := newTestScheduler(newFakeAdapter(), newFakeStore(), testRetry())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.ErrorIs(t, s.Register(nil), ErrInvalidRequest)

	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now(), 60)
	a.Kind = model.ActionKind("SELF_DESTRUCT")
	assert.ErrorIs(t, s.Register(a), ErrInvalidRequest)
}

func TestFiresAtDueTimeNotBefore(t *testing.T) {
	adapter := newFakeAdapter()
	store := newFakeStore()
	s, guard, clock := newTestScheduler(adapter, store, testRetry())
	require.NoError(t, s.Start())
	defer s.Stop()

	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now(), 3600)
	target := a.Target()
	adapter.states[target] = model.PermissionDenied
	_, err := guard.Claim(target, model.PermissionUnset)
	require.NoError(t, err)
	require.NoError(t, s.Register(a))

	// Not due yet: nothing may fire.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, adapter.calls())
	assert.True(t, store.has("a1"))

	clock.Advance(time.Hour + time.Second)
	s.poke()

	require.Eventually(t, func() bool { return !store.has("a1") }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, model.PermissionUnset, adapter.stateOf(target))
	_, active := guard.Active(target)
	assert.False(t, active)
}

func TestStartupReplayFiresOverdueInOrder(t *testing.T) {
	adapter := newFakeAdapter()
	store := newFakeStore()
	s, guard, clock := newTestScheduler(adapter, store, testRetry())

	base := clock.Now()
	overdue1 := lockAction("a1", "g1", "c1", model.PermissionAllowed, base.Add(-3*time.Hour), 3600)
	overdue2 := lockAction("a2", "g1", "c2", model.PermissionUnset, base.Add(-2*time.Hour), 3600)
	future := lockAction("a3", "g1", "c3", model.PermissionUnset, base, 3600)
	for _, a := range []*model.ScheduledAction{overdue2, future, overdue1} {
		adapter.states[a.Target()] = model.PermissionDenied
		require.NoError(t, store.Put(a))
	}

	require.NoError(t, s.Start())
	defer s.Stop()

	// Overdue actions fired synchronously during Start, in due order.
	require.Equal(t, []model.TargetKey{overdue1.Target(), overdue2.Target()}, adapter.log())
	assert.Equal(t, model.PermissionAllowed, adapter.stateOf(overdue1.Target()))
	assert.Equal(t, model.PermissionUnset, adapter.stateOf(overdue2.Target()))
	assert.False(t, store.has("a1"))
	assert.False(t, store.has("a2"))

	// The future action is re-armed with its claim rebuilt and its due time
	// untouched.
	assert.True(t, store.has("a3"))
	armed, ok := s.Lookup("a3")
	require.True(t, ok)
	assert.True(t, armed.DueAt.Equal(future.DueAt))
	_, active := guard.Active(future.Target())
	assert.True(t, active)

	// New registrations are accepted once replay is done.
	a4 := lockAction("a4", "g1", "c4", model.PermissionUnset, base, 3600)
	assert.NoError(t, s.Register(a4))
}

func TestStartupReplayDropsSupersededRecords(t *testing.T) {
	adapter := newFakeAdapter()
	store := newFakeStore()
	s, guard, clock := newTestScheduler(adapter, store, testRetry())

	// A record whose revert succeeded but whose delete failed, followed by
	// a newer action restricting the same target again.
	base := clock.Now()
	stale := lockAction("a-stale", "g1", "c1", model.PermissionUnset, base.Add(-2*time.Hour), 3600)
	fresh := lockAction("a-fresh", "g1", "c1", model.PermissionAllowed, base.Add(-30*time.Minute), 7200)
	require.NoError(t, store.Put(stale))
	require.NoError(t, store.Put(fresh))
	adapter.states[fresh.Target()] = model.PermissionDenied

	require.NoError(t, s.Start())
	defer s.Stop()

	// The stale record is deleted without touching the platform; the live
	// restriction stays in place until the newer action is due.
	assert.False(t, store.has("a-stale"))
	assert.True(t, store.has("a-fresh"))
	assert.Equal(t, 0, adapter.calls())
	assert.Equal(t, model.PermissionDenied, adapter.stateOf(fresh.Target()))

	armed, ok := s.Lookup("a-fresh")
	require.True(t, ok)
	assert.True(t, armed.DueAt.Equal(fresh.DueAt))
	_, active := guard.Active(fresh.Target())
	assert.True(t, active)
}

func TestRevertRetriedThroughDenials(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.denySets = 3
	store := newFakeStore()
	retry := testRetry()
	retry.MaxAttempts = 5
	retry.InitialInterval = 100 * time.Millisecond
	retry.MaxInterval = 100 * time.Millisecond
	s, guard, clock := newTestScheduler(adapter, store, retry)
	require.NoError(t, s.Start())
	defer s.Stop()

	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now(), 60)
	target := a.Target()
	adapter.states[target] = model.PermissionDenied
	_, err := guard.Claim(target, model.PermissionUnset)
	require.NoError(t, err)
	require.NoError(t, s.Register(a))

	clock.Advance(2 * time.Minute)
	s.poke()

	// The record stays persisted while the platform keeps refusing.
	require.Eventually(t, func() bool { return adapter.calls() >= 1 }, 2*time.Second, time.Millisecond)
	assert.True(t, store.has("a1"))

	require.Eventually(t, func() bool { return !store.has("a1") }, 3*time.Second, 5*time.Millisecond)
	assert.Equal(t, 4, adapter.calls())
	assert.Equal(t, model.PermissionUnset, adapter.stateOf(target))
}

func TestRetriesExhaustedRecordRetained(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.denySets = 1 << 30
	store := newFakeStore()
	retry := testRetry()
	retry.MaxAttempts = 2
	s, guard, clock := newTestScheduler(adapter, store, retry)

	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now().Add(-time.Hour), 60)
	target := a.Target()
	adapter.states[target] = model.PermissionDenied
	require.NoError(t, store.Put(a))

	// Replay runs the retries synchronously: initial attempt plus two
	// retries, then the record is kept for manual intervention.
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 3, adapter.calls())
	assert.True(t, store.has("a1"))
	_, active := guard.Active(target)
	assert.True(t, active)
	assert.Equal(t, model.PermissionDenied, adapter.stateOf(target))
}

func TestCancelPendingAction(t *testing.T) {
	adapter := newFakeAdapter()
	store := newFakeStore()
	s, guard, clock := newTestScheduler(adapter, store, testRetry())
	require.NoError(t, s.Start())
	defer s.Stop()

	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now(), 3600)
	_, err := guard.Claim(a.Target(), model.PermissionUnset)
	require.NoError(t, err)
	require.NoError(t, s.Register(a))

	assert.True(t, s.Cancel("a1"))
	assert.False(t, store.has("a1"))
	_, ok := s.Lookup("a1")
	assert.False(t, ok)

	// Cancel does not revert: the restriction and its claim stay live.
	_, active := guard.Active(a.Target())
	assert.True(t, active)

	assert.False(t, s.Cancel("a1"))
	assert.False(t, s.Cancel("never-existed"))
}

func TestCancelRacingFireReturnsFalse(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.blockSet = make(chan struct{})
	store := newFakeStore()
	s, guard, clock := newTestScheduler(adapter, store, testRetry())
	require.NoError(t, s.Start())

	a := lockAction("a1", "g1", "c1", model.PermissionUnset, clock.Now(), 60)
	adapter.states[a.Target()] = model.PermissionDenied
	_, err := guard.Claim(a.Target(), model.PermissionUnset)
	require.NoError(t, err)
	require.NoError(t, s.Register(a))

	clock.Advance(2 * time.Minute)
	s.poke()

	// Wait until the revert is in flight, parked inside the adapter.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&adapter.setStarted) >= 1
	}, 2*time.Second, time.Millisecond)

	assert.False(t, s.Cancel("a1"))

	close(adapter.blockSet)
	require.Eventually(t, func() bool { return !store.has("a1") }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestPendingListsGuildInDueOrder(t *testing.T) {
	adapter := newFakeAdapter()
	store := newFakeStore()
	s, guard, clock := newTestScheduler(adapter, store, testRetry())
	require.NoError(t, s.Start())
	defer s.Stop()

	base := clock.Now()
	later := lockAction("a1", "g1", "c1", model.PermissionUnset, base, 7200)
	sooner := lockAction("a2", "g1", "c2", model.PermissionUnset, base, 3600)
	other := lockAction("a3", "g2", "c3", model.PermissionUnset, base, 60)
	for _, a := range []*model.ScheduledAction{later, sooner, other} {
		_, err := guard.Claim(a.Target(), model.PermissionUnset)
		require.NoError(t, err)
		require.NoError(t, s.Register(a))
	}

	pending := s.Pending("g1")
	require.Len(t, pending, 2)
	assert.Equal(t, "a2", pending[0].ID)
	assert.Equal(t, "a1", pending[1].ID)
}
