package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"moderation-bot/model"
)

// fakeAdapter is an in-memory platform. Absent targets read as Unset unless
// listed in missing; set failures and blocking are injectable.
type fakeAdapter struct {
	mu      sync.Mutex
	states  map[model.TargetKey]model.PermissionState
	missing map[model.TargetKey]bool

	denySets   int // fail this many SetRestrictionState calls
	blockSet   chan struct{}
	setStarted int32
	setCalls   int
	setLog     []model.TargetKey
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		states:  make(map[model.TargetKey]model.PermissionState),
		missing: make(map[model.TargetKey]bool),
	}
}

func (f *fakeAdapter) RestrictionState(target model.TargetKey) (model.PermissionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[target] {
		return model.PermissionUnset, fmt.Errorf("%w: simulated", ErrNotFound)
	}
	if state, ok := f.states[target]; ok {
		return state, nil
	}
	return model.PermissionUnset, nil
}

func (f *fakeAdapter) SetRestrictionState(target model.TargetKey, state model.PermissionState) error {
	atomic.AddInt32(&f.setStarted, 1)
	if f.blockSet != nil {
		<-f.blockSet
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.missing[target] {
		return fmt.Errorf("%w: simulated", ErrNotFound)
	}
	if f.denySets > 0 {
		f.denySets--
		return fmt.Errorf("%w: simulated", ErrPlatformDenied)
	}
	f.setLog = append(f.setLog, target)
	if state == model.PermissionUnset {
		delete(f.states, target)
	} else {
		f.states[target] = state
	}
	return nil
}

func (f *fakeAdapter) stateOf(target model.TargetKey) model.PermissionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.states[target]; ok {
		return state
	}
	return model.PermissionUnset
}

func (f *fakeAdapter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *fakeAdapter) log() []model.TargetKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TargetKey(nil), f.setLog...)
}

// fakeStore is an in-memory Store with injectable write failures.
type fakeStore struct {
	mu      sync.Mutex
	records map[string]*model.ScheduledAction
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*model.ScheduledAction)}
}

func (f *fakeStore) Put(action *model.ScheduledAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return fmt.Errorf("simulated write failure")
	}
	f.records[action.ID] = action
	return nil
}

func (f *fakeStore) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeStore) LoadAll() ([]*model.ScheduledAction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.ScheduledAction, 0, len(f.records))
	for _, a := range f.records {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (f *fakeStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[id]
	return ok
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func timeBase() time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
}

// fakeClock lets tests move the scheduler's idea of now.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
