package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"moderation-bot/model"
)

// Scheduler owns the timing discipline for pending actions: one min-heap of
// due times, one sleeping worker, durable records in the store. Registration
// and cancellation are safe to call from any goroutine; the worker fires due
// actions and may revert several at once since the guard keeps their targets
// disjoint.
type Scheduler struct {
	store Store
	guard *Guard
	exec  *Executor
	retry model.RetryConfig

	mu        sync.Mutex
	queue     actionHeap
	firing    map[string]struct{}
	accepting bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// now is swapped out in tests to simulate clock advance.
	now func() time.Time
}

func New(store Store, guard *Guard, exec *Executor, retry model.RetryConfig) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:  store,
		guard:  guard,
		exec:   exec,
		retry:  retry,
		firing: make(map[string]struct{}),
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// Start reloads persisted actions, fires everything already overdue in due
// order, arms timers for the rest and then begins accepting registrations.
// Overdue reversals happen before Start returns; this trades a longer
// restart for never missing a reversal.
func (s *Scheduler) Start() error {
	actions, err := s.store.LoadAll()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// A delete that failed after a successful revert leaves a record
	// behind; once the target is restricted again the store holds two
	// records for one target. Only the newest is live. Replaying an older
	// one would revert the live restriction to a prior state that no
	// longer applies, so superseded records are deleted, not fired.
	latest := make(map[model.TargetKey]*model.ScheduledAction, len(actions))
	for _, a := range actions {
		if cur, ok := latest[a.Target()]; !ok || a.CreatedAt.After(cur.CreatedAt) {
			latest[a.Target()] = a
		}
	}
	live := actions[:0]
	for _, a := range actions {
		if latest[a.Target()] != a {
			log.Printf("Dropping stale action %s: superseded by a newer action on its target", a.ID)
			if err := s.store.Delete(a.ID); err != nil {
				log.Printf("Failed to delete stale action %s: %v", a.ID, err)
			}
			continue
		}
		live = append(live, a)
	}

	now := s.now()
	var future []*model.ScheduledAction
	for _, a := range live {
		if _, err := s.guard.Claim(a.Target(), a.Payload.PriorState()); err != nil {
			log.Printf("Skipping action %s: duplicate claim for its target: %v", a.ID, err)
			continue
		}
		if a.DueAt.After(now) {
			future = append(future, a)
			continue
		}
		// LoadAll is ordered by due time, so overdue actions replay in
		// stored order.
		s.fire(a)
	}

	s.mu.Lock()
	for _, a := range future {
		heap.Push(&s.queue, a)
	}
	s.accepting = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()

	log.Printf("Scheduler started: %d replayed, %d pending", len(live)-len(future), len(future))
	return nil
}

// Stop drains the scheduler. In-flight reverts are interrupted; their
// records stay in the store and replay at the next startup.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.mu.Lock()
	s.accepting = false
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

// Register persists action and arms its timer. A due time already in the
// past is not an error; the worker fires it immediately, which is what late
// recovery needs.
func (s *Scheduler) Register(action *model.ScheduledAction) error {
	if action == nil || action.Payload == nil || action.DueAt.IsZero() {
		return fmt.Errorf("%w: incomplete action", ErrInvalidRequest)
	}
	if !s.exec.Supports(action.Kind) {
		return fmt.Errorf("%w: unsupported kind %q", ErrInvalidRequest, action.Kind)
	}

	s.mu.Lock()
	if !s.accepting {
		s.mu.Unlock()
		return ErrNotReady
	}
	s.mu.Unlock()

	if err := s.store.Put(action); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	heap.Push(&s.queue, action)
	s.mu.Unlock()
	s.poke()
	return nil
}

// Cancel removes a pending action before it fires and reports whether one
// was found. It does not revert the restriction; callers wanting immediate
// reversal revert first, then cancel. An action that is currently being
// fired cannot be cancelled.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	if _, inflight := s.firing[id]; inflight {
		s.mu.Unlock()
		return false
	}
	idx := s.queue.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	heap.Remove(&s.queue, idx)
	s.mu.Unlock()

	if err := s.store.Delete(id); err != nil {
		log.Printf("Failed to delete cancelled action %s: %v", id, err)
	}
	s.poke()
	return true
}

// Lookup returns the pending action with the given id.
func (s *Scheduler) Lookup(id string) (*model.ScheduledAction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.queue.indexOf(id); idx >= 0 {
		return s.queue[idx], true
	}
	return nil, false
}

// Pending returns the guild's pending actions ordered by due time.
func (s *Scheduler) Pending(guildID string) []*model.ScheduledAction {
	s.mu.Lock()
	var out []*model.ScheduledAction
	for _, a := range s.queue {
		if a.GuildID == guildID {
			out = append(out, a)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

// poke nudges the worker to re-evaluate its wake target, e.g. after a
// registration earlier than the current earliest.
func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		now := s.now()
		for s.queue.Len() > 0 && !s.queue[0].DueAt.After(now) {
			a := heap.Pop(&s.queue).(*model.ScheduledAction)
			s.firing[a.ID] = struct{}{}
			s.wg.Add(1)
			go func(a *model.ScheduledAction) {
				defer s.wg.Done()
				s.fire(a)
				s.mu.Lock()
				delete(s.firing, a.ID)
				s.mu.Unlock()
			}(a)
		}
		var wait time.Duration
		hasNext := s.queue.Len() > 0
		if hasNext {
			wait = s.queue[0].DueAt.Sub(now)
		}
		s.mu.Unlock()

		if !hasNext {
			select {
			case <-s.wake:
			case <-s.ctx.Done():
				return
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		case <-s.ctx.Done():
			timer.Stop()
			return
		}
	}
}

// fire reverts one due action. Recoverable platform failures are retried
// with bounded exponential backoff; once attempts are exhausted the record
// is kept in the store for manual intervention or the next replay, never
// silently dropped. One action's failure does not touch any other action.
func (s *Scheduler) fire(a *model.ScheduledAction) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retry.InitialInterval
	bo.MaxInterval = s.retry.MaxInterval

	err := backoff.Retry(func() error {
		err := s.exec.Revert(a)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrInvalidRequest) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, s.retry.MaxAttempts), s.ctx))

	if err != nil {
		if s.ctx.Err() != nil {
			log.Printf("Shutdown while reverting action %s; record retained for startup replay", a.ID)
		} else {
			log.Printf("Giving up on action %s (%s) after %d retries: %v; record retained", a.ID, a.Kind, s.retry.MaxAttempts, err)
		}
		return
	}

	s.guard.Release(a.Target())
	if err := s.store.Delete(a.ID); err != nil {
		// Revert is idempotent, so replaying this record at next startup
		// is safe.
		log.Printf("Failed to delete fired action %s: %v", a.ID, err)
	}
}
