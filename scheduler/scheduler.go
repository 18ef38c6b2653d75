package scheduler

import (
	"sync"
	"time"

	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// DefaultMaxTasks is the build-time task capacity for a production
// server, per spec.md §9 ("≥ 128 for a production implementation").
const DefaultMaxTasks = 256

// Scheduler owns a bounded, ordered set of live tasks and drives the
// cooperative run loop described in spec.md §4.1. It is designed to be
// driven from a single goroutine; Add may be called from within a
// task's Run (same goroutine) or before Run starts.
type Scheduler struct {
	mtx sync.Mutex

	maxTasks int
	slots    []*slot
	pending  []Task

	currentIdx  int // index into slots of the task currently executing, or -1
	idleBackoff time.Duration
	stopping    bool
}

// New creates an empty Scheduler with the given task capacity.
func New(maxTasks int) *Scheduler {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	return &Scheduler{
		maxTasks:   maxTasks,
		slots:      make([]*slot, 0, maxTasks),
		currentIdx: -1,
	}
}

// SetIdleBackoff configures an optional bounded sleep applied after
// every tick, per spec.md §4.1's "implementation may optionally back
// off ... ≤ 10ms". The sleep is taken whether or not any task made
// progress during the tick; the scheduler does not detect idleness.
// Values above 10ms are clamped.
func (s *Scheduler) SetIdleBackoff(d time.Duration) {
	if d > 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	s.mtx.Lock()
	s.idleBackoff = d
	s.mtx.Unlock()
}

// Add appends task to the scheduler. If the task implements Creator,
// Create is invoked synchronously, before Add returns; Run only
// becomes eligible starting the tick after the one in progress (or the
// very first tick, if called before Run starts).
func (s *Scheduler) Add(task Task) werrors.Error {
	if task == nil {
		return werrors.New(werrors.SchedulerInvalidArg)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.liveCountLocked()+len(s.pending) >= s.maxTasks {
		return werrors.New(werrors.SchedulerCapacityExceeded)
	}

	if c, ok := task.(Creator); ok {
		c.Create(s)
	}
	s.pending = append(s.pending, task)
	return nil
}

// RemoveCurrent marks the task currently executing Run for removal.
// It must only be called from inside that task's own Run; calling it
// otherwise returns InvalidOperation and has no effect.
func (s *Scheduler) RemoveCurrent() werrors.Error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.currentIdx < 0 || s.currentIdx >= len(s.slots) {
		return werrors.New(werrors.SchedulerInvalidOperation)
	}
	s.slots[s.currentIdx].removed = true
	return nil
}

// LiveCount returns the number of tasks currently live (added, not yet
// removed), including tasks added this tick that have not run yet.
func (s *Scheduler) LiveCount() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.liveCountLocked() + len(s.pending)
}

func (s *Scheduler) liveCountLocked() int {
	n := 0
	for _, sl := range s.slots {
		if sl.live {
			n++
		}
	}
	return n
}

// Run enters the cooperative loop and returns once every live task has
// removed itself. Each tick runs every task live at the tick's start
// exactly once, in insertion order; tasks added mid-tick run starting
// the following tick.
func (s *Scheduler) Run() werrors.Error {
	for {
		s.mtx.Lock()
		if s.stopping {
			slots, pending := s.slots, s.pending
			s.slots = nil
			s.pending = nil
			s.mtx.Unlock()
			cleanupAll(slots, pending)
			return nil
		}
		n := len(s.slots)
		if n == 0 && len(s.pending) == 0 {
			s.mtx.Unlock()
			return nil
		}
		s.mtx.Unlock()

		for idx := 0; idx < n; idx++ {
			s.mtx.Lock()
			sl := s.slots[idx]
			if !sl.live {
				s.mtx.Unlock()
				continue
			}
			s.currentIdx = idx
			s.mtx.Unlock()

			sl.task.Run(s)

			s.mtx.Lock()
			s.currentIdx = -1
			if sl.removed {
				sl.live = false
			}
			s.mtx.Unlock()

			if sl.removed {
				if cl, ok := sl.task.(Cleaner); ok {
					cl.Cleanup()
				}
			}
		}

		s.mtx.Lock()
		s.flushPendingLocked()
		s.compactLocked()
		remaining := s.liveCountLocked()
		backoff := s.idleBackoff
		s.mtx.Unlock()

		if remaining == 0 {
			return nil
		}
		if backoff > 0 {
			time.Sleep(backoff)
		}
	}
}

// flushPendingLocked promotes tasks added during the tick that just
// finished into live slots, eligible starting the next tick. Caller
// must hold s.mtx.
func (s *Scheduler) flushPendingLocked() {
	for _, t := range s.pending {
		s.slots = append(s.slots, &slot{task: t, live: true})
	}
	s.pending = s.pending[:0]
}

// compactLocked drops dead slots between ticks, bounding memory use
// over a long-running server. Safe because it only runs between ticks,
// never while a task is "current". Caller must hold s.mtx.
func (s *Scheduler) compactLocked() {
	if len(s.slots) == 0 {
		return
	}
	out := s.slots[:0]
	for _, sl := range s.slots {
		if sl.live {
			out = append(out, sl)
		}
	}
	s.slots = out
}

// Stop requests that Run exit at the next tick boundary, cleaning up
// every still-live task from the Run goroutine itself. Safe to call
// from any goroutine — unlike Destroy, it never touches scheduler
// state directly, so it cannot race with a Run loop in progress.
func (s *Scheduler) Stop() {
	s.mtx.Lock()
	s.stopping = true
	s.mtx.Unlock()
}

// Destroy immediately tears down every still-live task: Cleanup (if
// implemented) on each, in slot order, then releases the scheduler's
// own state. Only safe when no other goroutine is inside Run; for a
// live server, use Stop instead and let Run unwind itself.
func (s *Scheduler) Destroy() {
	s.mtx.Lock()
	slots, pending := s.slots, s.pending
	s.slots = nil
	s.pending = nil
	s.mtx.Unlock()
	cleanupAll(slots, pending)
}

func cleanupAll(slots []*slot, pending []Task) {
	for _, sl := range slots {
		if !sl.live {
			continue
		}
		if cl, ok := sl.task.(Cleaner); ok {
			cl.Cleanup()
		}
	}
	for _, t := range pending {
		if cl, ok := t.(Cleaner); ok {
			cl.Cleanup()
		}
	}
}
