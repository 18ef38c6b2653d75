// Package scheduler implements the cooperative, single-threaded task
// scheduler of spec.md §4.1: a fixed-capacity set of tasks run once per
// tick in insertion order, with safe self-removal from inside Run.
package scheduler

// Task is the minimal capability every scheduled unit of work must
// implement. Run must never block and must return within a tick.
//
// Task deliberately carries only the required hook; the optional
// create/cleanup hooks of spec.md §3 are expressed as the separate
// Creator and Cleaner capability interfaces below, so a task that
// needs neither does not have to implement empty methods — the same
// "small composable capability interfaces" idiom the teacher's
// httpserver/run package uses for its Run interface.
type Task interface {
	// Run executes one tick's worth of work for this task. It may call
	// s.RemoveCurrent() to have itself removed after Run returns.
	Run(s *Scheduler)
}

// Creator is implemented by tasks that need one-time setup before
// their first Run, invoked once when the task is added.
type Creator interface {
	Create(s *Scheduler)
}

// Cleaner is implemented by tasks that need teardown when removed.
// Cleanup is invoked exactly once, right after the Run call in which
// the task removed itself returns (before the rest of that tick runs).
type Cleaner interface {
	Cleanup()
}

type slot struct {
	task    Task
	live    bool
	removed bool
}
