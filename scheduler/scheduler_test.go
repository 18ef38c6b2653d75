package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Under-Bordet-AB/weatherserver/scheduler"
	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

type countingTask struct {
	runs     int
	removeAt int
	created  bool
	cleaned  bool
}

func (t *countingTask) Create(s *scheduler.Scheduler) { t.created = true }

func (t *countingTask) Run(s *scheduler.Scheduler) {
	t.runs++
	if t.removeAt > 0 && t.runs >= t.removeAt {
		_ = s.RemoveCurrent()
	}
}

func (t *countingTask) Cleanup() { t.cleaned = true }

func TestEveryAddedTaskRunsAtLeastOnce(t *testing.T) {
	s := scheduler.New(8)
	tasks := make([]*countingTask, 5)
	for i := range tasks {
		tasks[i] = &countingTask{removeAt: 1}
		require.NoError(t, s.Add(tasks[i]))
	}

	require.NoError(t, s.Run())

	for _, tk := range tasks {
		assert.GreaterOrEqual(t, tk.runs, 1)
		assert.True(t, tk.created)
		assert.True(t, tk.cleaned)
	}
}

func TestRemoveCurrentInvokesCleanupExactlyOnceAndStopsFutureTicks(t *testing.T) {
	s := scheduler.New(8)
	tk := &countingTask{removeAt: 3}
	require.NoError(t, s.Add(tk))

	require.NoError(t, s.Run())

	assert.Equal(t, 3, tk.runs)
	assert.True(t, tk.cleaned)
}

func TestRemoveCurrentOutsideRunFails(t *testing.T) {
	s := scheduler.New(4)
	err := s.RemoveCurrent()
	require.Error(t, err)
	assert.True(t, err.IsCode(werrors.SchedulerInvalidOperation))
}

func TestAddAtCapacityFailsAndSkipsHooks(t *testing.T) {
	s := scheduler.New(1)
	first := &countingTask{removeAt: 0}
	require.NoError(t, s.Add(first))

	second := &countingTask{}
	err := s.Add(second)
	require.Error(t, err)
	assert.True(t, err.IsCode(werrors.SchedulerCapacityExceeded))
	assert.False(t, second.created)

	// drain the scheduler so the test doesn't leak a perpetually-live task
	first.removeAt = 1
	require.NoError(t, s.Run())
}

func TestTaskAddedMidTickRunsOnlyFromNextTick(t *testing.T) {
	s := scheduler.New(8)

	var spawned *countingTask
	spawner := &spawnTask{
		spawn: func(s *scheduler.Scheduler) {
			spawned = &countingTask{removeAt: 1}
			_ = s.Add(spawned)
		},
	}
	require.NoError(t, s.Add(spawner))

	require.NoError(t, s.Run())

	require.NotNil(t, spawned)
	assert.Equal(t, 1, spawned.runs)
}

type spawnTask struct {
	ran   bool
	spawn func(s *scheduler.Scheduler)
}

func (t *spawnTask) Run(s *scheduler.Scheduler) {
	if !t.ran {
		t.ran = true
		t.spawn(s)
	}
	_ = s.RemoveCurrent()
}

func TestRunReturnsWhenNoTasksAdded(t *testing.T) {
	s := scheduler.New(4)
	require.NoError(t, s.Run())
	assert.Equal(t, 0, s.LiveCount())
}

// foreverTask never removes itself; only Stop ends its tick loop.
type foreverTask struct {
	cleaned bool
}

func (t *foreverTask) Run(s *scheduler.Scheduler) {}
func (t *foreverTask) Cleanup()                   { t.cleaned = true }

func TestStopEndsRunAndCleansUpLiveTasks(t *testing.T) {
	s := scheduler.New(4)
	tk := &foreverTask{}
	require.NoError(t, s.Add(tk))

	done := make(chan werrors.Error, 1)
	go func() { done <- s.Run() }()

	time.Sleep(5 * time.Millisecond)
	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.True(t, tk.cleaned)
}
