// Package scheduler provides keyed one-shot deferred tasks, used to delete
// flagged offensive messages once their retention period is over.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler manages an arbitrary number of pending timers keyed by id.
// Scheduling and cancelling are safe to call concurrently.
type Scheduler struct {
	mutex  sync.Mutex
	timers map[string]*time.Timer
}

func New() *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
	}
}

// Schedule registers $task to run once at $at. An already scheduled task with
// the same id is replaced. A target time in the past runs the task
// immediately.
func (s *Scheduler) Schedule(id string, at time.Time, task func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if timer, ok := s.timers[id]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(time.Until(at), func() {
		s.expire(id, timer, task)
	})
	s.timers[id] = timer
}

// expire runs when a timer fires. Stop() cannot prevent the callback of a
// timer that already fired, so a task whose map entry was replaced or
// cancelled in the meantime must neither run nor remove the replacement's
// entry.
func (s *Scheduler) expire(id string, timer *time.Timer, task func()) {
	s.mutex.Lock()
	if s.timers[id] != timer {
		s.mutex.Unlock()
		return
	}
	delete(s.timers, id)
	s.mutex.Unlock()

	task()
}

// Cancel stops the pending task for $id, if any. Reports whether a task was
// pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}

	timer.Stop()
	delete(s.timers, id)
	return true
}

// Contains reports whether a task for $id is still pending
func (s *Scheduler) Contains(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, ok := s.timers[id]
	return ok
}

// Pending returns the ids of all pending tasks
func (s *Scheduler) Pending() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	return ids
}

// Clear cancels all pending tasks
func (s *Scheduler) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}
