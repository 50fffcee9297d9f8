/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package addin

import (
	"fmt"
	"sync/atomic"

	queuepkg "github.com/Workiva/go-datastructures/queue"

	"github.com/hostbridge/addin-runtime/api"
)

const defaultQueueCap = 64

// ScheduledTask is one unit of deferred work. Action runs on the idle
// execution context; Completion, when present, runs on the same context
// immediately after Action, receiving Action's error (nil on success).
// A task is consumed exactly once and never re-entered.
type ScheduledTask struct {
	Action     func() error
	Completion func(error)
}

type scheduledItem struct {
	task ScheduledTask
	seq  uint64
}

// IdleTaskScheduler marshals deferred work onto the host's idle execution
// context. Submission is non-blocking; the queue drains only when the host
// invokes the idle tick, one task at a time, in submission order. A failing
// task never starves the remainder of the queue.
type IdleTaskScheduler struct {
	q *queuepkg.Queue

	// seq is written from the UI thread only.
	seq uint64

	// inIdle marks "currently executing inside the idle context". There is
	// no per-thread storage to hang this on, and the host guarantees the
	// idle tick is single-threaded, so an atomic flag scoped to the drain is
	// the affinity marker collaborators assert against.
	inIdle atomic.Bool
}

// NewIdleTaskScheduler creates a scheduler with the given queue capacity
// hint. A non-positive hint falls back to the default.
func NewIdleTaskScheduler(capHint int64) *IdleTaskScheduler {
	if capHint <= 0 {
		capHint = defaultQueueCap
	}
	return &IdleTaskScheduler{q: queuepkg.New(capHint)}
}

// Schedule enqueues a task and returns immediately; the caller never waits
// for execution. Once queued, the task will run (or fail) exactly once on a
// later idle tick. There is no cancellation.
func (s *IdleTaskScheduler) Schedule(t ScheduledTask) error {
	if t.Action == nil {
		internalLogger.warnf("scheduled task with nil action dropped")
		return nil
	}
	s.seq++
	if err := s.q.Put(scheduledItem{task: t, seq: s.seq}); err != nil {
		return ErrSchedulerClosed
	}
	tasksScheduled.Inc()
	lifecycleLogger.tracef("task %d scheduled, %d pending", s.seq, s.Pending())
	return nil
}

// OnIdle is the handler wired to the host's idle tick. It drains every task
// queued at the time of the tick, then returns control to the host.
func (s *IdleTaskScheduler) OnIdle(api.Event) {
	s.drain()
}

func (s *IdleTaskScheduler) drain() {
	if !s.inIdle.CompareAndSwap(false, true) {
		// re-entrant idle tick; the outer drain owns the queue
		return
	}
	defer s.inIdle.Store(false)

	for !s.q.Empty() {
		items, err := s.q.Get(1)
		if err != nil || len(items) == 0 {
			return
		}
		item, ok := items[0].(scheduledItem)
		if !ok {
			internalLogger.errorf("invalid queue element type %T", items[0])
			continue
		}
		s.runOne(item)
	}
}

// runOne executes a task's action and then its completion, back to back, so
// no two tasks' actions and completions ever interleave.
func (s *IdleTaskScheduler) runOne(item scheduledItem) {
	err := s.invoke(item)
	tasksExecuted.Inc()
	if err != nil {
		tasksFailed.Inc()
	}
	if item.task.Completion != nil {
		s.complete(item, err)
		return
	}
	if err != nil {
		internalLogger.warnf("dropped failure of task %d with no completion: %v", item.seq, err)
	}
}

func (s *IdleTaskScheduler) invoke(item scheduledItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{Seq: item.seq, Cause: fmt.Errorf("action panic: %v", r)}
		}
	}()
	if e := item.task.Action(); e != nil {
		err = &TaskError{Seq: item.seq, Cause: e}
	}
	return err
}

func (s *IdleTaskScheduler) complete(item scheduledItem, taskErr error) {
	defer func() {
		if r := recover(); r != nil {
			internalLogger.errorf("completion of task %d panicked: %v", item.seq, r)
		}
	}()
	item.task.Completion(taskErr)
}

// OnIdleContext reports whether the caller is executing inside the idle
// execution context, i.e. within a drain driven by the host's idle tick.
func (s *IdleTaskScheduler) OnIdleContext() bool {
	return s.inIdle.Load()
}

// RequireIdleContext fails fast when the caller is outside the idle context.
// Operations with idle-context affinity call this before touching host state.
func (s *IdleTaskScheduler) RequireIdleContext() error {
	if !s.inIdle.Load() {
		return ErrNotIdleContext
	}
	return nil
}

// Pending returns the number of queued, not yet executed tasks.
func (s *IdleTaskScheduler) Pending() int {
	return int(s.q.Len())
}

// Close disposes the queue. Tasks still queued are discarded; subsequent
// Schedule calls return ErrSchedulerClosed.
func (s *IdleTaskScheduler) Close() {
	s.q.Dispose()
}

// Closed reports whether the scheduler has been closed.
func (s *IdleTaskScheduler) Closed() bool {
	return s.q.Disposed()
}
