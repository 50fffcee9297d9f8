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
	"errors"
	"fmt"
)

var (
	// ErrInitialization wraps any failure that aborts an attach attempt.
	ErrInitialization = errors.New("addin initialization failed")
	// ErrCompanionNotFound reports a missing companion resources directory
	// or companion library.
	ErrCompanionNotFound = errors.New("companion resources not found")
	// ErrNotIdleContext is returned by operations that require idle-context
	// affinity when invoked outside the idle callback.
	ErrNotIdleContext = errors.New("operation requires the idle execution context")
	// ErrSessionDetached is returned when a live session is required.
	ErrSessionDetached = errors.New("session already detached")
	// ErrSchedulerClosed is returned when scheduling on a closed scheduler.
	ErrSchedulerClosed = errors.New("idle task scheduler closed")
	// ErrCoreMissing is returned when a view model is attached before the
	// core model exists.
	ErrCoreMissing = errors.New("view model requires a core model")
)

// TaskError reports a failure raised inside a scheduled task's action. It is
// delivered to the task's completion callback, never propagated into the
// drain loop.
type TaskError struct {
	Seq   uint64
	Cause error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("scheduled task %d failed: %v", e.Seq, e.Cause)
}

func (e *TaskError) Unwrap() error { return e.Cause }
