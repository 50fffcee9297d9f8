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

	"github.com/hostbridge/addin-runtime/api"
)

const cleanupTransactionName = "addin marker cleanup"

// TransactionalResourceCleaner deletes the session's in-progress marker
// resource at most once. The deletion mutates host state, so it must run on
// the idle execution context inside a transaction; the cleaner therefore
// only ever runs as a scheduled task's action.
type TransactionalResourceCleaner struct {
	scheduler *IdleTaskScheduler
}

// NewTransactionalResourceCleaner builds a cleaner bound to the scheduler
// whose idle context it asserts.
func NewTransactionalResourceCleaner(scheduler *IdleTaskScheduler) *TransactionalResourceCleaner {
	return &TransactionalResourceCleaner{scheduler: scheduler}
}

// ScheduleDelete queues a one-shot deletion of the session's marker. The
// marker id is invalidated here, at scheduling time, so a second call before
// the task runs finds the sentinel and is a no-op. A failed delete does not
// re-validate the id: the marker is abandoned, never retried.
func (c *TransactionalResourceCleaner) ScheduleDelete(session *Session) error {
	doc, id := session.TakeMarker()
	if id == api.InvalidElementID {
		lifecycleLogger.debugf("marker cleanup skipped, no marker to delete")
		return nil
	}
	return c.scheduler.Schedule(ScheduledTask{
		Action: func() error {
			return c.deleteMarker(doc, id)
		},
		Completion: func(err error) {
			if err != nil {
				markerDeleteFailures.Inc()
				internalLogger.warnf("marker %d cleanup failed: %v", id, err)
				return
			}
			markerDeletes.Inc()
		},
	})
}

// deleteMarker runs on the idle context. The transaction is always closed,
// including on deletion failure, so a failed delete can never leave an open
// transaction behind.
func (c *TransactionalResourceCleaner) deleteMarker(doc api.Document, id api.ElementID) error {
	if err := c.scheduler.RequireIdleContext(); err != nil {
		return err
	}
	if doc == nil || !doc.IsValid() {
		lifecycleLogger.debugf("marker %d cleanup skipped, owning document gone", id)
		return nil
	}

	tx := doc.NewTransaction(cleanupTransactionName)
	if err := tx.Start(); err != nil {
		return fmt.Errorf("start cleanup transaction: %w", err)
	}

	delErr := doc.Delete(id)
	if err := tx.Commit(); err != nil {
		if delErr == nil {
			delErr = fmt.Errorf("close cleanup transaction: %w", err)
		} else {
			internalLogger.warnf("close cleanup transaction after failed delete: %v", err)
		}
	}
	if delErr != nil {
		return fmt.Errorf("delete marker %d in %q: %w", id, doc.Title(), delErr)
	}
	internalLogger.infof("marker %d deleted from %q", id, doc.Title())
	return nil
}
