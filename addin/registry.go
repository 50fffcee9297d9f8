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

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/hostbridge/addin-runtime/api"
)

// subscription tracks one host event kind. There is at most one entry per
// kind; active flips on subscribe/unsubscribe and never duplicates.
type subscription struct {
	kind   api.EventKind
	active bool
}

// SubscriptionRegistry funnels every host event attach/detach through one
// idempotent surface. The host may invoke the entry point repeatedly without
// a matching detach; without the registry that would double-register handlers
// and every host-fired event would dispatch twice.
//
// Subscribe and Unsubscribe only ever run on the UI thread, which gives them
// mutual exclusion; the concurrent map exists so health and metrics readers
// can inspect the registry from other goroutines.
type SubscriptionRegistry struct {
	source api.EventSource
	subs   cmap.ConcurrentMap[string, *subscription]
}

// NewSubscriptionRegistry builds a registry over the host's event source.
func NewSubscriptionRegistry(source api.EventSource) *SubscriptionRegistry {
	return &SubscriptionRegistry{
		source: source,
		subs:   cmap.New[*subscription](),
	}
}

// Subscribe attaches a handler for each kind that is not already active.
// Already-active kinds are a no-op. It returns how many registrations
// actually changed, which makes the idempotence observable to callers.
func (r *SubscriptionRegistry) Subscribe(handlers map[api.EventKind]api.Handler) (int, error) {
	changed := 0
	var errs []error
	for _, kind := range api.EventKinds() {
		h, ok := handlers[kind]
		if !ok || h == nil {
			continue
		}
		if sub, ok := r.subs.Get(kind.String()); ok && sub.active {
			if debugMode {
				lifecycleLogger.debugf("subscribe %s: already active, skipped", kind)
			}
			continue
		}
		if err := r.source.Attach(kind, h); err != nil {
			errs = append(errs, fmt.Errorf("attach %s: %w", kind, err))
			continue
		}
		r.subs.Set(kind.String(), &subscription{kind: kind, active: true})
		changed++
		lifecycleLogger.tracef("subscribed %s", kind)
	}
	activeSubscriptions.Set(float64(r.ActiveCount()))
	return changed, errors.Join(errs...)
}

// Unsubscribe detaches each kind that is currently active. Inactive or
// never-subscribed kinds are a no-op. Detaching cancels future dispatch of
// that kind's handler; tasks already queued on the scheduler still run.
func (r *SubscriptionRegistry) Unsubscribe(kinds ...api.EventKind) (int, error) {
	changed := 0
	var errs []error
	for _, kind := range kinds {
		sub, ok := r.subs.Get(kind.String())
		if !ok || !sub.active {
			if debugMode {
				lifecycleLogger.debugf("unsubscribe %s: not active, skipped", kind)
			}
			continue
		}
		if err := r.source.Detach(kind); err != nil {
			errs = append(errs, fmt.Errorf("detach %s: %w", kind, err))
			continue
		}
		sub.active = false
		changed++
		lifecycleLogger.tracef("unsubscribed %s", kind)
	}
	activeSubscriptions.Set(float64(r.ActiveCount()))
	return changed, errors.Join(errs...)
}

// UnsubscribeAll detaches every active kind.
func (r *SubscriptionRegistry) UnsubscribeAll() (int, error) {
	return r.Unsubscribe(api.EventKinds()...)
}

// Active reports whether the kind currently has an attached handler.
func (r *SubscriptionRegistry) Active(kind api.EventKind) bool {
	sub, ok := r.subs.Get(kind.String())
	return ok && sub.active
}

// ActiveCount returns the number of kinds with an attached handler.
func (r *SubscriptionRegistry) ActiveCount() int {
	n := 0
	for item := range r.subs.IterBuffered() {
		if item.Val.active {
			n++
		}
	}
	return n
}
