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
	"github.com/hostbridge/addin-runtime/api"
)

// CrashState records whether this session already ran its crash sequence.
// It is set at most once per session and reset only by creating a new one.
type CrashState struct {
	Handled bool
	Message string
}

// Session holds the addin's live state for one attach. It replaces the
// static-singleton idiom with an explicit object passed to every component.
//
// A Session is mutated exclusively from the host's UI thread (the idle
// callback runs on that same thread), so it carries no lock; idle-affine
// operations assert their context through the scheduler instead.
type Session struct {
	core api.CoreModel
	view api.ViewModel

	crash CrashState

	initializedCore  bool
	eventsSubscribed bool
	detached         bool

	markerID  api.ElementID
	markerDoc api.Document
}

// NewSession creates a fresh session with a clean crash state.
func NewSession() *Session {
	return &Session{}
}

// AttachCore hands the core model to the session. The session owns it
// exclusively from this point until Detach.
func (s *Session) AttachCore(core api.CoreModel) error {
	if s.detached {
		return ErrSessionDetached
	}
	s.core = core
	s.initializedCore = core != nil
	return nil
}

// AttachView hands the view model to the session. A view model may only
// exist on top of a core model.
func (s *Session) AttachView(view api.ViewModel) error {
	if s.detached {
		return ErrSessionDetached
	}
	if view != nil && s.core == nil {
		return ErrCoreMissing
	}
	s.view = view
	return nil
}

// Core returns the session's core model, or nil before AttachCore.
func (s *Session) Core() api.CoreModel { return s.core }

// View returns the session's view model, or nil before AttachView.
func (s *Session) View() api.ViewModel { return s.view }

// Attached reports whether the session still owns its live state.
func (s *Session) Attached() bool {
	return !s.detached && s.initializedCore
}

// EventsSubscribed reports whether host lifecycle events are attached.
func (s *Session) EventsSubscribed() bool { return s.eventsSubscribed }

// SetEventsSubscribed records whether host lifecycle events are attached.
// The entry-point command maintains this; integration layers that manage
// their own subscriptions may too.
func (s *Session) SetEventsSubscribed(v bool) { s.eventsSubscribed = v }

// SetMarker records the in-progress visualization marker the session owns by
// opaque identity. A previously recorded marker is replaced; the old handle
// is the host's to reclaim.
func (s *Session) SetMarker(doc api.Document, id api.ElementID) {
	s.markerDoc = doc
	s.markerID = id
}

// TakeMarker returns the current marker and invalidates it in one step.
// The second call, or any call before a marker exists, yields the sentinel,
// which makes a redundant cleanup request a no-op.
func (s *Session) TakeMarker() (api.Document, api.ElementID) {
	doc, id := s.markerDoc, s.markerID
	s.markerDoc = nil
	s.markerID = api.InvalidElementID
	return doc, id
}

// Marker returns the current marker id without invalidating it.
func (s *Session) Marker() api.ElementID { return s.markerID }

// Crash returns a copy of the session's crash state.
func (s *Session) Crash() CrashState { return s.crash }

func (s *Session) crashHandled() bool { return s.crash.Handled }

func (s *Session) markCrashHandled(message string) {
	s.crash = CrashState{Handled: true, Message: message}
}

// Detach tears the session down: view first, then core. It reports whether a
// full detach happened. Detaching twice returns ErrSessionDetached.
func (s *Session) Detach() (bool, error) {
	if s.detached {
		return false, ErrSessionDetached
	}
	s.detached = true
	full := true
	if s.view != nil {
		if err := s.view.Close(); err != nil {
			internalLogger.warnf("view model close failed: %v", err)
			full = false
		}
		s.view = nil
	}
	if s.core != nil {
		if err := s.core.Shutdown(); err != nil {
			internalLogger.warnf("core model shutdown failed: %v", err)
			full = false
		}
		s.core = nil
	}
	s.initializedCore = false
	s.markerDoc = nil
	s.markerID = api.InvalidElementID
	return full, nil
}
