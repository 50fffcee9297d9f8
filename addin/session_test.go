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
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hostbridge/addin-runtime/api"
)

type SessionTestSuite struct {
	suite.Suite
}

func (s *SessionTestSuite) TestViewRequiresCore() {
	sess := NewSession()
	s.ErrorIs(sess.AttachView(&fakeView{}), ErrCoreMissing)

	s.Require().NoError(sess.AttachCore(&fakeCore{}))
	s.NoError(sess.AttachView(&fakeView{}))
	s.True(sess.Attached())
}

func (s *SessionTestSuite) TestTakeMarkerInvalidates() {
	sess := NewSession()
	doc := newFakeDoc("model.rvt")
	sess.SetMarker(doc, api.ElementID(42))
	s.Equal(api.ElementID(42), sess.Marker())

	gotDoc, gotID := sess.TakeMarker()
	s.Equal(doc, gotDoc)
	s.Equal(api.ElementID(42), gotID)

	// second take yields the sentinel
	gotDoc, gotID = sess.TakeMarker()
	s.Nil(gotDoc)
	s.Equal(api.InvalidElementID, gotID)
}

func (s *SessionTestSuite) TestDetachOrderAndIdempotence() {
	sess := NewSession()
	core := &fakeCore{}
	view := &fakeView{}
	s.Require().NoError(sess.AttachCore(core))
	s.Require().NoError(sess.AttachView(view))

	full, err := sess.Detach()
	s.Require().NoError(err)
	s.True(full)
	s.Equal(1, view.closed)
	s.Equal(1, core.shutdowns)
	s.False(sess.Attached())

	_, err = sess.Detach()
	s.ErrorIs(err, ErrSessionDetached)
	s.Equal(1, core.shutdowns)

	s.ErrorIs(sess.AttachCore(&fakeCore{}), ErrSessionDetached)
}

func (s *SessionTestSuite) TestCrashStateSetOncePerSession() {
	sess := NewSession()
	s.False(sess.Crash().Handled)

	sess.markCrashHandled("first")
	s.True(sess.Crash().Handled)
	s.Equal("first", sess.Crash().Message)

	// a brand-new session starts clean
	s.False(NewSession().Crash().Handled)
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
