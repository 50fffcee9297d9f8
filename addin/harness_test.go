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

// fakeEventSource behaves like a strict host: attaching a kind twice or
// detaching an unknown kind is an error, which is exactly what the registry
// must shield the runtime from.
type fakeEventSource struct {
	handlers  map[api.EventKind]api.Handler
	attachErr map[api.EventKind]error
	attaches  int
	detaches  int
}

func newFakeEventSource() *fakeEventSource {
	return &fakeEventSource{
		handlers:  make(map[api.EventKind]api.Handler),
		attachErr: make(map[api.EventKind]error),
	}
}

func (f *fakeEventSource) Attach(kind api.EventKind, h api.Handler) error {
	if err := f.attachErr[kind]; err != nil {
		return err
	}
	if _, dup := f.handlers[kind]; dup {
		return fmt.Errorf("duplicate handler for %s", kind)
	}
	f.handlers[kind] = h
	f.attaches++
	return nil
}

func (f *fakeEventSource) Detach(kind api.EventKind) error {
	if _, ok := f.handlers[kind]; !ok {
		return fmt.Errorf("no handler attached for %s", kind)
	}
	delete(f.handlers, kind)
	f.detaches++
	return nil
}

// fire dispatches an event the way the host would and reports how many
// handlers ran.
func (f *fakeEventSource) fire(ev api.Event) int {
	h, ok := f.handlers[ev.Kind]
	if !ok {
		return 0
	}
	h(ev)
	return 1
}

type fakeTx struct {
	name       string
	started    bool
	committed  bool
	rolledBack bool
	startErr   error
	commitErr  error
}

func (t *fakeTx) Start() error {
	if t.startErr != nil {
		return t.startErr
	}
	t.started = true
	return nil
}

func (t *fakeTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeDoc struct {
	title     string
	valid     bool
	deletes   []api.ElementID
	deleteErr error
	txs       []*fakeTx
	startErr  error
	commitErr error
}

func newFakeDoc(title string) *fakeDoc {
	return &fakeDoc{title: title, valid: true}
}

func (d *fakeDoc) Title() string { return d.title }
func (d *fakeDoc) IsValid() bool { return d.valid }

func (d *fakeDoc) NewTransaction(name string) api.Transaction {
	tx := &fakeTx{name: name, startErr: d.startErr, commitErr: d.commitErr}
	d.txs = append(d.txs, tx)
	return tx
}

func (d *fakeDoc) Delete(id api.ElementID) error {
	if d.deleteErr != nil {
		return d.deleteErr
	}
	d.deletes = append(d.deletes, id)
	return nil
}

type fakeCore struct {
	shutdowns   int
	shutdownErr error
}

func (c *fakeCore) Shutdown() error {
	c.shutdowns++
	return c.shutdownErr
}

type promptRecord struct {
	message     string
	allowCancel bool
}

type fakeView struct {
	closed      int
	prompts     []promptRecord
	workspaces  []string
	openErr     error
	promptErr   error
	promptPanic bool
}

func (v *fakeView) RequestShutdown(message string, allowCancel bool) error {
	if v.promptPanic {
		panic("view model gone")
	}
	v.prompts = append(v.prompts, promptRecord{message: message, allowCancel: allowCancel})
	return v.promptErr
}

func (v *fakeView) OpenWorkspace(path string) error {
	if v.openErr != nil {
		return v.openErr
	}
	v.workspaces = append(v.workspaces, path)
	return nil
}

func (v *fakeView) Close() error {
	v.closed++
	return nil
}

type fakeResolver struct {
	registered  [][]string
	registerErr error
	loadCalls   int
	loadErr     error
	core        api.CoreModel
}

func (r *fakeResolver) RegisterSearchPaths(paths []string) error {
	if r.registerErr != nil {
		return r.registerErr
	}
	r.registered = append(r.registered, paths)
	return nil
}

func (r *fakeResolver) LoadCore() (api.CoreModel, error) {
	r.loadCalls++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.core == nil {
		r.core = &fakeCore{}
	}
	return r.core, nil
}

type fakeGate struct {
	transitions []bool
}

func (g *fakeGate) SetEnabled(enabled bool) {
	g.transitions = append(g.transitions, enabled)
}

type fakeCollector struct {
	events       []string
	crashes      []string
	panicOnCrash bool
	closed       int
}

func (c *fakeCollector) RecordEvent(name string, attrs map[string]string) {
	c.events = append(c.events, name)
}

func (c *fakeCollector) RecordCrash(message string) {
	if c.panicOnCrash {
		panic("telemetry transport gone")
	}
	c.crashes = append(c.crashes, message)
}

func (c *fakeCollector) Close() error {
	c.closed++
	return nil
}

type fakeHost struct {
	src            *fakeEventSource
	doc            api.Document
	gate           *fakeGate
	moduleLocation string
}

func newFakeHost(moduleLocation string) *fakeHost {
	return &fakeHost{
		src:            newFakeEventSource(),
		gate:           &fakeGate{},
		moduleLocation: moduleLocation,
	}
}

func (h *fakeHost) Events() api.EventSource      { return h.src }
func (h *fakeHost) ActiveDocument() api.Document { return h.doc }
func (h *fakeHost) CommandGate() api.CommandGate { return h.gate }
func (h *fakeHost) ModuleLocation() string       { return h.moduleLocation }
