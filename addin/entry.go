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
	"strings"

	"github.com/hostbridge/addin-runtime/api"
	"github.com/hostbridge/addin-runtime/internal/hostenv"
)

// Command is the addin's single entry point. The host invokes Execute with
// an opaque application context and an optional journal bag; everything else
// flows from there: the one-time initialization gate, the session, the
// subscription registry, the idle scheduler and the crash coordinator.
//
// Errors never propagate past Execute into the host. Execute and the
// dispatcher crash handler are the only two broad catch boundaries in the
// runtime.
type Command struct {
	conf *Config
	gate *InitializationGate

	session   *Session
	scheduler *IdleTaskScheduler
	registry  *SubscriptionRegistry
	cleaner   *TransactionalResourceCleaner
	crash     *CrashRecoveryCoordinator
}

// NewCommand validates the config and builds the command. The gate lives as
// long as the command, so re-invocations share one initialization.
func NewCommand(conf *Config) (*Command, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	if conf.LogOutput != nil {
		SetLogOutput(conf.LogOutput)
	}
	return &Command{
		conf: conf,
		gate: NewInitializationGate(conf.Resolver, conf.CompanionNames...),
	}, nil
}

// Execute runs one entry-point invocation. The host may call it repeatedly
// within a process; initialization and subscription are idempotent across
// calls. On ResultFailed the returned message is populated.
func (c *Command) Execute(host api.HostContext, journal map[string]string) (api.Result, string) {
	if host == nil {
		return api.ResultFailed, "nil host context"
	}

	if truthy(journal[c.conf.JournalKeyDebug]) {
		if err := hostenv.SuspendForDebugger(); err != nil {
			internalLogger.warnf("debug attach suspension unavailable: %v", err)
		}
	}

	if c.conf.Preflight != nil {
		ok, err := c.conf.Preflight(host)
		if err != nil {
			return api.ResultFailed, err.Error()
		}
		if !ok {
			return api.ResultCancelled, ""
		}
	}

	core, err := c.gate.InitializeOnce(host.ModuleLocation())
	if err != nil {
		// Fatal to this attach attempt. The entry point stays enabled; the
		// user decides whether to invoke again.
		return api.ResultFailed, err.Error()
	}

	if c.session == nil || !c.session.Attached() {
		if result, msg := c.buildSession(host, core); result != api.ResultSucceeded {
			return result, msg
		}
	}

	if _, err := c.registry.Subscribe(c.handlers()); err != nil {
		return api.ResultFailed, err.Error()
	}
	c.session.SetEventsSubscribed(true)

	if ws := journal[c.conf.JournalKeyWorkspace]; ws != "" {
		// Best effort: a bad workspace path must not fail the attach.
		if err := c.session.View().OpenWorkspace(ws); err != nil {
			internalLogger.warnf("auto-open workspace %q failed: %v", ws, err)
		}
	}

	c.record("entry-point-executed", nil)
	return api.ResultSucceeded, ""
}

func (c *Command) buildSession(host api.HostContext, core api.CoreModel) (api.Result, string) {
	session := NewSession()
	if err := session.AttachCore(core); err != nil {
		return api.ResultFailed, err.Error()
	}
	view, err := c.conf.ViewFactory(core)
	if err != nil {
		return api.ResultFailed, "create view model: " + err.Error()
	}
	if err := session.AttachView(view); err != nil {
		return api.ResultFailed, err.Error()
	}

	c.session = session
	c.scheduler = NewIdleTaskScheduler(c.conf.QueueCap)
	c.registry = NewSubscriptionRegistry(host.Events())
	c.cleaner = NewTransactionalResourceCleaner(c.scheduler)
	c.crash = NewCrashRecoveryCoordinator(session, c.conf.Collector, host.CommandGate())
	lifecycleLogger.infof("session built")
	return api.ResultSucceeded, ""
}

func (c *Command) handlers() map[api.EventKind]api.Handler {
	return map[api.EventKind]api.Handler{
		api.EventViewActivating:  c.onViewActivating,
		api.EventViewActivated:   c.onViewActivated,
		api.EventDocumentOpened:  c.onDocumentOpened,
		api.EventDocumentClosing: c.onDocumentClosing,
		api.EventDocumentClosed:  c.onDocumentClosed,
		api.EventIdleTick:        c.scheduler.OnIdle,
		api.EventDispatcherCrash: c.crash.OnDispatcherCrash,
	}
}

func (c *Command) onViewActivating(ev api.Event) {
	lifecycleLogger.tracef("view activating")
	c.record("view-activating", nil)
}

func (c *Command) onViewActivated(ev api.Event) {
	lifecycleLogger.tracef("view activated")
	c.record("view-activated", nil)
}

func (c *Command) onDocumentOpened(ev api.Event) {
	if ev.Document != nil {
		lifecycleLogger.infof("document opened: %s", ev.Document.Title())
		c.record("document-opened", map[string]string{"title": ev.Document.Title()})
	}
}

func (c *Command) onDocumentClosing(ev api.Event) {
	// The closing document takes the session's marker with it; schedule the
	// transactional cleanup before the handle goes stale.
	if err := c.cleaner.ScheduleDelete(c.session); err != nil {
		internalLogger.warnf("schedule marker cleanup: %v", err)
	}
}

func (c *Command) onDocumentClosed(ev api.Event) {
	c.record("document-closed", nil)
}

func (c *Command) record(name string, attrs map[string]string) {
	if c.conf.Collector != nil {
		c.conf.Collector.RecordEvent(name, attrs)
	}
}

// Session returns the live session, or nil before the first Execute.
func (c *Command) Session() *Session { return c.session }

// Scheduler returns the idle task scheduler, or nil before the first Execute.
func (c *Command) Scheduler() *IdleTaskScheduler { return c.scheduler }

// Registry returns the subscription registry, or nil before the first Execute.
func (c *Command) Registry() *SubscriptionRegistry { return c.registry }

// Cleaner returns the marker cleaner, or nil before the first Execute.
func (c *Command) Cleaner() *TransactionalResourceCleaner { return c.cleaner }

// Close performs the full detach: unsubscribes every host event, closes the
// scheduler and tears the session down. Called when the addin view closes.
func (c *Command) Close() error {
	if c.session == nil {
		return nil
	}
	if _, err := c.registry.UnsubscribeAll(); err != nil {
		internalLogger.warnf("unsubscribe on detach: %v", err)
	}
	c.session.SetEventsSubscribed(false)
	c.scheduler.Close()
	_, err := c.session.Detach()
	lifecycleLogger.infof("session detached")
	return err
}

// truthy interprets journal flag values the permissive way hosts write them.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
