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
	"os"
	runtimedebug "runtime/debug"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/valyala/bytebufferpool"

	"github.com/hostbridge/addin-runtime/api"
)

// CrashRecoveryCoordinator intercepts exceptions that escape into the host
// UI thread's dispatch loop. It always marks the notification handled so the
// host never terminates, runs a best-effort sequence of logging, telemetry
// and a shutdown prompt, and unconditionally re-arms the entry point's
// command gate. The sequence runs at most once per session; recovery is a
// brand-new session, never an automatic retry of the operation that crashed.
type CrashRecoveryCoordinator struct {
	session   *Session
	collector api.Collector
	gate      api.CommandGate
}

// NewCrashRecoveryCoordinator wires the coordinator to its session, the
// telemetry collector (may be nil) and the host command gate (may be nil).
func NewCrashRecoveryCoordinator(session *Session, collector api.Collector, gate api.CommandGate) *CrashRecoveryCoordinator {
	return &CrashRecoveryCoordinator{session: session, collector: collector, gate: gate}
}

// OnDispatcherCrash is the handler wired to EventDispatcherCrash.
func (c *CrashRecoveryCoordinator) OnDispatcherCrash(ev api.Event) {
	// Marked handled first and always, even for a duplicate notification:
	// an unhandled report would abort the whole host process.
	if ev.Response != nil {
		ev.Response.Handled = true
	}
	if c.session.crashHandled() {
		lifecycleLogger.debugf("duplicate dispatcher crash ignored: %v", ev.Err)
		return
	}

	message := "unknown dispatcher failure"
	if ev.Err != nil {
		message = ev.Err.Error()
	}
	c.session.markCrashHandled(message)
	crashSequences.Inc()

	// Re-arming the command gate must survive a failure in any preceding
	// step, including a panic.
	defer c.rearm()

	c.step("log crash report", func() {
		internalLogger.errorf("%s", buildCrashReport(message))
	})
	c.step("notify telemetry", func() {
		if c.collector != nil {
			c.collector.RecordCrash(message)
		}
	})
	c.step("prompt shutdown", func() {
		if view := c.session.View(); view != nil {
			if err := view.RequestShutdown(message, false); err != nil {
				internalLogger.warnf("shutdown prompt failed: %v", err)
			}
		}
	})
}

// step runs one best-effort stage of the crash sequence; a panic inside a
// stage is contained so the remaining stages and the gate re-arm still run.
func (c *CrashRecoveryCoordinator) step(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			internalLogger.errorf("crash sequence step %q panicked: %v", name, r)
		}
	}()
	fn()
}

func (c *CrashRecoveryCoordinator) rearm() {
	defer func() {
		if r := recover(); r != nil {
			internalLogger.errorf("command gate re-enable panicked: %v", r)
		}
	}()
	if c.gate != nil {
		c.gate.SetEnabled(true)
		internalLogger.infof("entry point re-enabled after crash sequence")
	}
}

// buildCrashReport assembles the crash message, the goroutine stack and a
// best-effort process snapshot into one log record.
func buildCrashReport(message string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("unhandled dispatcher failure: ")
	_, _ = buf.WriteString(message)
	_ = buf.WriteByte('\n')

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			_, _ = fmt.Fprintf(buf, "process rss=%d vms=%d\n", mi.RSS, mi.VMS)
		}
		if n, err := p.NumThreads(); err == nil {
			_, _ = fmt.Fprintf(buf, "process threads=%d\n", n)
		}
	}

	_, _ = buf.Write(runtimedebug.Stack())
	return buf.String()
}
