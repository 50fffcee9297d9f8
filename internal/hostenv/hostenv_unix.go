//go:build unix

package hostenv

import (
	"os"

	"golang.org/x/sys/unix"
)

// SuspendForDebugger stops the process so a debugger can attach; execution
// resumes when the debugger (or a SIGCONT) continues it. Called before any
// session state exists, on an explicit debug request only.
func SuspendForDebugger() error {
	return unix.Kill(os.Getpid(), unix.SIGSTOP)
}
