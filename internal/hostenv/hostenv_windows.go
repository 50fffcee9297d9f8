//go:build windows

package hostenv

import "errors"

// SuspendForDebugger is not supported on this platform; the debug-attach
// journal flag degrades to a logged warning.
func SuspendForDebugger() error {
	return errors.New("debug attach suspension not supported on windows")
}
