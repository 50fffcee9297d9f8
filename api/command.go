// Package api defines the contracts between the addin runtime and its host
// application adapter.
package api

// Result is the tri-state outcome the host expects from an entry-point
// invocation. On ResultFailed the accompanying message string is populated.
type Result int

const (
	ResultSucceeded Result = iota
	ResultFailed
	ResultCancelled
)

func (r Result) String() string {
	switch r {
	case ResultSucceeded:
		return "succeeded"
	case ResultFailed:
		return "failed"
	case ResultCancelled:
		return "cancelled"
	}
	return "unknown"
}

// CommandGate arms and disarms the host-side control (button, command) that
// invokes the entry point. The crash coordinator re-enables it
// unconditionally after a crash sequence.
type CommandGate interface {
	SetEnabled(enabled bool)
}
