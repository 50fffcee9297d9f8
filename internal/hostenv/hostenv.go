// Package hostenv holds the few process-environment operations the runtime
// needs from the OS it shares with the host. Platform-specific pieces live
// in the _unix/_windows files.
package hostenv
