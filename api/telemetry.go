// Package api defines the contracts between the addin runtime and its host
// application adapter.
package api

// Collector receives best-effort telemetry. Implementations must never block
// the caller and must never panic into it; the runtime calls Collector from
// the host's UI thread.
type Collector interface {
	// RecordEvent records a named lifecycle event with optional attributes.
	RecordEvent(name string, attrs map[string]string)
	// RecordCrash records one crash sequence.
	RecordCrash(message string)
	// Close flushes and releases the collector.
	Close() error
}
