// Package api defines the contracts between the addin runtime and its host
// application adapter. The runtime owns no host objects; it sees documents,
// views and elements by opaque identity only, and every mutation of host
// state goes through a Transaction obtained from the owning Document.
package api

// ElementID identifies a host-owned element by opaque identity.
type ElementID uint64

// InvalidElementID is the sentinel for an element handle that has been
// invalidated. Deleting an invalidated handle is a no-op by contract.
const InvalidElementID ElementID = 0

// Document is a host-owned document. The runtime never constructs one; it
// receives documents from lifecycle events and from HostContext.
type Document interface {
	// Title returns a human-readable identifier used in logs.
	Title() string
	// IsValid reports whether the underlying host document is still open.
	IsValid() bool
	// NewTransaction creates a named transaction scope on this document.
	// Any mutation of host state must happen between Start and Commit.
	NewTransaction(name string) Transaction
	// Delete removes the element with the given id. Deleting an id that no
	// longer resolves is an error reported by the host.
	Delete(id ElementID) error
}

// Transaction is a host transaction scope. Start must be called before any
// mutation, and the scope must always be closed with Commit or Rollback,
// including on mutation failure.
type Transaction interface {
	Start() error
	Commit() error
	Rollback() error
}

// View is a host view. The runtime treats it opaquely except for the
// document it presents.
type View interface {
	Document() Document
}

// CoreModel is the addin's core state, produced by the companion resolver at
// initialization time and owned exclusively by the Session.
type CoreModel interface {
	// Shutdown releases the core model. Called once, on full detach.
	Shutdown() error
}

// ViewModel is the addin's view layer, created after the core model and owned
// exclusively by the Session. It is also the crash coordinator's exit path.
type ViewModel interface {
	// RequestShutdown asks the user to close the addin UI. When allowCancel
	// is false the prompt offers no way to keep the UI open.
	RequestShutdown(message string, allowCancel bool) error
	// OpenWorkspace opens the workspace file at path in the addin UI.
	OpenWorkspace(path string) error
	// Close tears the view down. Called once, on full detach.
	Close() error
}

// HostContext is the opaque application context handed to the entry point by
// the host on every invocation.
type HostContext interface {
	// Events is the host's lifecycle event source.
	Events() EventSource
	// ActiveDocument returns the current document, or nil when none is open.
	ActiveDocument() Document
	// CommandGate controls whether the entry point can be invoked again.
	CommandGate() CommandGate
	// ModuleLocation is the filesystem path of the loaded addin module,
	// used to resolve the companion resources directory.
	ModuleLocation() string
}
