// Package api defines the contracts between the addin runtime and its host
// application adapter.
package api

// CompanionResolver loads the addin's companion libraries. It is the one
// place where dynamic, by-name lookup remains; everything above it is a
// well-typed call. RegisterSearchPaths is invoked exactly once per attach
// attempt, before LoadCore.
type CompanionResolver interface {
	// RegisterSearchPaths registers the ordered directories the resolver may
	// load companion libraries from.
	RegisterSearchPaths(paths []string) error
	// LoadCore resolves and constructs the addin core model.
	LoadCore() (CoreModel, error)
}
