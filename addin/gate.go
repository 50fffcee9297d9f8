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
	"errors"
	"fmt"
	"os"

	"github.com/hostbridge/addin-runtime/api"
	"github.com/hostbridge/addin-runtime/internal/paths"
)

// InitializationGate runs the one-time attach setup: companion search path
// registration and core model loading. The host may invoke the entry point
// many times per process without a matching detach, so the gate must be safe
// to call repeatedly; only the first successful call performs side effects.
type InitializationGate struct {
	resolver   api.CompanionResolver
	companions []string

	initialized bool
	core        api.CoreModel
}

// NewInitializationGate builds a gate around the given resolver. The
// companion names are the library filenames expected next to the loaded
// module's parent directory.
func NewInitializationGate(resolver api.CompanionResolver, companions ...string) *InitializationGate {
	return &InitializationGate{resolver: resolver, companions: companions}
}

// Initialized reports whether the one-time setup already ran.
func (g *InitializationGate) Initialized() bool { return g.initialized }

// Core returns the loaded core model, or nil before initialization.
func (g *InitializationGate) Core() api.CoreModel { return g.core }

// InitializeOnce performs the attach setup exactly once. Later calls return
// the cached core model without re-running side effects. A failure is fatal
// to this attach attempt and is not retried; the caller surfaces it through
// the entry point's return value.
func (g *InitializationGate) InitializeOnce(moduleLocation string) (api.CoreModel, error) {
	if g.initialized {
		return g.core, nil
	}

	dir, err := paths.CompanionDir(moduleLocation)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %w", ErrInitialization, ErrCompanionNotFound, err)
		}
		return nil, fmt.Errorf("%w: resolve companion directory: %w", ErrInitialization, err)
	}

	search, missing := paths.SearchPaths(dir, g.companions...)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %w: missing %v in %s", ErrInitialization, ErrCompanionNotFound, missing, dir)
	}
	if err := g.resolver.RegisterSearchPaths(search); err != nil {
		return nil, fmt.Errorf("%w: register companion search paths: %w", ErrInitialization, err)
	}

	core, err := g.resolver.LoadCore()
	if err != nil {
		return nil, fmt.Errorf("%w: load core model: %w", ErrInitialization, err)
	}

	g.core = core
	g.initialized = true
	internalLogger.infof("addin initialized, companion dir %s", dir)
	return core, nil
}
