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
	"io"

	"github.com/hostbridge/addin-runtime/api"
)

// Config carries everything the entry-point command needs from the
// integration layer. Resolver and ViewFactory are required; the rest has
// working defaults.
type Config struct {
	// QueueCap is the idle scheduler's capacity hint.
	QueueCap int64

	// LogOutput redirects the runtime's internal loggers. Nil keeps stdout.
	LogOutput io.Writer

	// JournalKeyDebug and JournalKeyWorkspace name the recognized keys of
	// the string-keyed side-channel bag passed with each invocation.
	JournalKeyDebug     string
	JournalKeyWorkspace string

	// CompanionNames are the companion library filenames expected in the
	// resolved companion resources directory.
	CompanionNames []string

	// Resolver loads the companion libraries and the core model.
	Resolver api.CompanionResolver

	// ViewFactory builds the view model on top of a loaded core model.
	// Window construction itself belongs to the integration layer.
	ViewFactory func(api.CoreModel) (api.ViewModel, error)

	// Collector receives best-effort telemetry. Nil disables telemetry.
	Collector api.Collector

	// Preflight, when set, runs before initialization. Returning false
	// without an error cancels the invocation (ResultCancelled).
	Preflight func(api.HostContext) (bool, error)
}

// DefaultConfig returns a config with the standard journal keys and queue
// capacity. Resolver and ViewFactory must still be provided.
func DefaultConfig() *Config {
	return &Config{
		QueueCap:            defaultQueueCap,
		JournalKeyDebug:     "debug",
		JournalKeyWorkspace: "workspace",
	}
}

func (c *Config) validate() error {
	if c.Resolver == nil {
		return fmt.Errorf("%w: config requires a companion resolver", ErrInitialization)
	}
	if c.ViewFactory == nil {
		return fmt.Errorf("%w: config requires a view factory", ErrInitialization)
	}
	if c.JournalKeyDebug == "" {
		c.JournalKeyDebug = "debug"
	}
	if c.JournalKeyWorkspace == "" {
		c.JournalKeyWorkspace = "workspace"
	}
	return nil
}
