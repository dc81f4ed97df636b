// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collector

import (
	"context"
	"time"

	"github.com/NVIDIA/triage/pkg/execution"
)

// Kind classifies what a component wraps.
type Kind string

const (
	// KindCommand wraps a host command; its Source is the command line.
	KindCommand Kind = "command"
	// KindFile wraps a file read; its Source is the file path.
	KindFile Kind = "file"
	// KindDerived computes a value from other components' results.
	KindDerived Kind = "derived"
)

// RunFunc executes a component. deps maps each declared dependency name to
// its produced value; a dependency that executed but failed (or was never
// eligible) maps to nil, and the component decides whether that is fatal
// for it.
type RunFunc func(ctx context.Context, host execution.Context, deps map[string]any) (any, error)

// Component is a named unit of data collection or derivation. Components
// are registered once and immutable afterwards except for Enabled,
// Metadata, and Timeout, which manifest overrides may change before a run.
type Component struct {
	// Name is the unique hierarchical dotted identifier, e.g. "host.cmd.uname".
	Name string

	// Kind classifies the component; it determines blacklist and timeout
	// applicability.
	Kind Kind

	// Source is the command line (KindCommand) or file path (KindFile).
	// Empty for derived components.
	Source string

	// Deps lists the names of components whose values this one consumes.
	Deps []string

	// Metadata carries free-form key/value configuration; manifest
	// overrides merge into it.
	Metadata map[string]any

	// Timeout bounds execution of command-backed components. Zero falls
	// back to the execution context's default. Ignored for other kinds.
	Timeout time.Duration

	// Filters lists substrings used when a large output is relocated:
	// only lines containing at least one of them are kept in the copy.
	// Empty means unfiltered.
	Filters []string

	// Enabled is computed by the enablement resolver before scheduling.
	Enabled bool

	// Run produces the component's value.
	Run RunFunc
}

// TimeoutFor returns the effective execution deadline for the component
// given the context's default, or zero when none applies. Only
// command-backed components are time-bounded.
func (c *Component) TimeoutFor(host execution.Context) time.Duration {
	if c.Kind != KindCommand {
		return 0
	}
	if c.Timeout > 0 {
		return c.Timeout
	}
	if host != nil {
		return host.CommandTimeout()
	}
	return 0
}
