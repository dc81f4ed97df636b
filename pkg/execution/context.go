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

package execution

import (
	"context"
	"sync"
	"time"

	"github.com/NVIDIA/triage/pkg/errors"
)

// Context supplies the environment components run against: command
// execution, file access, and the per-run command timeout. Implementations
// are selected by class name from the manifest.
type Context interface {
	// RunCommand executes a command line and returns its standard output.
	// The supplied context carries the per-component deadline when one applies.
	RunCommand(ctx context.Context, command string) ([]byte, error)

	// ReadFile reads the content of a file on the target host.
	// File reads are not time-bounded.
	ReadFile(path string) ([]byte, error)

	// CommandTimeout returns the default timeout applied to command-backed
	// components that declare none of their own. Zero means no timeout.
	CommandTimeout() time.Duration
}

// Factory constructs a Context from manifest-supplied constructor arguments.
type Factory func(args map[string]any) (Context, error)

var (
	classMu sync.RWMutex
	classes = make(map[string]Factory)
)

// RegisterClass registers a context class under the given name.
// Typically called from init functions of Context implementations.
func RegisterClass(name string, f Factory) {
	classMu.Lock()
	defer classMu.Unlock()
	classes[name] = f
}

// NewFromClass instantiates the context class named in the manifest with
// its constructor arguments. An empty name selects HostContext.
func NewFromClass(name string, args map[string]any) (Context, error) {
	if name == "" {
		name = ClassHostContext
	}

	classMu.RLock()
	f, ok := classes[name]
	classMu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrCodeNotFound, "unknown execution context class %q", name)
	}
	return f(args)
}

// Classes returns the registered context class names.
func Classes() []string {
	classMu.RLock()
	defer classMu.RUnlock()

	names := make([]string, 0, len(classes))
	for n := range classes {
		names = append(names, n)
	}
	return names
}
