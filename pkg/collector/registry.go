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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Registry is the table of known components for a run. It is an explicit
// object rather than process-global state so multiple independent runs can
// coexist in one process.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Component

	// defaultEnabled, once set, applies to components registered later as
	// well: the default is a run-wide fallback, not a one-time sweep.
	defaultEnabled *bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]*Component),
	}
}

// Register adds a component to the registry. Registration fails on an
// empty name, a duplicate name, or a nil run function.
func (r *Registry) Register(c *Component) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("component must have a name")
	}
	if c.Run == nil {
		return fmt.Errorf("component %s must have a run function", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.Name]; exists {
		return fmt.Errorf("component %s already registered", c.Name)
	}
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	if r.defaultEnabled != nil {
		c.Enabled = *r.defaultEnabled
	}
	r.components[c.Name] = c
	return nil
}

// MustRegister panics on registration error. Use in package registration
// functions where a failure is a programming bug.
func (r *Registry) MustRegister(c *Component) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get retrieves a component by name.
func (r *Registry) Get(name string) (*Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns all registered component names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for n := range r.components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Components returns all registered components sorted by name.
func (r *Registry) Components() []*Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comps := make([]*Component, 0, len(r.components))
	for _, c := range r.components {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].Name < comps[j].Name })
	return comps
}

// Count returns the number of registered components.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.components)
}

// ApplyDefault sets every currently registered component's enabled state
// and records the value as the fallback for components registered later.
func (r *Registry) ApplyDefault(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.components {
		c.Enabled = enabled
	}
	r.defaultEnabled = &enabled
}

// Override is one manifest configuration entry matched by name prefix.
type Override struct {
	// Name is the component name prefix this entry applies to. An exact
	// name match terminates the sweep for this entry.
	Name string

	// Enabled sets the matched components' enabled state.
	Enabled bool

	// Metadata, when non-nil, is merged into matched components' metadata.
	Metadata map[string]any

	// Timeout, when non-nil, replaces the timeout of matched
	// command-backed components.
	Timeout *time.Duration
}

// ApplyOverrides applies entries in caller order: for each entry, all
// components sorted by identifier whose name starts with the entry's name
// are updated; a component whose name equals it exactly stops the sweep
// for that entry. Later entries win over earlier ones for the same
// component.
func (r *Registry) ApplyOverrides(overrides []Override) {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.components))
	for n := range r.components {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, o := range overrides {
		for _, name := range names {
			if !strings.HasPrefix(name, o.Name) {
				continue
			}
			c := r.components[name]
			c.Enabled = o.Enabled
			for k, v := range o.Metadata {
				c.Metadata[k] = v
			}
			if o.Timeout != nil && c.Kind == KindCommand {
				c.Timeout = *o.Timeout
			}
			if name == o.Name {
				break
			}
		}
	}
}

// Enabled returns the components currently enabled, sorted by name.
func (r *Registry) Enabled() []*Component {
	comps := r.Components()
	out := comps[:0]
	for _, c := range comps {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}
