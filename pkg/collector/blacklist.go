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

import "sync"

// Blacklist excludes specific commands and files from collection
// regardless of enablement. Matching happens at schedule time against a
// component's source, so it composes with runtime enablement changes.
type Blacklist struct {
	mu       sync.RWMutex
	commands []string
	files    []string
}

// NewBlacklist creates an empty Blacklist.
func NewBlacklist() *Blacklist {
	return &Blacklist{}
}

// AddCommand excludes components whose command matches the pattern.
// Patterns support the same wildcards as metadata filtering ("*" segments).
func (b *Blacklist) AddCommand(pattern string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, pattern)
}

// AddFile excludes components whose file path matches the pattern.
func (b *Blacklist) AddFile(pattern string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files = append(b.files, pattern)
}

// Blocks reports whether the component's source is blacklisted.
// Derived components are never matched directly; they are excluded only
// through their inputs drying up.
func (b *Blacklist) Blocks(c *Component) bool {
	if c == nil {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var patterns []string
	switch c.Kind {
	case KindCommand:
		patterns = b.commands
	case KindFile:
		patterns = b.files
	default:
		return false
	}

	for _, p := range patterns {
		if matchesPattern(c.Source, p) {
			return true
		}
	}
	return false
}

// Empty reports whether no patterns have been added.
func (b *Blacklist) Empty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.commands) == 0 && len(b.files) == 0
}
