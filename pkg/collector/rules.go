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
	"sort"
	"strings"
)

// Rule selects components by name prefix. Rules compose in order: an
// enabled rule adds the matched names to the selection, a disabled rule
// removes them, and later rules win. An exact-name match ends that rule's
// sweep, mirroring override resolution.
type Rule struct {
	Name    string
	Enabled bool
}

// Select evaluates rules in order over the given component names and
// returns the selected set. Names are scanned in ascending order for each
// rule so resolution is deterministic.
func Select(rules []Rule, names []string) map[string]bool {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	selected := make(map[string]bool)
	for _, rule := range rules {
		for _, name := range sorted {
			if !strings.HasPrefix(name, rule.Name) {
				continue
			}
			if rule.Enabled {
				selected[name] = true
			} else {
				delete(selected, name)
			}
			if name == rule.Name {
				break
			}
		}
	}
	return selected
}
