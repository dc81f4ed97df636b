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

import "strings"

// matchesPattern checks if a value matches a wildcard pattern.
// Supports multiple wildcard segments, e.g. "a*b*c" matches "aXbYc".
//   - "prefix*" matches values starting with "prefix"
//   - "*suffix" matches values ending with "suffix"
//   - "*contains*" matches values containing "contains"
//   - "exact" matches values exactly
func matchesPattern(value, pattern string) bool {
	// No wildcard - exact match
	if !strings.Contains(pattern, "*") {
		return value == pattern
	}

	segments := strings.Split(pattern, "*")

	// Anchor the first segment unless the pattern starts with a wildcard.
	if segments[0] != "" {
		if !strings.HasPrefix(value, segments[0]) {
			return false
		}
		value = value[len(segments[0]):]
	}

	// Anchor the last segment unless the pattern ends with a wildcard.
	last := segments[len(segments)-1]
	if last != "" {
		if !strings.HasSuffix(value, last) {
			return false
		}
		value = value[:len(value)-len(last)]
	}

	// Remaining segments must appear in order.
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := strings.Index(value, seg)
		if idx < 0 {
			return false
		}
		value = value[idx+len(seg):]
	}

	return true
}
