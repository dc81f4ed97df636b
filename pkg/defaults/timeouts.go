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

package defaults

import "time"

// Execution timeouts for component collection.
const (
	// CommandTimeout is the default per-command timeout applied when a
	// manifest's execution context does not set one. Components may
	// override it individually.
	CommandTimeout = 10 * time.Second

	// SystemdTimeout bounds D-Bus round-trips when capturing unit state.
	SystemdTimeout = 15 * time.Second
)

// Run-level limits.
const (
	// CommandsPerSecond caps subprocess spawn rate so a large manifest
	// cannot overwhelm a loaded node. Zero disables limiting.
	CommandsPerSecond = 20.0
)
