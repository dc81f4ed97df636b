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

// Package collector defines the component model at the heart of a
// collection run: the Registry of named components with declared
// dependencies, the enablement resolver applied from manifest overrides,
// the persist-directive rule evaluator, and the blacklist that keeps
// specific commands and files from ever being collected.
//
// # Components
//
// A Component wraps a host command, a file read, or a derivation over
// other components' results:
//
//	reg.MustRegister(&collector.Component{
//	    Name:   "host.cmd.uname",
//	    Kind:   collector.KindCommand,
//	    Source: "uname -a",
//	    Run: func(ctx context.Context, host execution.Context, _ map[string]any) (any, error) {
//	        out, err := host.RunCommand(ctx, "uname -a")
//	        return strings.TrimSpace(string(out)), err
//	    },
//	})
//
// # Enablement resolution
//
// Registry.ApplyDefault establishes a run-wide fallback; ApplyOverrides
// then applies manifest entries in order, matching components by name
// prefix with an exact match terminating each entry's sweep. The same
// ordered-prefix semantics drive persist selection through Select.
//
// # Packages
//
// Component packages (pkg/collector/host, pkg/collector/sysd) register
// themselves by name via RegisterPackage; manifests list the packages to
// load for a run.
package collector
