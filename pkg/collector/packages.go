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
	"sync"

	"github.com/NVIDIA/triage/pkg/errors"
)

// PackageFunc registers a package's components into a registry.
type PackageFunc func(*Registry) error

var (
	pkgMu    sync.RWMutex
	packages = make(map[string]PackageFunc)
)

// RegisterPackage registers a component package under the name manifests
// refer to it by. Typically called from init functions. Re-registration
// under an existing name panics: it is a programming bug.
func RegisterPackage(name string, fn PackageFunc) {
	pkgMu.Lock()
	defer pkgMu.Unlock()
	if _, exists := packages[name]; exists {
		panic("collector: package " + name + " already registered")
	}
	packages[name] = fn
}

// LoadPackages registers the components of each named package into the
// registry. An unknown package name is fatal: a manifest referring to a
// package this binary does not carry cannot produce the requested bundle.
func LoadPackages(reg *Registry, names []string) error {
	for _, name := range names {
		pkgMu.RLock()
		fn, ok := packages[name]
		pkgMu.RUnlock()
		if !ok {
			return errors.Newf(errors.ErrCodeNotFound, "unknown component package %q", name)
		}
		if err := fn(reg); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "loading package "+name, err)
		}
	}
	return nil
}

// Packages returns the registered package names in ascending order.
func Packages() []string {
	pkgMu.RLock()
	defer pkgMu.RUnlock()

	names := make([]string, 0, len(packages))
	for n := range packages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
