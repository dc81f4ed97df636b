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

package host

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/triage/pkg/execution"
)

const sysctlRoot = "/proc/sys"

func runSysctl(ctx context.Context, _ execution.Context, _ map[string]any) (any, error) {
	return walkSysctl(ctx, sysctlRoot)
}

// walkSysctl gathers kernel parameters from the sysctl tree, excluding
// the large and volatile net subtree. Unreadable entries are skipped;
// some proc files are write-only or restricted.
func walkSysctl(ctx context.Context, root string) (map[string]string, error) {
	params := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip symlinks to prevent directory traversal.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			if path == filepath.Join(root, "net") {
				return filepath.SkipDir
			}
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := strings.ReplaceAll(rel, string(os.PathSeparator), ".")
		params[key] = strings.TrimSpace(string(content))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}

// ParseKernelModules extracts loaded module names from /proc/modules
// content, preserving order.
func ParseKernelModules(content string) []string {
	var modules []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, _, _ := strings.Cut(line, " ")
		modules = append(modules, name)
	}
	return modules
}

func runKernelModules(_ context.Context, _ execution.Context, deps map[string]any) (any, error) {
	content, err := providerContent(deps, "host.file.modules")
	if err != nil {
		return nil, err
	}
	return ParseKernelModules(content), nil
}
