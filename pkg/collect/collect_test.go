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

package collect

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/triage/pkg/archive"
	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/execution"
	"github.com/NVIDIA/triage/pkg/manifest"
	"github.com/NVIDIA/triage/pkg/persist"
)

func init() {
	collector.RegisterPackage("collect.test", func(reg *collector.Registry) error {
		reg.MustRegister(&collector.Component{
			Name: "t.ok",
			Kind: collector.KindDerived,
			Run: func(_ context.Context, _ execution.Context, _ map[string]any) (any, error) {
				return map[string]any{"answer": 42}, nil
			},
		})
		reg.MustRegister(&collector.Component{
			Name: "t.fail",
			Kind: collector.KindDerived,
			Run: func(_ context.Context, _ execution.Context, _ map[string]any) (any, error) {
				return nil, errors.New(errors.ErrCodeInternal, "boom")
			},
		})
		reg.MustRegister(&collector.Component{
			Name: "t.uses_ok",
			Kind: collector.KindDerived,
			Deps: []string{"t.ok"},
			Run: func(_ context.Context, _ execution.Context, deps map[string]any) (any, error) {
				return deps["t.ok"], nil
			},
		})
		return nil
	})

	collector.RegisterPackage("collect.cycle", func(reg *collector.Registry) error {
		reg.MustRegister(&collector.Component{
			Name: "cy.a",
			Kind: collector.KindDerived,
			Deps: []string{"cy.b"},
			Run: func(_ context.Context, _ execution.Context, _ map[string]any) (any, error) {
				return nil, nil
			},
		})
		reg.MustRegister(&collector.Component{
			Name: "cy.b",
			Kind: collector.KindDerived,
			Deps: []string{"cy.a"},
			Run: func(_ context.Context, _ execution.Context, _ map[string]any) (any, error) {
				return nil, nil
			},
		})
		return nil
	})
}

func enabled(v bool) *bool {
	return &v
}

func testManifest(packages ...string) *manifest.Manifest {
	return &manifest.Manifest{
		Version:                 1,
		Packages:                packages,
		MaxSerializableFileSize: manifest.DefaultMaxFileSize,
		Serializer:              "json",
		Configs: []manifest.ConfigSpec{
			{Name: "t.", Enabled: enabled(true)},
			{Name: "cy.", Enabled: enabled(true)},
		},
		Persist: []manifest.PersistSpec{
			{Name: "t.", Enabled: enabled(true)},
		},
	}
}

func TestRunWithoutArchive(t *testing.T) {
	out := t.TempDir()

	root, err := Run(context.Background(), testManifest("collect.test"), Options{
		OutPath: out,
		Archive: false,
		Version: "test",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(root), "triage-"))

	// Marker identifies the run.
	marker, err := os.ReadFile(filepath.Join(root, MarkerFile))
	require.NoError(t, err)
	assert.Contains(t, string(marker), "run_id:")
	assert.Contains(t, string(marker), "version: test")

	// Successful and failed components both have documents.
	content, err := os.ReadFile(filepath.Join(root, persist.DataDir, "t.ok.json"))
	require.NoError(t, err)

	var doc persist.Document
	require.NoError(t, json.Unmarshal(content, &doc))
	results, ok := doc.Results.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, results["answer"])

	failContent, err := os.ReadFile(filepath.Join(root, persist.DataDir, "t.fail.json"))
	require.NoError(t, err)
	assert.Contains(t, string(failContent), "boom")

	// The dependent received the dependency's value.
	depContent, err := os.ReadFile(filepath.Join(root, persist.DataDir, "t.uses_ok.json"))
	require.NoError(t, err)
	assert.Contains(t, string(depContent), "42")
}

func TestRunWithArchive(t *testing.T) {
	out := t.TempDir()

	path, err := Run(context.Background(), testManifest("collect.test"), Options{
		OutPath: out,
		Archive: true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".tar.gz"))
	assert.FileExists(t, path)

	// The working directory is gone once the archive exists.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsDir())

	// Round-trip: the archive contains the documents.
	dest := t.TempDir()
	require.NoError(t, archive.Extract(path, dest))
	top, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.FileExists(t, filepath.Join(dest, top[0].Name(), persist.DataDir, "t.ok.json"))
}

func TestRunUnknownPackage(t *testing.T) {
	_, err := Run(context.Background(), testManifest("no.such.package"), Options{OutPath: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestRunDependencyCycle(t *testing.T) {
	out := t.TempDir()

	_, err := Run(context.Background(), testManifest("collect.cycle"), Options{OutPath: out})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	// Nothing ran, so no run directory is left behind.
	entries, readErr := os.ReadDir(out)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunParallel(t *testing.T) {
	out := t.TempDir()

	root, err := Run(context.Background(), testManifest("collect.test"), Options{
		OutPath: out,
		Workers: 4,
		Archive: false,
	})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, persist.DataDir, "t.uses_ok.json"))
}
