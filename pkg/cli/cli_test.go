/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifestDefault(t *testing.T) {
	m, err := loadManifest("")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Version)
	assert.Contains(t, m.Packages, "collector/host")
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := loadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestComponentsCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "components.json")

	cmd := componentsCmd()
	err := cmd.Run(context.Background(), []string{"components", "--format", "json", "--output", out})
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)

	var infos []componentInfo
	require.NoError(t, json.Unmarshal(content, &infos))
	require.NotEmpty(t, infos)

	byName := make(map[string]componentInfo, len(infos))
	for _, info := range infos {
		byName[info.Name] = info
	}

	// Host components are enabled by the default manifest, sysd is not.
	uname, ok := byName["host.cmd.uname"]
	require.True(t, ok)
	assert.True(t, uname.Enabled)
	assert.Equal(t, "uname -a", uname.Source)

	units, ok := byName["sysd.units"]
	require.True(t, ok)
	assert.False(t, units.Enabled)
}

func TestManifestCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "manifest.yaml")

	cmd := manifestCmd()
	err := cmd.Run(context.Background(), []string{"manifest", "--output", out})
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "collector/host")
	assert.Contains(t, string(content), "version: 1")
}

func TestCollectCommandNoArchive(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "m.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("version: 1\npackages: []\n"), 0o600))

	var buf bytes.Buffer
	cmd := collectCmd()
	cmd.Writer = &buf

	outDir := t.TempDir()
	err := cmd.Run(context.Background(), []string{
		"collect", "--manifest", manifestPath, "--output", outDir, "--no-archive",
	})
	require.NoError(t, err)

	printed := strings.TrimSpace(buf.String())
	require.NotEmpty(t, printed)
	assert.DirExists(t, printed)
	assert.FileExists(t, filepath.Join(printed, "triage_archive.txt"))
}

func TestRootCommandStructure(t *testing.T) {
	root := rootCmd()
	assert.Equal(t, "triage", root.Name)

	names := make([]string, 0, len(root.Commands))
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"collect", "components", "manifest"}, names)
}
