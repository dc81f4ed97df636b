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

package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/triage/pkg/errors"
)

func TestCreateAndExtract(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "triage-host-20250101")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "host.json"), []byte(`{"ok":true}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("run"), 0o600))

	path, err := Create(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir+".tar.gz", path)
	assert.FileExists(t, path)

	// The working directory is removed once the archive exists.
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))

	dest := filepath.Join(root, "out")
	require.NoError(t, Extract(path, dest))

	// Entries include the top-level directory name.
	content, err := os.ReadFile(filepath.Join(dest, "triage-host-20250101", "data", "host.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(content))

	marker, err := os.ReadFile(filepath.Join(dest, "triage-host-20250101", "marker.txt"))
	require.NoError(t, err)
	assert.Equal(t, "run", string(marker))
}

func TestCreateMissingDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "absent")

	_, err := Create(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeArchive))

	// No partial archive left behind.
	_, statErr := os.Stat(dir + ".tar.gz")
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateCanceled(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "run")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Create(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeArchive))

	// The working directory survives a failed archive attempt.
	assert.DirExists(t, dir)
}

func TestExtractMissingArchive(t *testing.T) {
	err := Extract(filepath.Join(t.TempDir(), "none.tar.gz"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeArchive))
}
