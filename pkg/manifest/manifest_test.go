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

package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/serializer"
)

const sampleYAML = `
version: 1
context:
  class: HostContext
  args:
    timeout: 5
default_component_enabled: false
blacklist:
  commands:
    - dmidecode
  files:
    - /etc/shadow
packages:
  - collector/host
configs:
  - name: host.
    enabled: true
  - name: host.cmd.slow
    timeout: 30
persist:
  - name: host.
max_serializable_file_size: 1024
serializer: yaml
`

func TestLoad(t *testing.T) {
	m, err := Load([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "HostContext", m.Context.Class)
	assert.False(t, m.DefaultComponentEnabled)
	assert.Equal(t, []string{"collector/host"}, m.Packages)
	assert.Equal(t, int64(1024), m.MaxSerializableFileSize)
	assert.Equal(t, serializer.FormatYAML, m.Format())
}

func TestLoadRejectsNonMapping(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "sequence", content: "- one\n- two\n"},
		{name: "scalar", content: "just a string\n"},
		{name: "invalid yaml", content: "version: [unclosed\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.content))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeManifestFormat))
		})
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load([]byte("context:\n  class: HostContext\n"))
	require.Error(t, err, "missing version must fail validation")
	assert.True(t, errors.HasCode(err, errors.ErrCodeManifestFormat))

	_, err = Load([]byte("version: 1\nconfigs:\n  - enabled: true\n"))
	require.Error(t, err, "config entry without a name must fail validation")
}

func TestLoadDefaults(t *testing.T) {
	m, err := Load([]byte("version: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxFileSize, m.MaxSerializableFileSize)
	assert.Equal(t, serializer.FormatJSON, m.Format())
}

func TestLoadFileTOML(t *testing.T) {
	content := `
version = 1
serializer = "json"

[[configs]]
name = "host."
enabled = true

[[persist]]
name = "host."
`
	path := filepath.Join(t.TempDir(), "manifest.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Version)
	require.Len(t, m.Configs, 1)
	assert.Equal(t, "host.", m.Configs[0].Name)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeManifestFormat))
}

func TestDefaultManifest(t *testing.T) {
	m := Default()
	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "HostContext", m.Context.Class)
	assert.False(t, m.DefaultComponentEnabled)
	assert.Contains(t, m.Packages, "collector/host")
	assert.NotEmpty(t, m.Configs)
	assert.NotEmpty(t, m.Persist)
}

func TestOverrides(t *testing.T) {
	m, err := Load([]byte(sampleYAML))
	require.NoError(t, err)

	overrides := m.Overrides()
	require.Len(t, overrides, 2)

	assert.Equal(t, "host.", overrides[0].Name)
	assert.True(t, overrides[0].Enabled)
	assert.Nil(t, overrides[0].Timeout)

	// Omitted enabled means enabled; timeout is whole seconds.
	assert.True(t, overrides[1].Enabled)
	require.NotNil(t, overrides[1].Timeout)
	assert.Equal(t, 30*time.Second, *overrides[1].Timeout)
}

func TestPersistRules(t *testing.T) {
	m, err := Load([]byte(sampleYAML))
	require.NoError(t, err)

	rules := m.PersistRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "host.", rules[0].Name)
	assert.True(t, rules[0].Enabled)
}

func TestBlacklistFilter(t *testing.T) {
	m, err := Load([]byte(sampleYAML))
	require.NoError(t, err)

	bl := m.BlacklistFilter()
	require.NotNil(t, bl)
	assert.False(t, bl.Empty())
}
