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

// Package manifest defines the declarative run configuration for a
// collection: which component packages to load, which components to
// enable or tune, what never to collect, and what to persist.
package manifest

import (
	_ "embed"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/serializer"
)

// DefaultMaxFileSize is the size in bytes above which an unloaded file
// is relocated into the archive rather than serialized inline.
const DefaultMaxFileSize int64 = 512 * 1024

//go:embed default.yaml
var defaultManifest []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// Manifest is the root of a collection run configuration.
type Manifest struct {
	Version                 int           `yaml:"version" toml:"version" json:"version" validate:"required,gte=1"`
	Context                 ContextSpec   `yaml:"context" toml:"context" json:"context"`
	DefaultComponentEnabled bool          `yaml:"default_component_enabled" toml:"default_component_enabled" json:"default_component_enabled"`
	Blacklist               BlacklistSpec `yaml:"blacklist" toml:"blacklist" json:"blacklist"`
	Packages                []string      `yaml:"packages" toml:"packages" json:"packages"`
	Configs                 []ConfigSpec  `yaml:"configs" toml:"configs" json:"configs" validate:"dive"`
	Persist                 []PersistSpec `yaml:"persist" toml:"persist" json:"persist" validate:"dive"`
	MaxSerializableFileSize int64         `yaml:"max_serializable_file_size" toml:"max_serializable_file_size" json:"max_serializable_file_size" validate:"gte=0"`
	Serializer              string        `yaml:"serializer" toml:"serializer" json:"serializer" validate:"omitempty,oneof=json yaml"`
}

// ContextSpec names the execution context class for the run and its
// construction arguments.
type ContextSpec struct {
	Class string         `yaml:"class" toml:"class" json:"class"`
	Args  map[string]any `yaml:"args" toml:"args" json:"args"`
}

// BlacklistSpec lists command and file patterns that must never be
// collected, regardless of enablement.
type BlacklistSpec struct {
	Commands []string `yaml:"commands" toml:"commands" json:"commands"`
	Files    []string `yaml:"files" toml:"files" json:"files"`
}

// ConfigSpec is one enablement or tuning directive. Name matches
// components by prefix; an entry whose name equals a component name
// applies to that component alone.
type ConfigSpec struct {
	Name     string         `yaml:"name" toml:"name" json:"name" validate:"required"`
	Enabled  *bool          `yaml:"enabled" toml:"enabled" json:"enabled"`
	Metadata map[string]any `yaml:"metadata" toml:"metadata" json:"metadata"`
	Timeout  *int           `yaml:"timeout" toml:"timeout" json:"timeout" validate:"omitempty,gt=0"`
}

// PersistSpec is one persistence directive, matched by prefix like
// ConfigSpec.
type PersistSpec struct {
	Name    string `yaml:"name" toml:"name" json:"name" validate:"required"`
	Enabled *bool  `yaml:"enabled" toml:"enabled" json:"enabled"`
}

// Default returns the built-in manifest.
func Default() *Manifest {
	m, err := Load(defaultManifest)
	if err != nil {
		// The embedded manifest is fixed at build time.
		panic(err)
	}
	return m
}

// Load parses manifest content as YAML (JSON content parses too) and
// validates it. Content that is not a mapping of settings is rejected
// with a manifest format error.
func Load(content []byte) (*Manifest, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestFormat, "manifest is not valid YAML", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeManifestFormat, "manifest must be a mapping of settings")
	}

	var m Manifest
	if err := node.Decode(&m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestFormat, "manifest has malformed settings", err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads a manifest from path. Files ending in .toml are parsed
// as TOML; everything else is parsed as YAML.
func LoadFile(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestFormat, "unable to read manifest file", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".toml") {
		var m Manifest
		if err := toml.Unmarshal(content, &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeManifestFormat, "manifest is not valid TOML", err)
		}
		m.applyDefaults()
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return &m, nil
	}

	return Load(content)
}

func (m *Manifest) applyDefaults() {
	if m.MaxSerializableFileSize == 0 {
		m.MaxSerializableFileSize = DefaultMaxFileSize
	}
	if m.Serializer == "" {
		m.Serializer = string(serializer.FormatJSON)
	}
}

// Validate checks the manifest's structural constraints.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return errors.Wrap(errors.ErrCodeManifestFormat, "manifest failed validation", err)
	}
	return nil
}

// Overrides converts the configs section into registry overrides,
// preserving order. An entry without an explicit enabled value enables
// its components. Timeouts are given in whole seconds.
func (m *Manifest) Overrides() []collector.Override {
	out := make([]collector.Override, 0, len(m.Configs))
	for _, c := range m.Configs {
		o := collector.Override{
			Name:     c.Name,
			Enabled:  c.Enabled == nil || *c.Enabled,
			Metadata: c.Metadata,
		}
		if c.Timeout != nil {
			d := time.Duration(*c.Timeout) * time.Second
			o.Timeout = &d
		}
		out = append(out, o)
	}
	return out
}

// PersistRules converts the persist section into selection rules,
// preserving order.
func (m *Manifest) PersistRules() []collector.Rule {
	out := make([]collector.Rule, 0, len(m.Persist))
	for _, p := range m.Persist {
		out = append(out, collector.Rule{
			Name:    p.Name,
			Enabled: p.Enabled == nil || *p.Enabled,
		})
	}
	return out
}

// BlacklistFilter builds the collection blacklist from the manifest.
func (m *Manifest) BlacklistFilter() *collector.Blacklist {
	bl := collector.NewBlacklist()
	for _, c := range m.Blacklist.Commands {
		bl.AddCommand(c)
	}
	for _, f := range m.Blacklist.Files {
		bl.AddFile(f)
	}
	return bl
}

// Format returns the document serialization format for the run.
func (m *Manifest) Format() serializer.Format {
	return serializer.ParseFormat(m.Serializer)
}
