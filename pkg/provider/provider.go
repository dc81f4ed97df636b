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

// Package provider implements deferred result values for file-backed
// components. A FileProvider starts as an unloaded reference and moves
// through exactly one of two transitions: loaded into memory, or relocated
// to a managed path on disk.
package provider

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// State describes where a FileProvider's content currently lives.
type State string

const (
	// StateUnloaded means only the path reference exists.
	StateUnloaded State = "unloaded"
	// StateLoaded means the content has been read into memory and cached.
	StateLoaded State = "loaded"
	// StateRelocated means the content was copied to a managed location
	// instead of being read into memory.
	StateRelocated State = "relocated"
)

// FileProvider is a deferred reference to a file on the collection host.
// Content is loaded lazily and at most once; after loading it is cached.
type FileProvider struct {
	path    string
	relPath string

	mu          sync.Mutex
	once        sync.Once
	content     []byte
	loadErr     error
	loaded      bool
	relocatedTo string

	read func(string) ([]byte, error)
}

// Option configures a FileProvider.
type Option func(*FileProvider)

// WithReader overrides the function used to load content, letting callers
// route reads through an execution context.
func WithReader(read func(string) ([]byte, error)) Option {
	return func(p *FileProvider) {
		p.read = read
	}
}

// WithRelativePath overrides the path used when mirroring the file under
// a managed directory. Defaults to the source path with the leading
// separator trimmed.
func WithRelativePath(rel string) Option {
	return func(p *FileProvider) {
		p.relPath = rel
	}
}

// NewFileProvider creates an unloaded reference to the given path.
func NewFileProvider(path string, opts ...Option) *FileProvider {
	p := &FileProvider{
		path:    path,
		relPath: strings.TrimPrefix(path, string(os.PathSeparator)),
		read:    os.ReadFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Path returns the absolute source path.
func (p *FileProvider) Path() string {
	return p.path
}

// RelativePath returns the path used to mirror the file under a managed
// directory.
func (p *FileProvider) RelativePath() string {
	return p.relPath
}

// Size returns the current size of the underlying file without loading it.
func (p *FileProvider) Size() (int64, error) {
	fi, err := os.Stat(p.path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Content loads the file on first call and returns the cached bytes on
// every subsequent call. Calling Content on a relocated provider returns
// nothing: the content intentionally never entered memory.
func (p *FileProvider) Content() ([]byte, error) {
	p.mu.Lock()
	if p.relocatedTo != "" {
		p.mu.Unlock()
		return nil, nil
	}
	p.mu.Unlock()

	p.once.Do(func() {
		data, err := p.read(p.path)
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.loadErr = err
			return
		}
		p.content = data
		p.loaded = true
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content, p.loadErr
}

// Loaded reports whether content has been read into memory.
func (p *FileProvider) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// MarkRelocated records that the content was copied to dst instead of
// being loaded. No-op if the content was already loaded.
func (p *FileProvider) MarkRelocated(dst string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return
	}
	p.relocatedTo = dst
}

// RelocatedTo returns the managed destination path, empty unless relocated.
func (p *FileProvider) RelocatedTo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.relocatedTo
}

// State returns the provider's current state.
func (p *FileProvider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.loaded:
		return StateLoaded
	case p.relocatedTo != "":
		return StateRelocated
	default:
		return StateUnloaded
	}
}

// document is the serialized shape of a FileProvider inside a persisted
// component document.
type document struct {
	Path        string `json:"path" yaml:"path"`
	State       State  `json:"state" yaml:"state"`
	Content     string `json:"content,omitempty" yaml:"content,omitempty"`
	RelocatedTo string `json:"relocated_to,omitempty" yaml:"relocated_to,omitempty"`
}

func (p *FileProvider) doc() document {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := document{Path: p.path}
	switch {
	case p.loaded:
		d.State = StateLoaded
		d.Content = string(p.content)
	case p.relocatedTo != "":
		d.State = StateRelocated
		d.RelocatedTo = p.relocatedTo
	default:
		d.State = StateUnloaded
	}
	return d
}

// MarshalJSON serializes the provider for persisted documents: inline
// content when loaded, the managed path when relocated.
func (p *FileProvider) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.doc())
}

// MarshalYAML serializes the provider for persisted documents.
func (p *FileProvider) MarshalYAML() (any, error) {
	return p.doc(), nil
}
