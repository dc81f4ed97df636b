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

// Package persist writes completed component results into a run's
// working directory as serialized documents, relocating oversized file
// content into the raw data area instead of holding it in memory.
package persist

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/triage/pkg/broker"
	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/provider"
	"github.com/NVIDIA/triage/pkg/serializer"
)

const (
	// DataDir holds one serialized document per persisted component.
	DataDir = "data"
	// RawDataDir holds relocated file content, mirroring source paths.
	RawDataDir = "raw_data"
)

// Document is the persisted record of one component's outcome.
type Document struct {
	Name    string   `json:"name" yaml:"name"`
	Elapsed float64  `json:"exec_time" yaml:"exec_time"`
	Results any      `json:"results,omitempty" yaml:"results,omitempty"`
	Errors  []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Persister persists selected component results under a run directory.
type Persister struct {
	root      string
	registry  *collector.Registry
	toPersist map[string]bool
	maxSize   int64
	format    serializer.Format
}

// New creates a Persister rooted at the run's working directory and
// creates the data and raw data subdirectories. The rules select which
// registered components are persisted, by prefix.
func New(root string, reg *collector.Registry, rules []collector.Rule, maxSize int64, format serializer.Format) (*Persister, error) {
	for _, sub := range []string{DataDir, RawDataDir} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o750); err != nil {
			return nil, err
		}
	}
	return &Persister{
		root:      root,
		registry:  reg,
		toPersist: collector.Select(rules, reg.Names()),
		maxSize:   maxSize,
		format:    format,
	}, nil
}

// ShouldPersist reports whether the named component is selected for
// persistence.
func (p *Persister) ShouldPersist(name string) bool {
	return p.toPersist[name]
}

// Observer returns a broker observer that persists each selected
// component as it completes.
func (p *Persister) Observer() broker.Observer {
	return func(ctx context.Context, ev broker.CompletionEvent, _ *broker.Broker) {
		if !p.toPersist[ev.Name] {
			return
		}
		p.persist(ev)
	}
}

// persist writes one component document. Failures are logged and the
// partial document is removed; they never abort the run.
func (p *Persister) persist(ev broker.CompletionEvent) {
	var filters []string
	if c, ok := p.registry.Get(ev.Name); ok {
		filters = c.Filters
	}
	p.settle(ev.Value, filters)

	doc := Document{
		Name:    ev.Name,
		Elapsed: ev.Elapsed.Seconds(),
		Results: ev.Value,
	}
	if ev.Err != nil {
		doc.Errors = []string{ev.Err.Error()}
	}

	path := filepath.Join(p.root, DataDir, ev.Name+"."+p.format.Ext())
	content, err := serializer.Marshal(p.format, doc)
	if err == nil {
		err = os.WriteFile(path, content, 0o600)
	}
	if err != nil {
		slog.Error("unable to persist component document",
			slog.String("component", ev.Name),
			slog.String("path", path),
			slog.String("error", err.Error()))
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("unable to remove partial document",
				slog.String("path", path),
				slog.String("error", rmErr.Error()))
		}
		documentsFailed.Inc()
		return
	}
	documentsPersisted.Inc()
}

// settle decides, for every file provider in a result, whether its
// content is serialized inline or relocated into the raw data area.
func (p *Persister) settle(value any, filters []string) {
	switch v := value.(type) {
	case *provider.FileProvider:
		p.settleProvider(v, filters)
	case []*provider.FileProvider:
		for _, fp := range v {
			p.settleProvider(fp, filters)
		}
	case []any:
		for _, item := range v {
			p.settle(item, filters)
		}
	case map[string]any:
		for _, item := range v {
			p.settle(item, filters)
		}
	}
}

func (p *Persister) settleProvider(fp *provider.FileProvider, filters []string) {
	if fp == nil || fp.Loaded() || fp.RelocatedTo() != "" {
		return
	}

	size, err := fp.Size()
	if err != nil {
		slog.Warn("unable to stat collected file",
			slog.String("path", fp.Path()),
			slog.String("error", err.Error()))
		return
	}

	if p.maxSize <= 0 || size <= p.maxSize {
		if _, err := fp.Content(); err != nil {
			slog.Warn("unable to load collected file",
				slog.String("path", fp.Path()),
				slog.String("error", err.Error()))
		}
		return
	}

	rel := filepath.Join(RawDataDir, fp.RelativePath())
	dst := filepath.Join(p.root, rel)
	written, err := copyFiltered(fp.Path(), dst, filters)
	if err != nil {
		slog.Warn("unable to relocate collected file",
			slog.String("path", fp.Path()),
			slog.String("error", err.Error()))
		return
	}
	fp.MarkRelocated(rel)
	filesRelocated.Inc()
	bytesRelocated.Add(float64(written))

	slog.Debug("relocated oversized file",
		slog.String("path", fp.Path()),
		slog.Int64("size", size),
		slog.String("dest", rel))
}

// copyFiltered streams src to dst line by line, returning the number of
// bytes written. With filters present, only lines containing at least one
// filter substring are kept, so an oversized file contributes just its
// relevant lines to the archive.
func copyFiltered(src, dst string, filters []string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}

	if len(filters) == 0 {
		written, err := io.Copy(out, in)
		if err != nil {
			out.Close()
			return written, err
		}
		return written, out.Close()
	}

	var written int64
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, f := range filters {
			if strings.Contains(line, f) {
				n, err := w.WriteString(line + "\n")
				if err != nil {
					out.Close()
					return written, err
				}
				written += int64(n)
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		out.Close()
		return written, err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return written, err
	}
	return written, out.Close()
}
