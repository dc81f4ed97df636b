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

// Package collect orchestrates one collection run: it assembles the
// registry from the manifest, executes the eligible components, persists
// their documents, and packs the result into an archive.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/NVIDIA/triage/pkg/archive"
	"github.com/NVIDIA/triage/pkg/broker"
	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/execution"
	"github.com/NVIDIA/triage/pkg/manifest"
	"github.com/NVIDIA/triage/pkg/persist"
	"github.com/NVIDIA/triage/pkg/scheduler"
)

// MarkerFile identifies a run directory and records its provenance.
const MarkerFile = "triage_archive.txt"

// Options tune a collection run.
type Options struct {
	// OutPath is the directory the run directory (and archive) is
	// created in. Empty means the current directory.
	OutPath string
	// Workers enables parallel component execution when above 1.
	Workers int
	// Archive controls whether the run directory is packed into a
	// tarball. When false the run directory is left as-is.
	Archive bool
	// Version is recorded in the run marker.
	Version string
}

// Run executes a full collection according to the manifest and returns
// the path of the produced archive (or run directory when archiving is
// disabled). Component failures are contained and recorded in their
// documents; Run fails only when the run cannot be set up, is canceled,
// or the archive cannot be produced.
func Run(ctx context.Context, m *manifest.Manifest, opts Options) (string, error) {
	start := time.Now()
	runID := uuid.NewString()

	reg := collector.NewRegistry()
	reg.ApplyDefault(m.DefaultComponentEnabled)

	if err := collector.LoadPackages(reg, m.Packages); err != nil {
		return "", err
	}
	reg.ApplyOverrides(m.Overrides())

	host, err := execution.NewFromClass(m.Context.Class, m.Context.Args)
	if err != nil {
		return "", err
	}

	root, err := makeRunDir(opts.OutPath, runID, opts.Version)
	if err != nil {
		return "", err
	}

	persister, err := persist.New(root, reg, m.PersistRules(), m.MaxSerializableFileSize, m.Format())
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "unable to prepare run directory", err)
	}

	b := broker.New()
	b.AddObserver(persister.Observer())

	sched := scheduler.New(reg, host,
		scheduler.WithBlacklist(m.BlacklistFilter()),
		scheduler.WithWorkers(opts.Workers))

	slog.Info("collection starting",
		slog.String("run_id", runID),
		slog.String("dir", root),
		slog.Int("components", reg.Count()))

	runErr := sched.Run(ctx, b)
	if runErr != nil && errors.HasCode(runErr, errors.ErrCodeInvalidRequest) {
		// Nothing executed; the empty run directory has no value.
		if rmErr := os.RemoveAll(root); rmErr != nil {
			slog.Warn("unable to remove run directory", slog.String("error", rmErr.Error()))
		}
		return "", runErr
	}

	failures := b.Failures()
	elapsed := time.Since(start)
	runDuration.Observe(elapsed.Seconds())
	slog.Info("collection finished",
		slog.String("run_id", runID),
		slog.Int("completed", len(b.Values())),
		slog.Int("failed", len(failures)),
		slog.Duration("elapsed", elapsed))

	if !opts.Archive {
		return root, runErr
	}

	path, err := archive.Create(ctx, root)
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	if runErr != nil {
		runsTotal.WithLabelValues("canceled").Inc()
	} else {
		runsTotal.WithLabelValues("success").Inc()
	}
	return path, runErr
}

// makeRunDir creates the run's working directory and writes the marker
// that identifies it as a collection archive.
func makeRunDir(outPath, runID, version string) (string, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	name := fmt.Sprintf("triage-%s-%s", hostname, time.Now().UTC().Format("20060102150405"))
	root := filepath.Join(outPath, name)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "unable to create run directory", err)
	}

	marker := fmt.Sprintf("run_id: %s\nhostname: %s\nversion: %s\nstarted: %s\n",
		runID, hostname, version, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(filepath.Join(root, MarkerFile), []byte(marker), 0o600); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, "unable to write run marker", err)
	}
	return root, nil
}
