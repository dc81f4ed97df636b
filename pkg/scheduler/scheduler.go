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

// Package scheduler executes the eligible components of a registry
// exactly once each, in dependency order, isolating per-component
// failures so a single bad collector never aborts the run.
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/triage/pkg/broker"
	"github.com/NVIDIA/triage/pkg/collector"
	"github.com/NVIDIA/triage/pkg/errors"
	"github.com/NVIDIA/triage/pkg/execution"
)

// Scheduler drives one collection run over a registry.
type Scheduler struct {
	registry  *collector.Registry
	host      execution.Context
	blacklist *collector.Blacklist
	workers   int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithBlacklist excludes blacklisted commands and files at schedule time.
func WithBlacklist(b *collector.Blacklist) Option {
	return func(s *Scheduler) {
		s.blacklist = b
	}
}

// WithWorkers enables parallel execution of independent components with
// up to n workers. Values below 2 keep the default sequential mode, which
// guarantees a deterministic component order.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		s.workers = n
	}
}

// New creates a Scheduler for the given registry and execution context.
func New(reg *collector.Registry, host execution.Context, opts ...Option) *Scheduler {
	s := &Scheduler{
		registry: reg,
		host:     host,
		workers:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes every enabled, non-blacklisted component exactly once in
// an order that respects dependencies, recording each outcome in the
// broker and publishing it to observers before the next component starts
// (or, in parallel mode, before any dependent starts). Component failures
// are contained; Run itself fails only on a dependency cycle (detected
// before any execution) or context cancellation.
func (s *Scheduler) Run(ctx context.Context, b *broker.Broker) error {
	eligible := s.eligible()

	order, err := topoOrder(eligible)
	if err != nil {
		return err
	}

	slog.Debug("scheduling components",
		slog.Int("eligible", len(order)),
		slog.Int("registered", s.registry.Count()),
		slog.Int("workers", s.workers))

	if s.workers > 1 {
		return s.runParallel(ctx, b, eligible, order)
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.runOne(ctx, eligible[name], b)
	}
	return nil
}

// eligible returns the components that are enabled and not blacklisted,
// keyed by name. Blacklisting is evaluated here, at schedule time, so it
// composes with enablement changes made after registration.
func (s *Scheduler) eligible() map[string]*collector.Component {
	out := make(map[string]*collector.Component)
	for _, c := range s.registry.Enabled() {
		if s.blacklist != nil && s.blacklist.Blocks(c) {
			slog.Debug("component blacklisted", slog.String("component", c.Name))
			continue
		}
		out[c.Name] = c
	}
	return out
}

// topoOrder returns a dependency-respecting order over the eligible
// components. Dependencies outside the eligible set are ignored: the
// dependent still runs and sees a nil input. Iteration is over sorted
// names so the order is deterministic for a given registry.
func topoOrder(eligible map[string]*collector.Component) ([]string, error) {
	names := make([]string, 0, len(eligible))
	for n := range eligible {
		names = append(names, n)
	}
	sort.Strings(names)

	var (
		result  []string
		visited = make(map[string]bool)
		inPath  = make(map[string]bool)
	)

	var visit func(string) error
	visit = func(node string) error {
		if inPath[node] {
			return errors.Newf(errors.ErrCodeInvalidRequest, "dependency cycle through component %s", node)
		}
		if visited[node] {
			return nil
		}
		inPath[node] = true

		deps := make([]string, len(eligible[node].Deps))
		copy(deps, eligible[node].Deps)
		sort.Strings(deps)
		for _, dep := range deps {
			if _, ok := eligible[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		visited[node] = true
		inPath[node] = false
		result = append(result, node)
		return nil
	}

	for _, node := range names {
		if !visited[node] {
			if err := visit(node); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// runOne executes a single component and records its outcome. Failures,
// including panics and timeouts, are captured locally.
func (s *Scheduler) runOne(ctx context.Context, c *collector.Component, b *broker.Broker) {
	inputs := make(map[string]any, len(c.Deps))
	for _, dep := range c.Deps {
		// A dependency that failed or was never eligible contributes nil;
		// the component decides whether that is fatal for it.
		v, _ := b.Get(dep)
		inputs[dep] = v
	}

	runCtx := ctx
	cancel := func() {}
	timeout := c.TimeoutFor(s.host)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	start := time.Now()
	value, err := s.invoke(runCtx, c, inputs)
	elapsed := time.Since(start)
	cancel()

	status := "success"
	if err != nil {
		if timeout > 0 && stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			status = "timeout"
			err = errors.WrapWithContext(errors.ErrCodeComponentTimeout,
				"component exceeded allotted time", err,
				map[string]any{"component": c.Name, "timeout": timeout.String()})
		} else {
			status = "error"
			err = errors.Wrap(errors.ErrCodeComponentExecution, "component "+c.Name+" failed", err)
		}
		slog.Warn("component failed",
			slog.String("component", c.Name),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()))
	} else {
		slog.Debug("component completed",
			slog.String("component", c.Name),
			slog.Duration("elapsed", elapsed))
	}

	componentDuration.WithLabelValues(c.Name).Observe(elapsed.Seconds())
	componentTotal.WithLabelValues(status).Inc()

	b.Complete(ctx, c.Name, value, err, elapsed)
}

// invoke calls the component's run function, converting a panic into an
// ordinary error so one misbehaving collector cannot take down the run.
func (s *Scheduler) invoke(ctx context.Context, c *collector.Component, inputs map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Run(ctx, s.host, inputs)
}

// runParallel executes independent components concurrently with a fixed
// worker pool. A component is handed to a worker only after all of its
// eligible dependencies have completed (and their completion events were
// published), preserving the publish-happens-before-dependent-read
// guarantee of the sequential mode.
func (s *Scheduler) runParallel(ctx context.Context, b *broker.Broker, eligible map[string]*collector.Component, order []string) error {
	indegree := make(map[string]int, len(eligible))
	dependents := make(map[string][]string)
	for name, c := range eligible {
		n := 0
		for _, dep := range c.Deps {
			if _, ok := eligible[dep]; ok {
				n++
				dependents[dep] = append(dependents[dep], name)
			}
		}
		indegree[name] = n
	}

	// Seed from the topological order so the initial dispatch is
	// deterministic even though completion order is not.
	var queue []string
	for _, name := range order {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	work := make(chan *collector.Component)
	done := make(chan string)

	g, gctx := errgroup.WithContext(ctx)
	for range s.workers {
		g.Go(func() error {
			for c := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				s.runOne(gctx, c, b)
				select {
				case done <- c.Name:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	pending := len(eligible)
	for pending > 0 {
		var (
			sendCh chan *collector.Component
			next   *collector.Component
		)
		if len(queue) > 0 {
			sendCh = work
			next = eligible[queue[0]]
		}

		select {
		case sendCh <- next:
			queue = queue[1:]
		case name := <-done:
			pending--
			for _, child := range dependents[name] {
				indegree[child]--
				if indegree[child] == 0 {
					queue = append(queue, child)
				}
			}
		case <-gctx.Done():
			close(work)
			_ = g.Wait()
			return gctx.Err()
		}
	}

	close(work)
	return g.Wait()
}
