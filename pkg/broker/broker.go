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

// Package broker holds the mutable state of one collection run: component
// values, execution timings, captured failures, and the observers notified
// as each component completes. One Broker exists per run.
package broker

import (
	"context"
	"sync"
	"time"
)

// CompletionEvent is published to observers after a component resolves.
type CompletionEvent struct {
	// Name is the component identifier.
	Name string
	// Value is the produced result; nil when the component failed.
	Value any
	// Err is the captured failure; nil on success.
	Err error
	// Elapsed is the component's execution duration.
	Elapsed time.Duration
}

// Observer is notified synchronously after each component completes,
// before the scheduler proceeds. Observers may read any already-recorded
// state from the Broker.
type Observer func(ctx context.Context, ev CompletionEvent, b *Broker)

// Broker is the run-scoped store of results, timings, and failures.
// It is safe for concurrent use so independent components may complete
// from multiple goroutines.
type Broker struct {
	mu        sync.RWMutex
	values    map[string]any
	elapsed   map[string]time.Duration
	failures  map[string]error
	observers []Observer
}

// New creates an empty Broker.
func New() *Broker {
	return &Broker{
		values:   make(map[string]any),
		elapsed:  make(map[string]time.Duration),
		failures: make(map[string]error),
	}
}

// AddObserver registers an observer. Observers run in registration order.
func (b *Broker) AddObserver(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Complete records a component's outcome and publishes the completion
// event to every observer, in registration order, before returning.
// The record is visible to observers and to any subsequent Get; callers
// must not schedule dependents until Complete returns, which provides the
// publish-happens-before-dependent-read guarantee.
func (b *Broker) Complete(ctx context.Context, name string, value any, err error, elapsed time.Duration) {
	b.mu.Lock()
	if err != nil {
		b.failures[name] = err
	} else {
		b.values[name] = value
	}
	b.elapsed[name] = elapsed
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	ev := CompletionEvent{Name: name, Value: value, Err: err, Elapsed: elapsed}
	for _, o := range observers {
		o(ctx, ev, b)
	}
}

// Get returns the value produced by the named component. ok is false if
// the component has not completed or failed.
func (b *Broker) Get(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[name]
	return v, ok
}

// Failure returns the captured failure for the named component, if any.
func (b *Broker) Failure(name string) (error, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	err, ok := b.failures[name]
	return err, ok
}

// Elapsed returns the execution duration recorded for the component.
func (b *Broker) Elapsed(name string) (time.Duration, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.elapsed[name]
	return d, ok
}

// Completed reports whether the component finished, successfully or not.
func (b *Broker) Completed(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, hasValue := b.values[name]
	_, hasFailure := b.failures[name]
	return hasValue || hasFailure
}

// Values returns a copy of the value map.
func (b *Broker) Values() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]any, len(b.values))
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Failures returns a copy of the failure map.
func (b *Broker) Failures() map[string]error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]error, len(b.failures))
	for k, v := range b.failures {
		out[k] = v
	}
	return out
}
