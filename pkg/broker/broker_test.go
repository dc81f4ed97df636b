package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerComplete(t *testing.T) {
	b := New()
	ctx := context.Background()

	b.Complete(ctx, "pkg.x", "value", nil, 10*time.Millisecond)

	v, ok := b.Get("pkg.x")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	d, ok := b.Elapsed("pkg.x")
	require.True(t, ok)
	assert.Equal(t, 10*time.Millisecond, d)

	_, failed := b.Failure("pkg.x")
	assert.False(t, failed)
	assert.True(t, b.Completed("pkg.x"))
}

func TestBrokerCompleteFailure(t *testing.T) {
	b := New()
	boom := errors.New("boom")

	b.Complete(context.Background(), "pkg.x", nil, boom, time.Millisecond)

	_, ok := b.Get("pkg.x")
	assert.False(t, ok, "failed components record no value")

	err, ok := b.Failure("pkg.x")
	require.True(t, ok)
	assert.Equal(t, boom, err)
	assert.True(t, b.Completed("pkg.x"))
}

func TestBrokerObserverOrder(t *testing.T) {
	b := New()

	var calls []string
	b.AddObserver(func(_ context.Context, ev CompletionEvent, _ *Broker) {
		calls = append(calls, "first:"+ev.Name)
	})
	b.AddObserver(func(_ context.Context, ev CompletionEvent, _ *Broker) {
		calls = append(calls, "second:"+ev.Name)
	})

	b.Complete(context.Background(), "a", 1, nil, 0)
	b.Complete(context.Background(), "b", 2, nil, 0)

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, calls)
}

func TestBrokerObserverSeesRecordedState(t *testing.T) {
	b := New()

	b.AddObserver(func(_ context.Context, ev CompletionEvent, br *Broker) {
		// The record must be visible before the observer is invoked.
		v, ok := br.Get(ev.Name)
		assert.True(t, ok)
		assert.Equal(t, ev.Value, v)
	})

	b.Complete(context.Background(), "a", "done", nil, 0)
}

func TestBrokerConcurrentCompletion(t *testing.T) {
	b := New()

	var wg sync.WaitGroup
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Complete(context.Background(), name, name, nil, 0)
		}()
	}
	wg.Wait()

	assert.Len(t, b.Values(), len(names))
	assert.Empty(t, b.Failures())
}
