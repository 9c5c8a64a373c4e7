package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/soypat/railkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFullRunnerFinishesInFlight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var (
		mu      sync.Mutex
		ran     []float64
		errs    []error
		started = make(chan struct{})
		release = make(chan struct{})
	)
	r := newFullRunner(context.Background(), func(ctx context.Context, p railkit.Parameters) error {
		mu.Lock()
		first := len(ran) == 0
		ran = append(ran, p.Length)
		mu.Unlock()
		if first {
			close(started)
			<-release
		}
		mu.Lock()
		errs = append(errs, ctx.Err())
		mu.Unlock()
		return nil
	})
	requested := func() int {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.seq
	}

	go r.run(railkit.Parameters{Length: 1})
	<-started
	// Two edits arrive while the first generation runs. Only the latest
	// runs, after the first one completes.
	go r.run(railkit.Parameters{Length: 2})
	require.Eventually(t, func() bool { return requested() == 2 }, time.Second, time.Millisecond)
	go r.run(railkit.Parameters{Length: 3})
	require.Eventually(t, func() bool { return requested() == 3 }, time.Second, time.Millisecond)
	close(release)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) == 2
	}, time.Second, time.Millisecond)
	r.stop()
	assert.Equal(t, []float64{1, 3}, ran)
	assert.Equal(t, []error{nil, nil}, errs, "a generation in flight was canceled")

	// Nothing runs once stopped.
	r.run(railkit.Parameters{Length: 4})
	assert.Len(t, ran, 2)
}
