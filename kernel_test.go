package railkit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soypat/railkit/carve"
	"github.com/soypat/railkit/solid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func identityCarver() Carver {
	return CarveFunc(func(ctx context.Context, target *solid.Mesh, holes []carve.Hole, cfg carve.Config) (*solid.Mesh, error) {
		return target.Clone(), nil
	})
}

func TestKernelInitOnce(t *testing.T) {
	defer goleak.VerifyNone(t)
	var calls atomic.Int32
	release := make(chan struct{})
	k := NewKernelFunc(func() (Carver, error) {
		calls.Add(1)
		<-release
		return identityCarver(), nil
	})

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Carver, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := k.Get(context.Background())
			assert.NoError(t, err)
			results[i] = c
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, c := range results {
		assert.NotNil(t, c)
	}
	// Memoized: no new initialization.
	_, err := k.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestKernelRetriesFailedInit(t *testing.T) {
	defer goleak.VerifyNone(t)
	errBoom := errors.New("backend unavailable")
	var calls int
	k := NewKernelFunc(func() (Carver, error) {
		calls++
		if calls == 1 {
			return nil, errBoom
		}
		return identityCarver(), nil
	})
	_, err := k.Get(context.Background())
	assert.ErrorIs(t, err, errBoom)
	c, err := k.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, 2, calls)
}

func TestKernelWaitCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)
	release := make(chan struct{})
	k := NewKernelFunc(func() (Carver, error) {
		<-release
		return identityCarver(), nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := k.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The initialization outlives the canceled caller.
	close(release)
	c, err := k.Get(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, c)
}
