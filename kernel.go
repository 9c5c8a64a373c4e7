package railkit

import (
	"context"
	"sync"

	"github.com/soypat/railkit/carve"
	"github.com/soypat/railkit/solid"
	"golang.org/x/sync/singleflight"
)

// Carver drills holes through a mesh.
type Carver interface {
	Carve(ctx context.Context, target *solid.Mesh, holes []carve.Hole, cfg carve.Config) (*solid.Mesh, error)
}

// CarveFunc adapts a function to the Carver interface.
type CarveFunc func(ctx context.Context, target *solid.Mesh, holes []carve.Hole, cfg carve.Config) (*solid.Mesh, error)

// Carve calls f.
func (f CarveFunc) Carve(ctx context.Context, target *solid.Mesh, holes []carve.Hole, cfg carve.Config) (*solid.Mesh, error) {
	return f(ctx, target, holes, cfg)
}

// Kernel is the lazily initialized boolean backend. Concurrent first
// callers share one initialization; a successful backend is memoized and
// a failed one is retried on the next call.
type Kernel struct {
	init  func() (Carver, error)
	group singleflight.Group

	mu     sync.Mutex
	carver Carver
}

// NewKernel returns a kernel backed by the SDF hole carver.
func NewKernel() *Kernel {
	return NewKernelFunc(func() (Carver, error) {
		return CarveFunc(carve.Carve), nil
	})
}

// NewKernelFunc returns a kernel whose backend is built by init on first
// use.
func NewKernelFunc(init func() (Carver, error)) *Kernel {
	return &Kernel{init: init}
}

func (k *Kernel) loaded() Carver {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.carver
}

// Get returns the backend, initializing it if needed. Waiting callers
// return early when ctx is done; the initialization itself keeps running
// for the other callers.
func (k *Kernel) Get(ctx context.Context) (Carver, error) {
	if c := k.loaded(); c != nil {
		return c, nil
	}
	ch := k.group.DoChan("kernel", func() (any, error) {
		if c := k.loaded(); c != nil {
			return c, nil
		}
		c, err := k.init()
		if err != nil {
			return nil, err
		}
		k.mu.Lock()
		k.carver = c
		k.mu.Unlock()
		return c, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Carver), nil
	}
}

// Carve drills holes with the backend.
func (k *Kernel) Carve(ctx context.Context, target *solid.Mesh, holes []carve.Hole, cfg carve.Config) (*solid.Mesh, error) {
	c, err := k.Get(ctx)
	if err != nil {
		return nil, err
	}
	return c.Carve(ctx, target, holes, cfg)
}
