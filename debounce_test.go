package railkit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestDebouncerRunsLast(t *testing.T) {
	defer goleak.VerifyNone(t)
	d := NewDebouncer(30 * time.Millisecond)
	var mu sync.Mutex
	var ran []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		d.Schedule(func() {
			mu.Lock()
			ran = append(ran, i)
			mu.Unlock()
			close(done)
		})
		time.Sleep(time.Millisecond)
	}
	assert.True(t, d.Pending())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced function did not run")
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{4}, ran)
	assert.False(t, d.Pending())
}

func TestDebouncerStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	d := NewDebouncer(20 * time.Millisecond)
	assert.False(t, d.Stop())
	ran := make(chan struct{}, 1)
	d.Schedule(func() { ran <- struct{}{} })
	assert.True(t, d.Stop())
	assert.False(t, d.Pending())
	select {
	case <-ran:
		t.Fatal("stopped function ran")
	case <-time.After(60 * time.Millisecond):
	}
}
