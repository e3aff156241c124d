package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	was := !f.stopped
	f.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(_ time.Duration, fn func()) stopper {
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every timer that was not stopped, like a clock advancing past them.
func (c *fakeClock) fireAll() {
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func newFakeDebouncer(writes *[]int) (*Debouncer[int], *fakeClock) {
	clock := &fakeClock{}
	d := NewDebouncer(time.Second, func(v int) { *writes = append(*writes, v) })
	d.afterFunc = clock.afterFunc
	return d, clock
}

func TestDebouncerWritesLatestOnce(t *testing.T) {
	var writes []int
	d, clock := newFakeDebouncer(&writes)
	d.Schedule(1)
	d.Schedule(2)
	d.Schedule(3)
	assert.True(t, d.Pending())
	clock.fireAll()
	assert.Equal(t, []int{3}, writes)
	assert.False(t, d.Pending())
	clock.fireAll()
	assert.Equal(t, []int{3}, writes)
}

func TestDebouncerStaleTimerIsIgnored(t *testing.T) {
	var writes []int
	d, clock := newFakeDebouncer(&writes)
	d.Schedule(1)
	stale := clock.timers[0]
	d.Schedule(2)
	// the replaced timer may still run; it must not write the old value
	stale.fn()
	assert.Empty(t, writes)
	clock.fireAll()
	assert.Equal(t, []int{2}, writes)
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	var writes []int
	d, clock := newFakeDebouncer(&writes)
	d.Schedule(1)
	d.Cancel()
	clock.fireAll()
	assert.Empty(t, writes)

	d.Schedule(2)
	d.Flush()
	assert.Equal(t, []int{2}, writes)
	clock.fireAll()
	assert.Equal(t, []int{2}, writes)
	d.Flush()
	assert.Equal(t, []int{2}, writes)
}

func TestDebouncerStopFlushesAndRefuses(t *testing.T) {
	var writes []int
	d, clock := newFakeDebouncer(&writes)
	d.Schedule(7)
	d.Stop()
	d.Schedule(8)
	clock.fireAll()
	assert.Equal(t, []int{7}, writes)
}

func TestDebouncerRealTimer(t *testing.T) {
	defer goleak.VerifyNone(t)
	var mu sync.Mutex
	var writes []string
	done := make(chan struct{})
	d := NewDebouncer(10*time.Millisecond, func(v string) {
		mu.Lock()
		writes = append(writes, v)
		mu.Unlock()
		close(done)
	})
	d.Schedule("a")
	d.Schedule("b")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced write never happened")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"b"}, writes)
}
