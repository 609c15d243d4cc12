package state

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebounceCoalescesBurst(t *testing.T) {
	d := NewDebouncer(60 * time.Millisecond)
	defer d.Stop()

	var calls int32
	for i := 0; i < 5; i++ {
		d.Schedule("k", func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, time.Second, 10*time.Millisecond)

	// and it stays at exactly one
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebounceTrailingEdge(t *testing.T) {
	d := NewDebouncer(80 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Bool
	d.Schedule("k", func() { fired.Store(true) })

	// well inside the window nothing may have fired yet
	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load())

	require.Eventually(t, fired.Load, time.Second, 10*time.Millisecond)
}

func TestDebounceSeparateKeys(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var a, b atomic.Bool
	d.Schedule("a", func() { a.Store(true) })
	d.Schedule("b", func() { b.Store(true) })

	require.Eventually(t, func() bool { return a.Load() && b.Load() }, time.Second, 10*time.Millisecond)
}

func TestDebounceCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Bool
	d.Schedule("k", func() { fired.Store(true) })
	d.Cancel("k")

	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
}
