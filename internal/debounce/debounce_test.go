package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCoalesces(t *testing.T) {
	d := New(100 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Schedule(func() {
			calls.Add(1)
			last.Store(n)
		})
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestCancel(t *testing.T) {
	d := New(20 * time.Millisecond)
	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	require.True(t, d.Pending())
	d.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, d.Pending())
}

func TestFlushRunsPendingOnce(t *testing.T) {
	d := New(time.Hour)
	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	assert.True(t, d.Flush())
	assert.False(t, d.Flush())
	assert.Equal(t, int32(1), calls.Load())
}

func TestDefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(0).Interval())
	assert.Equal(t, 300*time.Millisecond, DefaultInterval)
}

func TestScheduleNilIgnored(t *testing.T) {
	d := New(time.Millisecond)
	d.Schedule(nil)
	assert.False(t, d.Pending())
}
