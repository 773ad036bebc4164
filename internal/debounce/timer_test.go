package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_FiresOnceAfterDelay(t *testing.T) {
	timer := New(10 * time.Millisecond)
	var calls atomic.Int32

	timer.Arm(func() { calls.Add(1) })

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, timer.Pending())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTimer_RearmReplacesPendingCallback(t *testing.T) {
	timer := New(20 * time.Millisecond)
	var first, second atomic.Int32

	timer.Arm(func() { first.Add(1) })
	timer.Arm(func() { second.Add(1) })

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestTimer_FlushRunsSynchronously(t *testing.T) {
	timer := New(time.Hour)
	ran := false

	timer.Arm(func() { ran = true })

	assert.True(t, timer.Flush())
	assert.True(t, ran)
	assert.False(t, timer.Pending())
	assert.False(t, timer.Flush(), "nothing left to flush")
}

func TestTimer_DisarmDropsCallback(t *testing.T) {
	timer := New(10 * time.Millisecond)
	var calls atomic.Int32

	timer.Arm(func() { calls.Add(1) })
	timer.Disarm()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, timer.Flush())
}

func TestTimer_StopIgnoresLaterArm(t *testing.T) {
	timer := New(5 * time.Millisecond)
	var calls atomic.Int32

	timer.Arm(func() { calls.Add(1) })
	timer.Stop()
	timer.Arm(func() { calls.Add(1) })

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, timer.Pending())
}
