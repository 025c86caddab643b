package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerManager_OneShot(t *testing.T) {
	m := NewTimerManager()
	defer m.Stop()

	fired := make(chan struct{}, 1)
	m.AddTimer(10*time.Millisecond, 0, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestTimerManager_Repeating(t *testing.T) {
	m := NewTimerManager()
	defer m.Stop()

	var count atomic.Int32
	id := m.AddTimer(0, 50*time.Millisecond, func() { count.Add(1) })

	require.Eventually(t, func() bool { return count.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	m.RemoveTimer(id)
	assert.Zero(t, m.Len())
}

func TestTimerManager_RemoveBeforeFire(t *testing.T) {
	m := NewTimerManager()
	defer m.Stop()

	var fired atomic.Bool
	id := m.AddTimer(300*time.Millisecond, 0, func() { fired.Store(true) })
	m.RemoveTimer(id)

	time.Sleep(500 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestTimerManager_Stop(t *testing.T) {
	m := NewTimerManager()

	var fired atomic.Bool
	m.AddTimer(200*time.Millisecond, 0, func() { fired.Store(true) })
	m.Stop()
	m.Stop()

	time.Sleep(400 * time.Millisecond)
	assert.False(t, fired.Load())
}
