package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndRecentOrdering(t *testing.T) {
	h := New(10)
	base := time.Now()
	for i := 0; i < 3; i++ {
		h.Add(Entry{Command: "cmd", FullLine: "cmd", Timestamp: base.Add(time.Duration(i) * time.Second)})
	}
	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].Timestamp.After(recent[1].Timestamp))
}

func TestCapacityEvictsExactlyOneOldest(t *testing.T) {
	h := New(3)
	h.Add(Entry{Command: "a"})
	h.Add(Entry{Command: "b"})
	h.Add(Entry{Command: "c"})
	require.Equal(t, 3, h.Len())

	h.Add(Entry{Command: "d"})
	require.Equal(t, 3, h.Len())

	all := h.All()
	cmds := []string{all[0].Command, all[1].Command, all[2].Command}
	assert.Equal(t, []string{"d", "c", "b"}, cmds) // "a" evicted
}

func TestLastReturnsMostRecentlyAdded(t *testing.T) {
	h := New(5)
	_, ok := h.Last()
	assert.False(t, ok)

	h.Add(Entry{Command: "x"})
	h.Add(Entry{Command: "y"})
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "y", last.Command)
}

func TestDefaultCapacityFallback(t *testing.T) {
	h := New(0)
	assert.Equal(t, 100, h.capacity)
}

func TestConcurrentReadersDuringWrite(t *testing.T) {
	h := New(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Add(Entry{Command: "cmd"})
		}(i)
	}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Recent(5)
			_ = h.All()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.Len())
}
