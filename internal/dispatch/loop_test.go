package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoopRunsPostedTasksInOrder verifies sequential single-consumer execution.
func TestLoopRunsPostedTasksInOrder(t *testing.T) {
	loop := NewLoop(16)
	loop.Start()
	defer loop.Close()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}

	loop.Do(func() {})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

// TestLoopDoBlocksUntilExecuted verifies synchronous hand-off semantics.
func TestLoopDoBlocksUntilExecuted(t *testing.T) {
	loop := NewLoop(1)
	loop.Start()
	defer loop.Close()

	ran := false
	loop.Do(func() { ran = true })
	assert.True(t, ran)
}

// TestLoopPostAfterDeliversOnLoop verifies timer callbacks are marshalled.
func TestLoopPostAfterDeliversOnLoop(t *testing.T) {
	loop := NewLoop(4)
	loop.Start()
	defer loop.Close()

	fired := make(chan struct{})
	loop.PostAfter(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never ran")
	}
}

// TestLoopPostAfterCloseIsDropped verifies shutdown drops new messages.
func TestLoopPostAfterCloseIsDropped(t *testing.T) {
	loop := NewLoop(4)
	loop.Start()
	loop.Close()

	assert.False(t, loop.Post(func() { t.Error("task ran after close") }))
	time.Sleep(20 * time.Millisecond)
}
