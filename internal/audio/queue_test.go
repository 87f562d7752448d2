package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkQueueFIFO(t *testing.T) {
	q := NewChunkQueue()
	q.Push([]byte{1})
	q.Push([]byte{2})
	q.Push([]byte{3})

	assert.Equal(t, 3, q.Len())

	for _, want := range []byte{1, 2, 3} {
		chunk, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, []byte{want}, chunk)
	}
	assert.Equal(t, 0, q.Len())
}

func TestChunkQueueTryPopEmpty(t *testing.T) {
	q := NewChunkQueue()
	chunk, ok := q.TryPop()
	assert.False(t, ok)
	assert.Nil(t, chunk)
}

func TestChunkQueuePopBlocksUntilPush(t *testing.T) {
	q := NewChunkQueue()
	got := make(chan []byte, 1)

	go func() {
		chunk, ok := q.Pop()
		if !ok {
			chunk = nil
		}
		got <- chunk
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push([]byte{42})

	select {
	case chunk := <-got:
		assert.Equal(t, []byte{42}, chunk)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestChunkQueueCloseUnblocksPop(t *testing.T) {
	q := NewChunkQueue()
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not return after Close")
	}
}

func TestChunkQueueDrainsAfterClose(t *testing.T) {
	q := NewChunkQueue()
	q.Push([]byte{1})
	q.Close()

	// Already queued chunks stay poppable, new pushes are discarded.
	q.Push([]byte{2})

	chunk, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, []byte{1}, chunk)

	_, ok = q.Pop()
	assert.False(t, ok)
}
