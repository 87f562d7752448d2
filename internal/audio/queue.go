package audio

import "sync"

// ChunkQueue is an unbounded FIFO of PCM byte chunks. A single producer
// pushes capture frames; a single consumer pops them for windowing.
// Close wakes any blocked Pop and makes further pushes no-ops.
type ChunkQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	chunks [][]byte
	closed bool
}

// NewChunkQueue returns an empty open queue.
func NewChunkQueue() *ChunkQueue {
	q := &ChunkQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends a chunk. Pushes after Close are discarded.
func (q *ChunkQueue) Push(chunk []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.chunks = append(q.chunks, chunk)
	q.cond.Signal()
}

// Pop removes and returns the oldest chunk, blocking while the queue is
// empty. It returns ok=false once the queue is closed and drained.
func (q *ChunkQueue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.chunks) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.chunks) == 0 {
		return nil, false
	}
	chunk := q.chunks[0]
	q.chunks = q.chunks[1:]
	return chunk, true
}

// TryPop removes and returns the oldest chunk without blocking. It
// returns ok=false when the queue is empty.
func (q *ChunkQueue) TryPop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.chunks) == 0 {
		return nil, false
	}
	chunk := q.chunks[0]
	q.chunks = q.chunks[1:]
	return chunk, true
}

// Len returns the number of queued chunks.
func (q *ChunkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks)
}

// Close marks the queue closed and wakes blocked consumers. Already
// queued chunks remain poppable.
func (q *ChunkQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
