package audio

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rabble-ai/rabble/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource replays a fixed set of frames, then returns io.EOF.
type fakeSource struct {
	mu     sync.Mutex
	frames []Frame
	closed bool
}

func (s *fakeSource) Read() (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	frame := s.frames[0]
	s.frames = s.frames[1:]
	return frame, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func repeatedFrames(n, size int) []Frame {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = make(Frame, size)
		for j := range frames[i] {
			frames[i][j] = 1000
		}
	}
	return frames
}

func TestDistributorDropsAnimationFramesWhenFull(t *testing.T) {
	src := &fakeSource{frames: repeatedFrames(5, 4)}
	queue := NewChunkQueue()
	ready := NewReadySignal()
	d := NewDistributor(src, queue, ready, DistributorConfig{
		GainFactor:        1.0,
		AnimationCapacity: 2,
	}, logger.NewNop())

	require.NoError(t, d.Start())

	// Nobody consumes the animation channel, so only the first two
	// frames fit and the rest are dropped.
	require.Eventually(t, func() bool {
		return d.FramesRead() == 5
	}, time.Second, 5*time.Millisecond)
	d.Stop()

	assert.Equal(t, int64(3), d.FramesDropped())
	assert.Equal(t, 2, len(d.Animation()))
}

func TestDistributorGatesTranscriptionOnReady(t *testing.T) {
	src := &fakeSource{frames: repeatedFrames(3, 4)}
	queue := NewChunkQueue()
	ready := NewReadySignal()
	d := NewDistributor(src, queue, ready, DistributorConfig{
		GainFactor:        1.0,
		AnimationCapacity: 2,
	}, logger.NewNop())

	require.NoError(t, d.Start())
	require.Eventually(t, func() bool {
		return d.FramesRead() == 3
	}, time.Second, 5*time.Millisecond)
	d.Stop()

	// Model never became ready: every transcription byte discarded.
	assert.Equal(t, int64(0), d.BytesQueued())
	assert.Equal(t, 0, queue.Len())
}

func TestDistributorQueuesAllFramesWhenReady(t *testing.T) {
	src := &fakeSource{frames: repeatedFrames(4, 8)}
	queue := NewChunkQueue()
	ready := NewReadySignal()
	ready.Set()

	d := NewDistributor(src, queue, ready, DistributorConfig{
		GainFactor:        1.5,
		AnimationCapacity: 2,
	}, logger.NewNop())

	require.NoError(t, d.Start())
	require.Eventually(t, func() bool {
		return d.FramesRead() == 4
	}, time.Second, 5*time.Millisecond)
	d.Stop()

	// Unbounded path: no frame lost, 8 samples = 16 bytes each.
	assert.Equal(t, int64(4*16), d.BytesQueued())
	assert.Equal(t, 4, queue.Len())

	// Gain applied to the transcription copy.
	chunk, ok := queue.Pop()
	require.True(t, ok)
	samples := Samples(chunk)
	assert.InDelta(t, 1500.0/32768.0, float64(samples[0]), 1e-6)
}

func TestDistributorStopIdempotentAndReleasesSource(t *testing.T) {
	src := &fakeSource{frames: repeatedFrames(100, 4)}
	queue := NewChunkQueue()
	d := NewDistributor(src, queue, NewReadySignal(), DistributorConfig{
		GainFactor:        1.0,
		AnimationCapacity: 2,
	}, logger.NewNop())

	require.NoError(t, d.Start())
	d.Stop()
	d.Stop()

	assert.True(t, src.isClosed())

	// Queue closed so a downstream consumer unblocks.
	_, ok := queue.Pop()
	assert.False(t, ok)
}
