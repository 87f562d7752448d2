package audio

import (
	"fmt"

	"github.com/rabble-ai/rabble/pkg/logger"
)

// AssemblerConfig contains windowing configuration for the assembler
type AssemblerConfig struct {
	SampleRate      int
	IntervalSeconds float64
	OverlapSeconds  float64
}

// Assembler consumes the transcription byte queue and cuts fixed-size
// windows with a trailing overlap carried into the next window.
type Assembler struct {
	queue         *ChunkQueue
	buffer        []byte
	intervalBytes int
	overlapBytes  int
	logger        *logger.Logger
}

// NewAssembler validates the window geometry and returns an assembler
// over the given queue. Overlap must be strictly smaller than the
// interval.
func NewAssembler(queue *ChunkQueue, config AssemblerConfig, logger *logger.Logger) (*Assembler, error) {
	// Two bytes per sample, mono.
	intervalBytes := int(float64(config.SampleRate)*config.IntervalSeconds) * 2
	overlapBytes := int(float64(config.SampleRate)*config.OverlapSeconds) * 2

	if intervalBytes <= 0 {
		return nil, fmt.Errorf("invalid window interval: %f seconds", config.IntervalSeconds)
	}
	if overlapBytes < 0 || overlapBytes >= intervalBytes {
		return nil, fmt.Errorf("overlap (%f s) must be non-negative and less than the interval (%f s)",
			config.OverlapSeconds, config.IntervalSeconds)
	}

	return &Assembler{
		queue:         queue,
		intervalBytes: intervalBytes,
		overlapBytes:  overlapBytes,
		logger:        logger.Named("assembler"),
	}, nil
}

// IntervalBytes returns the size of one complete window in bytes.
func (a *Assembler) IntervalBytes() int {
	return a.intervalBytes
}

// OverlapBytes returns the number of bytes carried between windows.
func (a *Assembler) OverlapBytes() int {
	return a.overlapBytes
}

// NextWindows blocks until at least one complete window is available
// and returns every complete window that has accumulated, oldest first.
// Each window's trailing overlap is retained as the prefix of the next.
// It returns ok=false once the queue is closed and drained.
func (a *Assembler) NextWindows() ([][]byte, bool) {
	for {
		// Drain whatever is already queued without blocking.
		for {
			chunk, ok := a.queue.TryPop()
			if !ok {
				break
			}
			a.buffer = append(a.buffer, chunk...)
		}

		if windows := a.cutWindows(); len(windows) > 0 {
			return windows, true
		}

		// Not enough buffered audio yet; wait for the next chunk.
		chunk, ok := a.queue.Pop()
		if !ok {
			return nil, false
		}
		a.buffer = append(a.buffer, chunk...)
	}
}

func (a *Assembler) cutWindows() [][]byte {
	var windows [][]byte
	for len(a.buffer) >= a.intervalBytes {
		window := make([]byte, a.intervalBytes)
		copy(window, a.buffer[:a.intervalBytes])
		windows = append(windows, window)

		// Keep the trailing overlap as the start of the next window.
		remaining := len(a.buffer) - a.intervalBytes + a.overlapBytes
		next := make([]byte, remaining)
		copy(next, a.buffer[a.intervalBytes-a.overlapBytes:])
		a.buffer = next
	}
	return windows
}
