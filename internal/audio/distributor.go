package audio

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rabble-ai/rabble/pkg/logger"
)

// Import logger functions
var (
	String = logger.String
	Int    = logger.Int
	Int64  = logger.Int64
	Error  = logger.Error
)

// DistributorConfig contains configuration for the audio distributor
type DistributorConfig struct {
	GainFactor        float64 // Applied to the transcription copy only
	AnimationCapacity int     // Animation channel depth
}

// Distributor reads frames from a capture source and fans each one out
// to two consumers: a bounded animation channel (latest frames win, the
// incoming frame is dropped when the channel is full) and an unbounded
// transcription queue gated on the model-ready signal.
type Distributor struct {
	source    Source
	queue     *ChunkQueue
	animation chan []float32
	ready     *ReadySignal
	gain      float64
	logger    *logger.Logger

	framesRead    atomic.Int64
	framesDropped atomic.Int64
	bytesQueued   atomic.Int64

	mu       sync.Mutex
	running  bool
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDistributor creates a distributor over the given source. The queue
// and ready signal are shared with the transcription pipeline.
func NewDistributor(source Source, queue *ChunkQueue, ready *ReadySignal, config DistributorConfig, logger *logger.Logger) *Distributor {
	capacity := config.AnimationCapacity
	if capacity <= 0 {
		capacity = 2
	}
	return &Distributor{
		source:    source,
		queue:     queue,
		animation: make(chan []float32, capacity),
		ready:     ready,
		gain:      config.GainFactor,
		logger:    logger.Named("distributor"),
		stopping:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Animation returns the channel of normalized sample frames for the
// amplitude consumer.
func (d *Distributor) Animation() <-chan []float32 {
	return d.animation
}

// FramesRead returns the number of frames read from the source.
func (d *Distributor) FramesRead() int64 {
	return d.framesRead.Load()
}

// FramesDropped returns the number of animation frames dropped because
// the channel was full.
func (d *Distributor) FramesDropped() int64 {
	return d.framesDropped.Load()
}

// BytesQueued returns the number of transcription bytes pushed so far.
func (d *Distributor) BytesQueued() int64 {
	return d.bytesQueued.Load()
}

// Start launches the read loop.
func (d *Distributor) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	d.running = true

	d.logger.Info("Starting audio distributor",
		logger.Float64("gain_factor", d.gain),
		Int("animation_capacity", cap(d.animation)))

	go d.run()
	return nil
}

func (d *Distributor) run() {
	defer close(d.done)
	defer func() {
		if err := d.source.Close(); err != nil {
			d.logger.Error("Failed to release capture source", Error(err))
		}
	}()

	for {
		select {
		case <-d.stopping:
			return
		default:
		}

		frame, err := d.source.Read()
		if err != nil {
			select {
			case <-d.stopping:
				return
			default:
			}
			if errors.Is(err, io.EOF) {
				d.logger.Info("Capture source exhausted")
				return
			}
			d.logger.Warn("Transient capture read error, skipping frame", Error(err))
			continue
		}
		d.framesRead.Add(1)

		// Animation consumer: never block the capture loop.
		select {
		case d.animation <- Normalize(frame):
		default:
			d.framesDropped.Add(1)
		}

		// Transcription consumer: discard until the model is ready.
		if d.ready.IsSet() {
			pcm := Amplify(frame, d.gain)
			d.queue.Push(pcm)
			d.bytesQueued.Add(int64(len(pcm)))
		}
	}
}

// Stop halts the read loop, waits for it to exit, and closes the
// transcription queue. Idempotent.
func (d *Distributor) Stop() {
	d.stopOnce.Do(func() {
		d.logger.Info("Stopping audio distributor")
		close(d.stopping)
		<-d.done
		d.queue.Close()
		d.logger.Info("Audio distributor stopped",
			Int64("frames_read", d.framesRead.Load()),
			Int64("frames_dropped", d.framesDropped.Load()))
	})
}
