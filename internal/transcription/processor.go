package transcription

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rabble-ai/rabble/internal/audio"
	"github.com/rabble-ai/rabble/internal/storage/sqlite"
	"github.com/rabble-ai/rabble/internal/websocket"
	"github.com/rabble-ai/rabble/pkg/logger"
)

// State is the pipeline lifecycle state.
type State int32

const (
	StateLoading State = iota
	StateWarmingUp
	StateReady
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateWarmingUp:
		return "warming_up"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// AgentSink receives accepted transcript fragments for downstream
// processing.
type AgentSink interface {
	Submit(text string)
}

// Processor drives the transcription side of the pipeline: it drains
// complete windows from the assembler, runs them through the engine and
// the cleaner, and routes accepted text to the transcript log, storage,
// the websocket hub, the agent, and the live display sink.
type Processor struct {
	assembler *audio.Assembler
	engine    Engine
	cleaner   Cleaner
	ready     *audio.ReadySignal
	queue     *audio.ChunkQueue
	sink      TextSink
	log       *TranscriptLog
	storage   *sqlite.TranscriptionStorage
	wsServer  *websocket.Server
	agent     AgentSink
	logger    *logger.Logger
	config    Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	state       atomic.Int32
	windowCount atomic.Int64
	stopOnce    sync.Once
}

// NewProcessor creates a transcription processor. Storage, the
// websocket server, and the agent may be nil; the corresponding routing
// is skipped.
func NewProcessor(
	ctx context.Context,
	queue *audio.ChunkQueue,
	assembler *audio.Assembler,
	engine Engine,
	ready *audio.ReadySignal,
	sink TextSink,
	transcriptLog *TranscriptLog,
	storage *sqlite.TranscriptionStorage,
	wsServer *websocket.Server,
	agent AgentSink,
	config Config,
	log *logger.Logger,
) *Processor {
	procCtx, procCancel := context.WithCancel(ctx)
	p := &Processor{
		assembler: assembler,
		engine:    engine,
		cleaner:   NewCleaner(config.CleanupStrategy, config.HistorySize),
		ready:     ready,
		queue:     queue,
		sink:      sink,
		log:       transcriptLog,
		storage:   storage,
		wsServer:  wsServer,
		agent:     agent,
		logger:    log.Named("transcription"),
		config:    config,
		ctx:       procCtx,
		cancel:    procCancel,
	}
	p.state.Store(int32(StateLoading))
	return p
}

// State returns the current lifecycle state.
func (p *Processor) State() State {
	return State(p.state.Load())
}

// WindowCount returns the number of windows transcribed so far.
func (p *Processor) WindowCount() int64 {
	return p.windowCount.Load()
}

// Start launches model loading and the transcription loop.
func (p *Processor) Start() error {
	p.logger.Info("Starting transcription processor",
		String("backend", p.config.Backend),
		String("cleanup_strategy", p.config.CleanupStrategy))
	p.wg.Add(1)
	go p.run()
	return nil
}

func (p *Processor) run() {
	defer p.wg.Done()

	if err := p.engine.Load(p.ctx); err != nil {
		// The pipeline stays in the loading state; audio keeps flowing
		// to the animation consumer but transcription never starts.
		p.logger.Error("Failed to load transcription model", Error(err))
		return
	}

	p.setState(StateWarmingUp)
	if err := p.engine.Warmup(p.ctx); err != nil {
		p.logger.Warn("Model warmup failed, continuing", Error(err))
	}

	p.setState(StateReady)
	p.ready.Set()
	p.logger.Info("Transcription model ready")

	for {
		windows, ok := p.assembler.NextWindows()
		if !ok {
			return
		}
		p.processBurst(windows)
	}
}

// processBurst transcribes every window of a catch-up burst. All
// accepted text is persisted and broadcast, but only the final window's
// text reaches the live display so it never lags the audio.
func (p *Processor) processBurst(windows [][]byte) {
	var lastAccepted string
	for _, window := range windows {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		ordinal := p.windowCount.Add(1)
		text, err := p.engine.Transcribe(p.ctx, audio.Samples(window))
		if err != nil {
			if p.ctx.Err() != nil {
				// Stopping; the in-flight result is discarded.
				return
			}
			p.logger.Warn("Window transcription failed",
				Int64("window", ordinal), Error(err))
			continue
		}

		accepted := p.cleaner.Clean(text)
		if accepted == "" {
			continue
		}
		p.routeFragment(Fragment{Window: ordinal, Text: accepted})
		lastAccepted = accepted
	}

	if lastAccepted != "" && p.sink != nil && p.ctx.Err() == nil {
		p.sink.PushText(lastAccepted)
	}
}

func (p *Processor) routeFragment(frag Fragment) {
	p.logger.Debug("Accepted fragment",
		Int64("window", frag.Window), String("text", frag.Text))

	if p.log != nil {
		if err := p.log.Append(frag.Text); err != nil {
			p.logger.Error("Failed to append to transcript log", Error(err))
		}
	}
	if p.storage != nil {
		if _, err := p.storage.StoreTranscription(frag.Text, p.config.Backend, frag.Window); err != nil {
			p.logger.Error("Failed to store transcription", Error(err))
		}
	}
	if p.wsServer != nil {
		p.wsServer.Broadcast("transcription", map[string]any{
			"window": frag.Window,
			"text":   frag.Text,
		})
	}
	if p.agent != nil {
		p.agent.Submit(frag.Text)
	}
}

func (p *Processor) setState(s State) {
	p.state.Store(int32(s))
	if p.wsServer != nil {
		p.wsServer.Broadcast("status", map[string]any{
			"state": s.String(),
		})
	}
}

// Stop cancels the loop, waits for it to drain, and releases the
// engine. Idempotent.
func (p *Processor) Stop() {
	p.stopOnce.Do(func() {
		p.setState(StateStopping)
		p.cancel()
		// Unblock a loop waiting on an empty queue.
		p.queue.Close()
		p.wg.Wait()
		if err := p.engine.Close(); err != nil {
			p.logger.Error("Failed to close transcription engine", Error(err))
		}
		p.setState(StateStopped)
		p.logger.Info("Transcription processor stopped",
			Int64("windows", p.windowCount.Load()))
	})
}
