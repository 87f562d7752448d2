package agent

import (
	"context"
	"sync"

	"github.com/rabble-ai/rabble/internal/websocket"
	"github.com/rabble-ai/rabble/pkg/logger"
)

// Import logger functions
var (
	String = logger.String
	Int    = logger.Int
	Error  = logger.Error
)

// Provider answers a transcript fragment with a response.
type Provider interface {
	Name() string
	Respond(ctx context.Context, text string) (string, error)
}

// EchoProvider returns the input unchanged. Useful for wiring checks
// without credentials.
type EchoProvider struct{}

func (EchoProvider) Name() string { return "echo" }

func (EchoProvider) Respond(_ context.Context, text string) (string, error) {
	return text, nil
}

// Agent consumes accepted transcript fragments on its own goroutine
// and broadcasts provider responses to UI clients.
type Agent struct {
	provider Provider
	wsServer *websocket.Server
	input    chan string
	logger   *logger.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates an agent over the given provider. The websocket server
// may be nil; responses are then only logged.
func New(ctx context.Context, provider Provider, wsServer *websocket.Server, log *logger.Logger) *Agent {
	agentCtx, agentCancel := context.WithCancel(ctx)
	return &Agent{
		provider: provider,
		wsServer: wsServer,
		input:    make(chan string, 64),
		logger:   log.Named("agent").With(String("provider", provider.Name())),
		ctx:      agentCtx,
		cancel:   agentCancel,
	}
}

// Start launches the consumer loop.
func (a *Agent) Start() {
	a.logger.Info("Starting agent")
	a.wg.Add(1)
	go a.run()
}

// Submit queues a transcript fragment. Fragments are dropped when the
// agent can't keep up; transcription must never stall on the agent.
func (a *Agent) Submit(text string) {
	if text == "" {
		return
	}
	select {
	case a.input <- text:
	case <-a.ctx.Done():
	default:
		a.logger.Warn("Agent input queue full, dropping fragment")
	}
}

func (a *Agent) run() {
	defer a.wg.Done()
	for {
		select {
		case <-a.ctx.Done():
			return
		case text := <-a.input:
			response, err := a.provider.Respond(a.ctx, text)
			if err != nil {
				if a.ctx.Err() != nil {
					return
				}
				a.logger.Error("Provider call failed", Error(err))
				continue
			}
			if response == "" {
				continue
			}
			a.logger.Debug("Agent response", String("response", response))
			if a.wsServer != nil {
				a.wsServer.Broadcast(websocket.MessageTypeAgentResponse, map[string]any{
					"input":    text,
					"response": response,
				})
			}
		}
	}
}

// Stop halts the consumer loop. Idempotent.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() {
		a.cancel()
		a.wg.Wait()
		a.logger.Info("Agent stopped")
	})
}
