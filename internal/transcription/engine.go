package transcription

import (
	"context"
	"fmt"

	"github.com/rabble-ai/rabble/pkg/logger"
)

// Import logger functions
var (
	String = logger.String
	Int    = logger.Int
	Int64  = logger.Int64
	Error  = logger.Error
)

// Engine converts one window of normalized PCM samples into text.
// Load acquires the model or verifies credentials; Warmup runs a dummy
// inference so the first real window doesn't pay the cold-start cost.
type Engine interface {
	Load(ctx context.Context) error
	Warmup(ctx context.Context) error
	Transcribe(ctx context.Context, samples []float32) (string, error)
	Close() error
}

// NewEngine constructs the backend selected by config.Backend.
func NewEngine(config Config, log *logger.Logger) (Engine, error) {
	switch config.Backend {
	case "openai":
		return NewOpenAIEngine(config, log), nil
	case "whisper-cpp":
		return NewWhisperCppEngine(config, log), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend: %q", config.Backend)
	}
}
