package transcription

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rabble-ai/rabble/pkg/logger"
)

var timestampPrefix = regexp.MustCompile(`^\[[0-9:.,>\s-]+\]\s*`)

// WhisperCppEngine transcribes windows by invoking a local whisper
// executable on a temporary WAV file per window.
type WhisperCppEngine struct {
	execPath   string
	modelPath  string
	language   string
	device     string
	sampleRate int
	timeout    time.Duration
	vadFilter  bool
	vadParams  map[string]string
	tmpDir     string
	logger     *logger.Logger
}

// NewWhisperCppEngine creates the local backend.
func NewWhisperCppEngine(config Config, log *logger.Logger) *WhisperCppEngine {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WhisperCppEngine{
		execPath:   config.WhisperPath,
		modelPath:  config.WhisperModelPath,
		language:   config.Language,
		device:     config.Device,
		sampleRate: config.SampleRate,
		timeout:    timeout,
		vadFilter:  config.VADFilter,
		vadParams:  config.VADParameters,
		logger:     log.Named("whisper-cpp-engine"),
	}
}

// Load verifies the executable and model file exist and prepares a
// scratch directory for per-window WAV files.
func (e *WhisperCppEngine) Load(ctx context.Context) error {
	if e.execPath == "" {
		return fmt.Errorf("whisper_path is not configured")
	}
	if _, err := exec.LookPath(e.execPath); err != nil {
		return fmt.Errorf("whisper executable not found at %s: %w", e.execPath, err)
	}
	if e.modelPath != "" {
		if _, err := os.Stat(e.modelPath); err != nil {
			return fmt.Errorf("whisper model not found at %s: %w", e.modelPath, err)
		}
	}

	tmpDir, err := os.MkdirTemp("", "rabble-whisper-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	e.tmpDir = tmpDir

	e.logger.Info("Using local whisper backend",
		String("exec", e.execPath),
		String("model", e.modelPath),
		String("device", e.device))
	return nil
}

// Warmup runs the executable once on silence so the model file is in
// the page cache before real audio arrives.
func (e *WhisperCppEngine) Warmup(ctx context.Context) error {
	silence := make([]float32, e.sampleRate/10)
	_, err := e.Transcribe(ctx, silence)
	return err
}

// Transcribe writes the window to a temporary WAV file, runs the
// executable on it, and extracts the recognized text from its output.
func (e *WhisperCppEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	wavPath := filepath.Join(e.tmpDir, fmt.Sprintf("window-%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(wavPath, encodeWAV(samples, e.sampleRate), 0o644); err != nil {
		return "", fmt.Errorf("failed to write window file: %w", err)
	}
	defer os.Remove(wavPath)

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{"-f", wavPath, "--no-prints"}
	if e.modelPath != "" {
		args = append(args, "--model", e.modelPath)
	}
	if e.language != "" {
		args = append(args, "--language", e.language)
	}
	if e.device == "cpu" {
		args = append(args, "--no-gpu")
	}
	if e.vadFilter {
		args = append(args, "--vad")
		for key, value := range e.vadParams {
			args = append(args, "--"+key, value)
		}
	}

	cmd := exec.CommandContext(runCtx, e.execPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("whisper run failed: %w", err)
	}
	return extractText(string(output)), nil
}

// Close removes the scratch directory.
func (e *WhisperCppEngine) Close() error {
	if e.tmpDir == "" {
		return nil
	}
	return os.RemoveAll(e.tmpDir)
}

// extractText strips subtitle-style timestamps and non-speech markers
// from whisper output and joins the remaining lines.
func extractText(output string) string {
	var parts []string
	for _, line := range strings.Split(output, "\n") {
		line = timestampPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.TrimSpace(line)
		if line == "" || line == "[BLANK_AUDIO]" {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
