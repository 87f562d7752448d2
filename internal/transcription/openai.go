package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rabble-ai/rabble/pkg/logger"
)

// DefaultOpenAIBase is used when no base URL is configured.
var DefaultOpenAIBase = "https://api.openai.com"

// OpenAIEngine transcribes windows via the hosted audio transcription
// REST API, uploading each window as a WAV file.
type OpenAIEngine struct {
	apiKey     string
	model      string
	language   string
	sampleRate int
	baseURL    string // stored without a trailing slash
	httpClient *http.Client
	logger     *logger.Logger
}

// NewOpenAIEngine creates the hosted backend. The base URL is resolved
// in order: config value, OPENAI_API_BASE environment variable, then
// the public endpoint.
func NewOpenAIEngine(config Config, log *logger.Logger) *OpenAIEngine {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(config.OpenAIBaseURL, "/")
	if baseURL == "" {
		if env := os.Getenv("OPENAI_API_BASE"); env != "" {
			baseURL = strings.TrimRight(env, "/")
		} else {
			baseURL = DefaultOpenAIBase
		}
	}

	model := config.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAIEngine{
		apiKey:     config.OpenAIAPIKey,
		model:      model,
		language:   config.Language,
		sampleRate: config.SampleRate,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("openai-engine"),
	}
}

// Load verifies the credentials are present. No model download happens
// for the hosted backend.
func (e *OpenAIEngine) Load(ctx context.Context) error {
	if e.apiKey == "" {
		return fmt.Errorf("openai_api_key is not configured")
	}
	e.logger.Info("Using hosted transcription backend",
		String("model", e.model),
		String("base_url", e.baseURL))
	return nil
}

// Warmup sends one window of silence so connection setup and TLS
// handshakes are out of the way before real audio arrives.
func (e *OpenAIEngine) Warmup(ctx context.Context) error {
	silence := make([]float32, e.sampleRate/10)
	_, err := e.Transcribe(ctx, silence)
	return err
}

// Transcribe uploads the window as a multipart WAV request and returns
// the recognized text.
func (e *OpenAIEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "window.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(encodeWAV(samples, e.sampleRate)); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", e.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if e.language != "" {
		if err := writer.WriteField("language", e.language); err != nil {
			return "", fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := e.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription request returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return strings.TrimSpace(result.Text), nil
}

// Close releases nothing for the hosted backend.
func (e *OpenAIEngine) Close() error {
	return nil
}
