package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rabble-ai/rabble/internal/audio"
	"github.com/rabble-ai/rabble/internal/display"
	"github.com/rabble-ai/rabble/internal/storage/sqlite"
	"github.com/rabble-ai/rabble/internal/transcription"
	"github.com/rabble-ai/rabble/internal/websocket"
	"github.com/rabble-ai/rabble/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idleEngine struct{}

func (idleEngine) Load(ctx context.Context) error   { return nil }
func (idleEngine) Warmup(ctx context.Context) error { return nil }
func (idleEngine) Close() error                     { return nil }
func (idleEngine) Transcribe(ctx context.Context, samples []float32) (string, error) {
	return "", nil
}

type idleSource struct{}

func (idleSource) Read() (audio.Frame, error) { return nil, io.EOF }
func (idleSource) Close() error               { return nil }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	log := logger.NewNop()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	storage := sqlite.NewTranscriptionStorage(db, log)

	queue := audio.NewChunkQueue()
	ready := audio.NewReadySignal()
	distributor := audio.NewDistributor(idleSource{}, queue, ready, audio.DistributorConfig{
		GainFactor:        1.0,
		AnimationCapacity: 2,
	}, log)

	assembler, err := audio.NewAssembler(queue, audio.AssemblerConfig{
		SampleRate:      16000,
		IntervalSeconds: 0.5,
		OverlapSeconds:  0.1,
	}, log)
	require.NoError(t, err)

	scroll := display.NewScrollModel(800, 70)
	pacer := display.NewPacer(scroll, display.FixedMeasurer{GlyphWidth: 10}, display.PacerConfig{
		Interval: 150 * time.Millisecond,
	})

	wsServer := websocket.NewServer(log)

	processor := transcription.NewProcessor(context.Background(), queue, assembler,
		idleEngine{}, ready, pacer, nil, storage, nil, nil,
		transcription.Config{Backend: "whisper-cpp", CleanupStrategy: "none"}, log)

	return NewHandler(processor, pacer, distributor, storage, wsServer, log)
}

func TestGetStatus(t *testing.T) {
	h := newTestHandler(t)
	server := httptest.NewServer(h.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "loading", status["state"])
	assert.Equal(t, false, status["ready"])
	assert.Equal(t, false, status["paused"])
}

func TestPauseAndResume(t *testing.T) {
	h := newTestHandler(t)
	server := httptest.NewServer(h.Routes())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/pause", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, h.pacer.Paused())

	resp, err = http.Post(server.URL+"/api/resume", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, h.pacer.Paused())
}

func TestGetTranscriptions(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.storage.StoreTranscription("stored text", "whisper-cpp", 1)
	require.NoError(t, err)

	server := httptest.NewServer(h.Routes())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/transcriptions?limit=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Transcriptions []sqlite.TranscriptionRecord `json:"transcriptions"`
		Count          int                          `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Transcriptions, 1)
	assert.Equal(t, "stored text", body.Transcriptions[0].Content)
}
