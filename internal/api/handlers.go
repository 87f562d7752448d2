package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rabble-ai/rabble/internal/audio"
	"github.com/rabble-ai/rabble/internal/display"
	"github.com/rabble-ai/rabble/internal/storage/sqlite"
	"github.com/rabble-ai/rabble/internal/transcription"
	"github.com/rabble-ai/rabble/internal/websocket"
	"github.com/rabble-ai/rabble/pkg/logger"
)

// Import logger functions
var (
	String = logger.String
	Error  = logger.Error
)

// Handler contains the API handlers
type Handler struct {
	processor   *transcription.Processor
	pacer       *display.Pacer
	distributor *audio.Distributor
	storage     *sqlite.TranscriptionStorage
	wsServer    *websocket.Server
	logger      *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	processor *transcription.Processor,
	pacer *display.Pacer,
	distributor *audio.Distributor,
	storage *sqlite.TranscriptionStorage,
	wsServer *websocket.Server,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		processor:   processor,
		pacer:       pacer,
		distributor: distributor,
		storage:     storage,
		wsServer:    wsServer,
		logger:      logger.Named("api-handler"),
	}
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure here only
	// truncates the body.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// GetStatus returns the pipeline state and counters
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	state := h.processor.State()
	WriteJSON(w, http.StatusOK, map[string]any{
		"state":          state.String(),
		"ready":          state == transcription.StateReady,
		"paused":         h.pacer.Paused(),
		"windows":        h.processor.WindowCount(),
		"frames_read":    h.distributor.FramesRead(),
		"frames_dropped": h.distributor.FramesDropped(),
		"words_pending":  h.pacer.PendingCount(),
		"words_released": h.pacer.Released(),
		"clients":        h.wsServer.ClientCount(),
	})
}

// GetTranscriptions returns stored transcriptions with pagination
func (h *Handler) GetTranscriptions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaginationParams(r)

	transcriptions, err := h.storage.GetTranscriptions(limit, offset)
	if err != nil {
		h.logger.Error("Failed to get transcriptions", Error(err))
		WriteError(w, http.StatusInternalServerError, "failed to get transcriptions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"transcriptions": transcriptions,
		"count":          len(transcriptions),
		"limit":          limit,
		"offset":         offset,
	})
}

// Pause suspends word releases. Capture and transcription continue.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.pacer.Pause()
	h.logger.Info("Display paused via API")
	WriteJSON(w, http.StatusOK, map[string]any{"paused": true})
}

// Resume re-enables word releases
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.pacer.Resume()
	h.logger.Info("Display resumed via API")
	WriteJSON(w, http.StatusOK, map[string]any{"paused": false})
}

// HandleWebSocket upgrades the connection and hands it to the hub
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsServer.HandleConnection(w, r)
}

func parsePaginationParams(r *http.Request) (int, int) {
	limit := 100 // Default limit
	offset := 0  // Default offset

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
