package transcription

// Config contains configuration for the transcription pipeline
type Config struct {
	Backend  string // "openai" or "whisper-cpp"
	Model    string
	Device   string // "cpu" or "gpu", local backend only
	Language string

	// Windowing
	SampleRate      int
	IntervalSeconds float64
	OverlapSeconds  float64

	// Text cleanup
	HistorySize     int
	CleanupStrategy string

	// Voice activity detection, handed to the backend verbatim
	VADFilter     bool
	VADParameters map[string]string

	// openai backend
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// whisper-cpp backend
	WhisperPath      string
	WhisperModelPath string

	TimeoutSeconds int
	LogDir         string
}

// Fragment is one accepted piece of transcribed text with its window
// ordinal, the unit persisted to storage and broadcast to clients.
type Fragment struct {
	Window int64  `json:"window"`
	Text   string `json:"text"`
}

// TextSink receives accepted transcript text for live display.
type TextSink interface {
	PushText(text string)
}
