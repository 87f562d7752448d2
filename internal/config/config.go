package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server        ServerConfig        `toml:"server"`        // HTTP server settings
	Logging       LoggingConfig       `toml:"logging"`       // Application logging settings
	Audio         AudioConfig         `toml:"audio"`         // Microphone capture and fan-out settings
	Transcription TranscriptionConfig `toml:"transcription"` // Speech-to-text pipeline settings
	Display       DisplayConfig       `toml:"display"`       // Word pacing and scroll settings
	Storage       StorageConfig       `toml:"storage"`       // Data persistence settings
	Agent         AgentConfig         `toml:"agent"`         // Post-transcript agent settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port             int    `toml:"port"`                  // HTTP port for the API and websocket endpoint
	Host             string `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only)
	ReadTimeoutSecs  int    `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs int    `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout, required for websocket)
	IdleTimeoutSecs  int    `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// AudioConfig contains microphone capture and fan-out configuration
type AudioConfig struct {
	SampleRate        int     `toml:"sample_rate"`          // Capture sample rate in Hz (mono, 16-bit PCM)
	ChunkSize         int     `toml:"chunk_size"`           // Samples pulled from the device per read
	GainFactor        float64 `toml:"gain_factor"`          // Multiplier applied to the transcription copy of each frame
	AnimationCapacity int     `toml:"animation_queue_size"` // Animation channel depth; a full channel drops the incoming frame
}

// TranscriptionConfig contains settings for the speech-to-text pipeline
type TranscriptionConfig struct {
	Backend  string `toml:"backend"`  // Engine backend: "openai" or "whisper-cpp"
	Model    string `toml:"model"`    // Model identifier (e.g., "whisper-1" for openai, model name for whisper-cpp)
	Device   string `toml:"device"`   // Device selector for the local backend: "cpu" or "gpu"
	Language string `toml:"language"` // Primary language hint (e.g., "en")

	// Windowing settings
	IntervalSeconds float64 `toml:"interval_seconds"` // Duration of each audio window handed to the engine
	OverlapSeconds  float64 `toml:"overlap_seconds"`  // Audio carried over between consecutive windows (must be < interval)

	// Text cleanup settings
	HistorySize     int    `toml:"transcription_history_size"` // Bounded word history used for de-duplication
	CleanupStrategy string `toml:"cleanup_strategy"`           // "none" or "simple_deduplication"; unknown values behave as "none"

	// Voice activity detection settings, handed to the engine backend verbatim
	VADFilter     bool              `toml:"vad_filter"`     // Enable voice activity detection where the backend supports it
	VADParameters map[string]string `toml:"vad_parameters"` // Backend-specific VAD parameters

	// OpenAI backend settings
	OpenAIAPIKey  string `toml:"openai_api_key"`      // API key for the hosted transcription service
	OpenAIBaseURL string `toml:"openai_api_base_url"` // Optional base URL override (e.g., for compatible proxies)

	// whisper-cpp backend settings
	WhisperPath      string `toml:"whisper_path"`       // Path to the whisper executable
	WhisperModelPath string `toml:"whisper_model_path"` // Path to the model file

	TimeoutSeconds int    `toml:"timeout_seconds"` // Per-call engine timeout in seconds
	LogDir         string `toml:"log_dir"`         // Directory for the per-run append-only transcript log
}

// DisplayConfig contains word pacing and scroll configuration
type DisplayConfig struct {
	ViewportWidth         float64 `toml:"viewport_width"`           // Viewport width in pixels
	ScrollSpeed           float64 `toml:"scroll_speed"`             // Horizontal scroll speed in pixels per second
	WordDisplayIntervalMs int     `toml:"word_display_interval_ms"` // Minimum time between word releases
	TextStartOffset       float64 `toml:"text_start_offset"`        // Offset from the horizontal anchor for a word placed on an empty line
	WordSpacing           float64 `toml:"word_spacing"`             // Pixels between consecutive words
	GlyphWidth            float64 `toml:"glyph_width"`              // Estimated pixel width per glyph for the default measurer
	RenderIntervalMs      int     `toml:"render_interval_ms"`       // Render loop tick interval
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Type           string `toml:"type"`             // Storage backend type (currently only "sqlite" is supported)
	SQLiteBasePath string `toml:"sqlite_base_path"` // Base path for SQLite database files (filename is generated as rabble-YYYY-MM-DD.db)
}

// AgentConfig contains settings for the optional post-transcript agent
type AgentConfig struct {
	Enabled      bool   `toml:"enabled"`        // Enable or disable the agent stage
	Provider     string `toml:"provider"`       // Agent provider: "echo" or "gemini"
	GeminiAPIKey string `toml:"gemini_api_key"` // API key for the Gemini provider
	Model        string `toml:"model"`          // Model identifier for the Gemini provider
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,         // User-specified path (if provided)
		"configs/config.toml", // configs/ folder
		"config.toml",         // Root directory
	}

	// Remove duplicates while preserving order
	uniquePaths := make([]string, 0, len(searchPaths))
	seen := make(map[string]bool)
	for _, path := range searchPaths {
		if path != "" && !seen[path] {
			uniquePaths = append(uniquePaths, path)
			seen[path] = true
		}
	}

	var lastErr error
	for _, path := range uniquePaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %v. Last error: %w", uniquePaths, lastErr)
}

// Validate validates the configuration and fills in documented defaults
// for missing values
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.ReadTimeoutSecs == 0 {
		c.Server.ReadTimeoutSecs = 30
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 120
	}

	// Validate logging config
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}

	// Validate storage config
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Type != "sqlite" {
		return fmt.Errorf("invalid storage type: %s (only 'sqlite' is supported)", c.Storage.Type)
	}
	if c.Storage.SQLiteBasePath == "" {
		c.Storage.SQLiteBasePath = "data"
	}

	// Validate agent config
	if c.Agent.Provider == "" {
		c.Agent.Provider = "echo"
	}
	switch c.Agent.Provider {
	case "echo":
		// No credentials required
	case "gemini":
		if c.Agent.Enabled && c.Agent.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required when the agent provider is gemini")
		}
		if c.Agent.Model == "" {
			c.Agent.Model = "gemini-2.0-flash"
		}
	default:
		return fmt.Errorf("invalid agent provider: %s (must be 'echo' or 'gemini')", c.Agent.Provider)
	}

	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("invalid sample rate: %d", c.Audio.SampleRate)
	}
	if c.Audio.ChunkSize == 0 {
		c.Audio.ChunkSize = 2048
	}
	if c.Audio.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk size: %d", c.Audio.ChunkSize)
	}
	if c.Audio.GainFactor == 0 {
		c.Audio.GainFactor = 1.5
	}
	if c.Audio.GainFactor < 0 {
		return fmt.Errorf("invalid gain factor: %f", c.Audio.GainFactor)
	}
	if c.Audio.AnimationCapacity == 0 {
		c.Audio.AnimationCapacity = 2
	}
	if c.Audio.AnimationCapacity < 0 {
		return fmt.Errorf("invalid animation queue size: %d", c.Audio.AnimationCapacity)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.Backend == "" {
		c.Transcription.Backend = "whisper-cpp"
	}
	if c.Transcription.Backend != "openai" && c.Transcription.Backend != "whisper-cpp" {
		return fmt.Errorf("invalid transcription backend: %s (must be 'openai' or 'whisper-cpp')", c.Transcription.Backend)
	}

	if c.Transcription.Device == "" {
		c.Transcription.Device = "cpu"
	}
	if c.Transcription.Device != "cpu" && c.Transcription.Device != "gpu" {
		return fmt.Errorf("invalid transcription device: %s (must be 'cpu' or 'gpu')", c.Transcription.Device)
	}

	if c.Transcription.IntervalSeconds == 0 {
		c.Transcription.IntervalSeconds = 0.5
	}
	if c.Transcription.IntervalSeconds < 0 {
		return fmt.Errorf("invalid interval_seconds: %f", c.Transcription.IntervalSeconds)
	}
	if c.Transcription.OverlapSeconds < 0 {
		return fmt.Errorf("invalid overlap_seconds: %f", c.Transcription.OverlapSeconds)
	}
	if c.Transcription.OverlapSeconds == 0 {
		c.Transcription.OverlapSeconds = 0.1
	}
	if c.Transcription.OverlapSeconds >= c.Transcription.IntervalSeconds {
		return fmt.Errorf("overlap_seconds (%f) must be less than interval_seconds (%f)",
			c.Transcription.OverlapSeconds, c.Transcription.IntervalSeconds)
	}

	if c.Transcription.HistorySize == 0 {
		c.Transcription.HistorySize = 50
	}
	if c.Transcription.HistorySize < 0 {
		return fmt.Errorf("invalid transcription_history_size: %d", c.Transcription.HistorySize)
	}

	// Unknown cleanup strategies are accepted and behave as "none"
	if c.Transcription.CleanupStrategy == "" {
		c.Transcription.CleanupStrategy = "none"
	}

	if c.Transcription.TimeoutSeconds == 0 {
		c.Transcription.TimeoutSeconds = 30
	}
	if c.Transcription.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid timeout_seconds: %d", c.Transcription.TimeoutSeconds)
	}
	if c.Transcription.LogDir == "" {
		c.Transcription.LogDir = "logs"
	}
	return nil
}

func (c *Config) validateDisplay() error {
	if c.Display.ViewportWidth == 0 {
		c.Display.ViewportWidth = 800
	}
	if c.Display.ViewportWidth < 0 {
		return fmt.Errorf("invalid viewport_width: %f", c.Display.ViewportWidth)
	}
	if c.Display.ScrollSpeed == 0 {
		c.Display.ScrollSpeed = 70
	}
	if c.Display.ScrollSpeed < 0 {
		return fmt.Errorf("invalid scroll_speed: %f", c.Display.ScrollSpeed)
	}
	if c.Display.WordDisplayIntervalMs == 0 {
		c.Display.WordDisplayIntervalMs = 150
	}
	if c.Display.WordDisplayIntervalMs < 0 {
		return fmt.Errorf("invalid word_display_interval_ms: %d", c.Display.WordDisplayIntervalMs)
	}
	if c.Display.TextStartOffset == 0 {
		c.Display.TextStartOffset = 50
	}
	if c.Display.WordSpacing == 0 {
		c.Display.WordSpacing = 10
	}
	if c.Display.GlyphWidth == 0 {
		c.Display.GlyphWidth = 14
	}
	if c.Display.RenderIntervalMs == 0 {
		c.Display.RenderIntervalMs = 33
	}
	return nil
}
