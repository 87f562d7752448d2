package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rabble-ai/rabble/internal/agent"
	"github.com/rabble-ai/rabble/internal/api"
	"github.com/rabble-ai/rabble/internal/audio"
	"github.com/rabble-ai/rabble/internal/config"
	"github.com/rabble-ai/rabble/internal/display"
	"github.com/rabble-ai/rabble/internal/storage/sqlite"
	"github.com/rabble-ai/rabble/internal/transcription"
	"github.com/rabble-ai/rabble/internal/websocket"
	"github.com/rabble-ai/rabble/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("Fatal error", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	log.Info("Starting rabble",
		logger.Int("sample_rate", cfg.Audio.SampleRate),
		logger.String("backend", cfg.Transcription.Backend))

	// Storage, one database file per day.
	if err := os.MkdirAll(cfg.Storage.SQLiteBasePath, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	dbPath := filepath.Join(cfg.Storage.SQLiteBasePath,
		fmt.Sprintf("rabble-%s.db", time.Now().Format("2006-01-02")))
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	storage := sqlite.NewTranscriptionStorage(db, log)

	// Websocket hub.
	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	// Transcript log file.
	transcriptLog, err := transcription.NewTranscriptLog(cfg.Transcription.LogDir)
	if err != nil {
		return fmt.Errorf("failed to open transcript log: %w", err)
	}
	defer transcriptLog.Close()
	log.Info("Transcript log opened", logger.String("path", transcriptLog.Path()))

	// Capture and fan-out.
	source, err := audio.NewMicSource(cfg.Audio.SampleRate, cfg.Audio.ChunkSize)
	if err != nil {
		return fmt.Errorf("failed to open capture device: %w", err)
	}

	queue := audio.NewChunkQueue()
	ready := audio.NewReadySignal()
	distributor := audio.NewDistributor(source, queue, ready, audio.DistributorConfig{
		GainFactor:        cfg.Audio.GainFactor,
		AnimationCapacity: cfg.Audio.AnimationCapacity,
	}, log)

	assembler, err := audio.NewAssembler(queue, audio.AssemblerConfig{
		SampleRate:      cfg.Audio.SampleRate,
		IntervalSeconds: cfg.Transcription.IntervalSeconds,
		OverlapSeconds:  cfg.Transcription.OverlapSeconds,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create assembler: %w", err)
	}

	// Display model.
	scroll := display.NewScrollModel(cfg.Display.ViewportWidth, cfg.Display.ScrollSpeed)
	pacer := display.NewPacer(scroll, display.FixedMeasurer{GlyphWidth: cfg.Display.GlyphWidth}, display.PacerConfig{
		Interval:    time.Duration(cfg.Display.WordDisplayIntervalMs) * time.Millisecond,
		AnchorX:     cfg.Display.ViewportWidth / 2,
		StartOffset: cfg.Display.TextStartOffset,
		WordSpacing: cfg.Display.WordSpacing,
	})

	// Optional agent stage.
	var agentStage *agent.Agent
	var agentSink transcription.AgentSink
	if cfg.Agent.Enabled {
		var provider agent.Provider
		switch cfg.Agent.Provider {
		case "gemini":
			provider, err = agent.NewGeminiProvider(ctx, cfg.Agent.GeminiAPIKey, cfg.Agent.Model)
			if err != nil {
				return fmt.Errorf("failed to create gemini provider: %w", err)
			}
		default:
			provider = agent.EchoProvider{}
		}
		agentStage = agent.New(ctx, provider, wsServer, log)
		agentStage.Start()
		agentSink = agentStage
	}

	// Transcription pipeline.
	txConfig := transcription.Config{
		Backend:          cfg.Transcription.Backend,
		Model:            cfg.Transcription.Model,
		Device:           cfg.Transcription.Device,
		Language:         cfg.Transcription.Language,
		SampleRate:       cfg.Audio.SampleRate,
		IntervalSeconds:  cfg.Transcription.IntervalSeconds,
		OverlapSeconds:   cfg.Transcription.OverlapSeconds,
		HistorySize:      cfg.Transcription.HistorySize,
		CleanupStrategy:  cfg.Transcription.CleanupStrategy,
		VADFilter:        cfg.Transcription.VADFilter,
		VADParameters:    cfg.Transcription.VADParameters,
		OpenAIAPIKey:     cfg.Transcription.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.Transcription.OpenAIBaseURL,
		WhisperPath:      cfg.Transcription.WhisperPath,
		WhisperModelPath: cfg.Transcription.WhisperModelPath,
		TimeoutSeconds:   cfg.Transcription.TimeoutSeconds,
		LogDir:           cfg.Transcription.LogDir,
	}
	engine, err := transcription.NewEngine(txConfig, log)
	if err != nil {
		return fmt.Errorf("failed to create transcription engine: %w", err)
	}
	processor := transcription.NewProcessor(ctx, queue, assembler, engine, ready,
		pacer, transcriptLog, storage, wsServer, agentSink, txConfig, log)

	if err := distributor.Start(); err != nil {
		return fmt.Errorf("failed to start distributor: %w", err)
	}
	if err := processor.Start(); err != nil {
		return fmt.Errorf("failed to start transcription processor: %w", err)
	}

	// Render loop: amplitude + word releases + scroll advance.
	renderStop := make(chan struct{})
	renderDone := make(chan struct{})
	go renderLoop(cfg, distributor, pacer, scroll, wsServer, renderStop, renderDone)

	// HTTP server.
	handler := api.NewHandler(processor, pacer, distributor, storage, wsServer, log)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			httpErr <- err
		}
	}()

	// Wait for a shutdown signal.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", logger.String("signal", sig.String()))
	case err := <-httpErr:
		log.Error("HTTP server failed", logger.Error(err))
	}

	// Ordered shutdown: capture first so the queue drains, then the
	// transcription side, then the outward-facing surfaces.
	distributor.Stop()
	processor.Stop()
	if agentStage != nil {
		agentStage.Stop()
	}
	close(renderStop)
	<-renderDone

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", logger.Error(err))
	}
	wsServer.Stop()

	log.Info("Shutdown complete")
	return nil
}

// renderLoop drives the live display: it drains the animation channel
// keeping the freshest frame, broadcasts its amplitude, releases paced
// words, and advances the scroll model.
func renderLoop(
	cfg *config.Config,
	distributor *audio.Distributor,
	pacer *display.Pacer,
	scroll *display.ScrollModel,
	wsServer *websocket.Server,
	stop <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)

	interval := time.Duration(cfg.Display.RenderIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			var frame []float32
		drain:
			for {
				select {
				case f := <-distributor.Animation():
					frame = f
				default:
					break drain
				}
			}
			if frame != nil {
				wsServer.Broadcast(websocket.MessageTypeAmplitude, map[string]any{
					"rms": audio.RMS(frame),
				})
			}

			if word, ok := pacer.Tick(now); ok {
				wsServer.Broadcast(websocket.MessageTypeWords, map[string]any{
					"released": word,
					"words":    scroll.Words(),
				})
			}

			scroll.Advance(now.Sub(last))
			last = now
		}
	}
}
