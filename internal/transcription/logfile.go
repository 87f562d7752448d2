package transcription

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TranscriptLog is the per-run append-only transcript file. One
// accepted fragment per line; nothing is ever rewritten.
type TranscriptLog struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewTranscriptLog creates the log directory if needed and opens a new
// file named after the current local time.
func NewTranscriptLog(dir string) (*TranscriptLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript log directory: %w", err)
	}

	name := fmt.Sprintf("transcription_%s.log", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript log: %w", err)
	}

	return &TranscriptLog{file: file, path: path}, nil
}

// Path returns the log file's location.
func (l *TranscriptLog) Path() string {
	return l.path
}

// Append writes one fragment as a single line.
func (l *TranscriptLog) Append(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("transcript log is closed")
	}
	if _, err := fmt.Fprintln(l.file, text); err != nil {
		return fmt.Errorf("failed to append to transcript log: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (l *TranscriptLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
