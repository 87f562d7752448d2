package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rabble-ai/rabble/pkg/logger"

	_ "modernc.org/sqlite"
)

// Import logger functions
var (
	String = logger.String
	Error  = logger.Error
)

// Open opens (creating if needed) the SQLite database at the given path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// TranscriptionRecord represents a transcription record in the database
type TranscriptionRecord struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"timestamp"`
	Content   string    `json:"text"`
	Engine    string    `json:"engine"`
	Window    int64     `json:"window"`
}

// TranscriptionStorage handles storage of transcription records
type TranscriptionStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewTranscriptionStorage creates a new SQLite transcription storage
func NewTranscriptionStorage(db *sql.DB, logger *logger.Logger) *TranscriptionStorage {
	storage := &TranscriptionStorage{
		db:     db,
		logger: logger.Named("sqlite-tx"),
	}

	// Initialize database
	if err := storage.initDB(); err != nil {
		logger.Error("Failed to initialize transcription storage", Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *TranscriptionStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS transcriptions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL,
			content TEXT NOT NULL,
			engine TEXT NOT NULL,
			window INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create transcriptions table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_created_at ON transcriptions(created_at)`)
	if err != nil {
		return fmt.Errorf("failed to create created_at index: %w", err)
	}

	return nil
}

// StoreTranscription stores one accepted fragment
func (s *TranscriptionStorage) StoreTranscription(content, engine string, window int64) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO transcriptions (created_at, content, engine, window)
		VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		content,
		engine,
		window,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transcription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetTranscriptions returns transcriptions with pagination, newest first
func (s *TranscriptionStorage) GetTranscriptions(limit, offset int) ([]*TranscriptionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, content, engine, window
		FROM transcriptions
		ORDER BY id DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	defer rows.Close()

	var records []*TranscriptionRecord
	for rows.Next() {
		var record TranscriptionRecord
		var createdAt string

		if err := rows.Scan(
			&record.ID,
			&createdAt,
			&record.Content,
			&record.Engine,
			&record.Window,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			s.logger.Error("Failed to parse transcription timestamp",
				String("created_at", createdAt), Error(err))
		} else {
			record.CreatedAt = parsed
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcriptions: %w", err)
	}

	return records, nil
}

// CountTranscriptions returns the number of stored fragments
func (s *TranscriptionStorage) CountTranscriptions() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM transcriptions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transcriptions: %w", err)
	}
	return count, nil
}
