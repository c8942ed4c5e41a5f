package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversation_records (
	user_id    TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps records as JSON rows in a local sqlite database. Useful
// when the deployment has a writable volume but per-user files are awkward.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

type recordRow struct {
	UserID    string    `db:"user_id"`
	Record    string    `db:"record"`
	UpdatedAt time.Time `db:"updated_at"`
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("memory: apply schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{db: db, logger: logger.With("component", "sqlite_store")}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, userID string) (*ConversationRecord, LoadSource, error) {
	query := `SELECT user_id, record, updated_at FROM conversation_records WHERE user_id = ?`
	var row recordRow
	err := sqlscan.Get(ctx, s.db, &row, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewRecord(userID), SourceDefaultNew, nil
		}
		return nil, SourceDefaultNew, fmt.Errorf("memory: query record: %w", err)
	}

	var record ConversationRecord
	if err := json.Unmarshal([]byte(row.Record), &record); err != nil || !record.Valid() {
		s.logger.Warn("corrupt record, using default", "user_id", userID, "error", err)
		return NewRecord(userID), SourceDefaultRecovered, nil
	}
	record.UserID = userID
	return &record, SourceStored, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, record *ConversationRecord) error {
	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("memory: marshal record for %s: %w", record.UserID, err)
	}

	query := `INSERT INTO conversation_records (user_id, record, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`
	_, err = s.db.ExecContext(ctx, query, record.UserID, string(b), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("memory: upsert record: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error { return s.db.Close() }
