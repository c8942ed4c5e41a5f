package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FileStore persists one JSON file per user id under a root directory. This
// is the default driver; storage may be externally ephemeral, so every
// operation is best-effort.
type FileStore struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the root directory if absent and returns the store.
func NewFileStore(fs afero.Fs, dir string, logger *slog.Logger) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("memory: init directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{fs: fs, dir: dir, logger: logger.With("component", "file_store")}, nil
}

func (s *FileStore) pathForUser(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("memory: invalid user id (empty)")
	}
	if strings.ContainsAny(userID, "/\\") {
		return "", fmt.Errorf("memory: invalid user id %q (contains path separator)", userID)
	}
	return filepath.Join(s.dir, userID+".json"), nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, userID string) (*ConversationRecord, LoadSource, error) {
	path, err := s.pathForUser(userID)
	if err != nil {
		return nil, SourceDefaultNew, err
	}

	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRecord(userID), SourceDefaultNew, nil
		}
		s.logger.Warn("unreadable record, using default", "user_id", userID, "error", err)
		return NewRecord(userID), SourceDefaultRecovered, nil
	}

	var record ConversationRecord
	if err := json.Unmarshal(b, &record); err != nil || !record.Valid() {
		s.logger.Warn("corrupt record, using default", "user_id", userID, "path", path, "error", err)
		return NewRecord(userID), SourceDefaultRecovered, nil
	}
	record.UserID = userID
	return &record, SourceStored, nil
}

// Save implements Store. The write goes through a temp file and rename so a
// crash mid-write never leaves a half-written record behind.
func (s *FileStore) Save(ctx context.Context, record *ConversationRecord) error {
	path, err := s.pathForUser(record.UserID)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: marshal record for %s: %w", record.UserID, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o600); err != nil {
		return fmt.Errorf("memory: write temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("memory: atomic rename %s: %w", path, err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
