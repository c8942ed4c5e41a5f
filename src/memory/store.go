package memory

import (
	"context"
	"errors"
)

// Store errors. Driver infrastructure failures (connection refused, bad
// permissions) surface from Load and Save; missing or corrupt records never
// do — Load degrades those to a default record and reports the path taken
// through LoadSource.
var (
	ErrInvalidDriver = errors.New("memory: unknown store driver")
	ErrInvalidConfig = errors.New("memory: invalid store configuration")
	ErrStoreClosed   = errors.New("memory: store is closed")
)

// LoadSource tells the caller which path Load took, so degradation is
// observable without parsing logs.
type LoadSource int

const (
	// SourceStored means the persisted record was found and parsed.
	SourceStored LoadSource = iota
	// SourceDefaultNew means no record existed; a fresh default was returned.
	SourceDefaultNew
	// SourceDefaultRecovered means a record existed but was unreadable or
	// corrupt; a fresh default was returned and the failure logged.
	SourceDefaultRecovered
)

func (s LoadSource) String() string {
	switch s {
	case SourceStored:
		return "stored"
	case SourceDefaultNew:
		return "default-new"
	case SourceDefaultRecovered:
		return "default-recovered"
	default:
		return "unknown"
	}
}

// Store is the read/write interface for persisted conversation records.
type Store interface {
	// Load fetches the record for userID. Missing or corrupt records are
	// replaced with a fresh default; the returned LoadSource distinguishes
	// the three outcomes. Errors are driver-infrastructure failures only.
	Load(ctx context.Context, userID string) (*ConversationRecord, LoadSource, error)

	// Save persists the record, overwriting any previous version.
	Save(ctx context.Context, record *ConversationRecord) error

	// Close releases driver resources.
	Close() error
}
