package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultMemoryDir returns the default root for the file-backed record store.
// Uses XDG_STATE_HOME: conversation memory is runtime state, not user data.
func DefaultMemoryDir() string {
	return filepath.Join(xdg.StateHome, "sinema", "memory")
}

// DefaultSQLitePath returns the default database path for the sqlite driver.
func DefaultSQLitePath() string {
	return filepath.Join(xdg.StateHome, "sinema", "memory.db")
}
