package history

import (
	"fmt"
	"os"
	"path/filepath"

	"bcup-go/internal/bcup"
	"bcup-go/internal/config"
)

// NewStoreFromConfig creates a HistoryStore implementation based on the
// history config type.
func NewStoreFromConfig(cfg config.HistoryConfig) (bcup.HistoryStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "runs.db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
