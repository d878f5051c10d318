package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
)

// Storage backends
const (
	TypeFile   = "file"
	TypeSQLite = "sqlite"
)

// Store persists memos and the user profile
type Store interface {
	// LoadAllMemos returns every memo in stored order (newest first)
	LoadAllMemos() ([]model.Memo, error)

	// SaveAllMemos replaces the stored memo list
	SaveAllMemos(memos []model.Memo) error

	// LoadProfile returns the stored profile, or nil if none was saved yet
	LoadProfile() (*model.Profile, error)

	// SaveProfile replaces the stored profile
	SaveProfile(profile *model.Profile) error

	// Close releases the backend
	Close() error
}

// Open creates the store of the given type
func Open(storeType, dir, sqlitePath string, logger *zap.Logger) (Store, error) {
	switch storeType {
	case "", TypeFile:
		return NewFileStore(dir, logger)
	case TypeSQLite:
		return NewSQLiteStore(sqlitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", storeType)
	}
}
