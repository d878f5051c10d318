package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
)

const (
	memosFile   = "memos.json"
	profileFile = "profile.json"
)

// FileStore keeps memos and the profile as JSON documents in a directory
type FileStore struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates a new FileStore, creating dir if needed
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger,
	}, nil
}

// LoadAllMemos loads the memo list; a missing file means no memos
func (fs *FileStore) LoadAllMemos() ([]model.Memo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	memos := []model.Memo{}
	found, err := fs.readJSON(memosFile, &memos)
	if err != nil {
		return nil, err
	}
	if !found || memos == nil {
		return []model.Memo{}, nil
	}

	fs.logger.Debug("Memos loaded", zap.Int("count", len(memos)))
	return memos, nil
}

// SaveAllMemos writes the memo list
func (fs *FileStore) SaveAllMemos(memos []model.Memo) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if memos == nil {
		memos = []model.Memo{}
	}
	if err := fs.writeJSON(memosFile, memos); err != nil {
		return err
	}

	fs.logger.Debug("Memos saved", zap.Int("count", len(memos)))
	return nil
}

// LoadProfile loads the profile; nil when none was saved yet
func (fs *FileStore) LoadProfile() (*model.Profile, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var profile model.Profile
	found, err := fs.readJSON(profileFile, &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile writes the profile
func (fs *FileStore) SaveProfile(profile *model.Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.writeJSON(profileFile, profile); err != nil {
		return err
	}

	fs.logger.Info("Profile saved", zap.String("name", profile.Name))
	return nil
}

// Close is a no-op for the file store
func (fs *FileStore) Close() error {
	return nil
}

func (fs *FileStore) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(fs.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

// writeJSON writes v atomically: temp file in the same directory, then rename
func (fs *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(fs.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(fs.dir, name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
