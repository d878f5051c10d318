package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/username/daily-harmony/internal/model"
)

// memoRecord is the memos table row. Position keeps the list order.
type memoRecord struct {
	ID              string `gorm:"primaryKey"`
	Position        int    `gorm:"index"`
	UserID          string
	Date            string `gorm:"index"`
	Type            string
	Content         string
	Completed       bool
	Created         string `gorm:"column:created_at"`
	RepeatType      string
	ReminderTime    string
	ReminderOffsets string // JSON array
}

func (memoRecord) TableName() string { return "memos" }

type profileRecord struct {
	ID                   string `gorm:"primaryKey"`
	Name                 string
	BirthDate            string
	BirthTime            string
	NotificationsEnabled bool
	DailyReminderTime    string
}

func (profileRecord) TableName() string { return "profiles" }

// SQLiteStore keeps memos and the profile in a SQLite database through gorm
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and migrates) the database at path
func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "daily-harmony.db"
	}
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&memoRecord{}, &profileRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("SQLite store opened", zap.String("path", path))

	return &SQLiteStore{
		db:     db,
		logger: log,
	}, nil
}

// LoadAllMemos returns the memos in stored order
func (s *SQLiteStore) LoadAllMemos() ([]model.Memo, error) {
	var records []memoRecord
	if err := s.db.Order("position asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load memos: %w", err)
	}

	memos := make([]model.Memo, 0, len(records))
	for _, r := range records {
		m, err := r.toMemo()
		if err != nil {
			return nil, err
		}
		memos = append(memos, m)
	}
	return memos, nil
}

// SaveAllMemos replaces the memo table in one transaction
func (s *SQLiteStore) SaveAllMemos(memos []model.Memo) error {
	records := make([]memoRecord, 0, len(memos))
	for i, m := range memos {
		r, err := newMemoRecord(m, i)
		if err != nil {
			return err
		}
		records = append(records, r)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&memoRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save memos: %w", err)
	}

	s.logger.Debug("Memos saved", zap.Int("count", len(records)))
	return nil
}

// LoadProfile returns the stored profile, or nil
func (s *SQLiteStore) LoadProfile() (*model.Profile, error) {
	var r profileRecord
	if err := s.db.First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	return &model.Profile{
		ID:                   r.ID,
		Name:                 r.Name,
		BirthDate:            r.BirthDate,
		BirthTime:            r.BirthTime,
		NotificationsEnabled: r.NotificationsEnabled,
		DailyReminderTime:    r.DailyReminderTime,
	}, nil
}

// SaveProfile replaces the stored profile
func (s *SQLiteStore) SaveProfile(profile *model.Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}

	r := profileRecord{
		ID:                   profile.ID,
		Name:                 profile.Name,
		BirthDate:            profile.BirthDate,
		BirthTime:            profile.BirthTime,
		NotificationsEnabled: profile.NotificationsEnabled,
		DailyReminderTime:    profile.DailyReminderTime,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&profileRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Profile saved", zap.String("name", profile.Name))
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newMemoRecord(m model.Memo, position int) (memoRecord, error) {
	offsets := ""
	if len(m.ReminderOffsets) > 0 {
		data, err := json.Marshal(m.ReminderOffsets)
		if err != nil {
			return memoRecord{}, fmt.Errorf("failed to encode reminder offsets: %w", err)
		}
		offsets = string(data)
	}

	return memoRecord{
		ID:              m.ID,
		Position:        position,
		UserID:          m.UserID,
		Date:            m.Date,
		Type:            string(m.Type),
		Content:         m.Content,
		Completed:       m.Completed,
		Created:         m.CreatedAt,
		RepeatType:      string(m.RepeatType),
		ReminderTime:    m.ReminderTime,
		ReminderOffsets: offsets,
	}, nil
}

func (r memoRecord) toMemo() (model.Memo, error) {
	m := model.Memo{
		ID:           r.ID,
		UserID:       r.UserID,
		Date:         r.Date,
		Type:         model.MemoType(r.Type),
		Content:      r.Content,
		Completed:    r.Completed,
		CreatedAt:    r.Created,
		RepeatType:   model.RepeatType(r.RepeatType),
		ReminderTime: r.ReminderTime,
	}
	if r.ReminderOffsets != "" {
		if err := json.Unmarshal([]byte(r.ReminderOffsets), &m.ReminderOffsets); err != nil {
			return model.Memo{}, fmt.Errorf("failed to decode reminder offsets of memo %s: %w", r.ID, err)
		}
	}
	return m, nil
}
