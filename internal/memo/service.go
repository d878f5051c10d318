package memo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
)

var (
	// ErrMemoNotFound is returned when no memo has the requested id
	ErrMemoNotFound = errors.New("memo not found")
	// ErrInvalidMemo is returned when a memo fails validation
	ErrInvalidMemo = model.ErrInvalidMemo
)

// Repository persists the whole memo list
type Repository interface {
	LoadAllMemos() ([]model.Memo, error)
	SaveAllMemos(memos []model.Memo) error
}

// NewMemo holds the user-supplied fields of a memo
type NewMemo struct {
	Date            string           `json:"date"`
	Type            model.MemoType   `json:"type"`
	Content         string           `json:"content"`
	RepeatType      model.RepeatType `json:"repeat_type"`
	ReminderTime    string           `json:"reminder_time,omitempty"`
	ReminderOffsets []int            `json:"reminder_offsets,omitempty"`
}

// Patch holds the fields to change on an existing memo; nil fields are kept
type Patch struct {
	Date            *string           `json:"date,omitempty"`
	Type            *model.MemoType   `json:"type,omitempty"`
	Content         *string           `json:"content,omitempty"`
	Completed       *bool             `json:"completed,omitempty"`
	RepeatType      *model.RepeatType `json:"repeat_type,omitempty"`
	ReminderTime    *string           `json:"reminder_time,omitempty"`
	ReminderOffsets *[]int            `json:"reminder_offsets,omitempty"`
}

// Service manages the memo list. Newest memos come first.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewService creates a new Service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// List returns all memos, newest first
func (s *Service) List() ([]model.Memo, error) {
	memos, err := s.repo.LoadAllMemos()
	if err != nil {
		return nil, fmt.Errorf("failed to load memos: %w", err)
	}
	return memos, nil
}

// Get returns the memo with the given id
func (s *Service) Get(id string) (model.Memo, error) {
	memos, err := s.List()
	if err != nil {
		return model.Memo{}, err
	}
	idx := indexOf(memos, id)
	if idx < 0 {
		return model.Memo{}, fmt.Errorf("%w: %s", ErrMemoNotFound, id)
	}
	return memos[idx], nil
}

// Add creates a memo and stores it at the front of the list
func (s *Service) Add(in NewMemo) (model.Memo, error) {
	m := model.Memo{
		ID:              uuid.NewString(),
		UserID:          model.LocalUserID,
		Date:            strings.TrimSpace(in.Date),
		Type:            in.Type,
		Content:         strings.TrimSpace(in.Content),
		CreatedAt:       s.now().UTC().Format(time.RFC3339),
		RepeatType:      in.RepeatType,
		ReminderTime:    in.ReminderTime,
		ReminderOffsets: slices.Clone(in.ReminderOffsets),
	}
	if m.Type == "" {
		m.Type = model.MemoTypeTodo
	}
	if m.RepeatType == "" {
		m.RepeatType = model.RepeatNone
	}
	if err := m.Validate(); err != nil {
		return model.Memo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	memos, err := s.List()
	if err != nil {
		return model.Memo{}, err
	}

	memos = append([]model.Memo{m}, memos...)
	if err := s.repo.SaveAllMemos(memos); err != nil {
		return model.Memo{}, fmt.Errorf("failed to save memos: %w", err)
	}

	s.logger.Info("Memo added",
		zap.String("memo_id", m.ID),
		zap.String("date", m.Date),
		zap.String("repeat_type", string(m.RepeatType)))

	return m, nil
}

// Toggle flips the completed flag of a memo
func (s *Service) Toggle(id string) (model.Memo, error) {
	return s.modify(id, func(m *model.Memo) error {
		m.Completed = !m.Completed
		return nil
	})
}

// Update applies p to the memo with the given id
func (s *Service) Update(id string, p Patch) (model.Memo, error) {
	return s.modify(id, func(m *model.Memo) error {
		if p.Date != nil {
			m.Date = strings.TrimSpace(*p.Date)
		}
		if p.Type != nil {
			m.Type = *p.Type
		}
		if p.Content != nil {
			m.Content = strings.TrimSpace(*p.Content)
		}
		if p.Completed != nil {
			m.Completed = *p.Completed
		}
		if p.RepeatType != nil {
			m.RepeatType = *p.RepeatType
		}
		if p.ReminderTime != nil {
			m.ReminderTime = *p.ReminderTime
		}
		if p.ReminderOffsets != nil {
			m.ReminderOffsets = slices.Clone(*p.ReminderOffsets)
		}
		return m.Validate()
	})
}

// Delete removes the memo with the given id
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	memos, err := s.List()
	if err != nil {
		return err
	}

	idx := indexOf(memos, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMemoNotFound, id)
	}

	memos = append(memos[:idx], memos[idx+1:]...)
	if err := s.repo.SaveAllMemos(memos); err != nil {
		return fmt.Errorf("failed to save memos: %w", err)
	}

	s.logger.Info("Memo deleted", zap.String("memo_id", id))
	return nil
}

func (s *Service) modify(id string, fn func(m *model.Memo) error) (model.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	memos, err := s.List()
	if err != nil {
		return model.Memo{}, err
	}

	idx := indexOf(memos, id)
	if idx < 0 {
		return model.Memo{}, fmt.Errorf("%w: %s", ErrMemoNotFound, id)
	}

	updated := memos[idx]
	if err := fn(&updated); err != nil {
		return model.Memo{}, err
	}
	memos[idx] = updated

	if err := s.repo.SaveAllMemos(memos); err != nil {
		return model.Memo{}, fmt.Errorf("failed to save memos: %w", err)
	}

	s.logger.Info("Memo updated",
		zap.String("memo_id", id),
		zap.Bool("completed", updated.Completed))

	return updated, nil
}

func indexOf(memos []model.Memo, id string) int {
	for i, m := range memos {
		if m.ID == id {
			return i
		}
	}
	return -1
}
