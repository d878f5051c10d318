package profile

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
)

// ErrNoProfile is returned when no profile has been saved yet
var ErrNoProfile = errors.New("profile not set")

// Repository persists the single local profile
type Repository interface {
	LoadProfile() (*model.Profile, error)
	SaveProfile(profile *model.Profile) error
}

// Service reads and writes the user profile
type Service struct {
	repo   Repository
	logger *zap.Logger
	mu     sync.Mutex
}

// NewService creates a new Service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the saved profile or ErrNoProfile
func (s *Service) Get() (*model.Profile, error) {
	p, err := s.repo.LoadProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if p == nil {
		return nil, ErrNoProfile
	}
	return p, nil
}

// Save validates and stores the profile, keeping the existing id when none is given
func (s *Service) Save(p model.Profile) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Name = strings.TrimSpace(p.Name)
	if p.NotificationsEnabled && p.DailyReminderTime == "" {
		p.DailyReminderTime = "09:00"
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.ID == "" {
		existing, err := s.repo.LoadProfile()
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		if existing != nil && existing.ID != "" {
			p.ID = existing.ID
		} else {
			p.ID = uuid.NewString()
		}
	}

	if err := s.repo.SaveProfile(&p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.logger.Info("Profile saved",
		zap.String("profile_id", p.ID),
		zap.Bool("notifications_enabled", p.NotificationsEnabled))
	return &p, nil
}
