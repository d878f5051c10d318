package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/username/daily-harmony/pkg/dateutil"
)

// LocalUserID is the owner tag of memos created on this device
const LocalUserID = "local_user"

// MemoType is the closed set of memo kinds
type MemoType string

const (
	MemoTypeTodo        MemoType = "todo"
	MemoTypeIdea        MemoType = "idea"
	MemoTypeAppointment MemoType = "appointment"
)

// IsValid reports whether t is one of the known memo kinds
func (t MemoType) IsValid() bool {
	switch t {
	case MemoTypeTodo, MemoTypeIdea, MemoTypeAppointment:
		return true
	}
	return false
}

// RepeatType tells how a memo's anchor date generalizes to other days
type RepeatType string

const (
	RepeatNone        RepeatType = "none"
	RepeatWeekly      RepeatType = "weekly"
	RepeatMonthly     RepeatType = "monthly"
	RepeatYearlySolar RepeatType = "yearly_solar"
	RepeatYearlyLunar RepeatType = "yearly_lunar"
)

// ParseRepeatType maps user input to a RepeatType; empty input means RepeatNone.
// Unknown values are returned as-is so that callers can decide how strict to be.
func ParseRepeatType(s string) RepeatType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RepeatNone
	case "weekly":
		return RepeatWeekly
	case "monthly":
		return RepeatMonthly
	case "yearly_solar", "yearly-solar", "yearly":
		return RepeatYearlySolar
	case "yearly_lunar", "yearly-lunar", "lunar":
		return RepeatYearlyLunar
	default:
		return RepeatType(s)
	}
}

// IsValid reports whether r is a known repetition rule (empty counts as none)
func (r RepeatType) IsValid() bool {
	switch r {
	case "", RepeatNone, RepeatWeekly, RepeatMonthly, RepeatYearlySolar, RepeatYearlyLunar:
		return true
	}
	return false
}

// Memo is a dated user note. The JSON shape is the persisted format.
type Memo struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Date            string     `json:"date"` // anchor date, YYYY-MM-DD
	Type            MemoType   `json:"type"`
	Content         string     `json:"content"`
	Completed       bool       `json:"completed"`
	CreatedAt       string     `json:"created_at"` // RFC 3339
	RepeatType      RepeatType `json:"repeat_type"`
	ReminderTime    string     `json:"reminder_time,omitempty"`    // HH:MM
	ReminderOffsets []int      `json:"reminder_offsets,omitempty"` // minutes before ReminderTime
}

// ErrInvalidMemo is returned by Validate for malformed memos
var ErrInvalidMemo = errors.New("invalid memo")

// Validate checks the memo fields a user can set
func (m *Memo) Validate() error {
	if strings.TrimSpace(m.Content) == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidMemo)
	}
	if _, err := dateutil.ParseISODate(m.Date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMemo, err)
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMemo, m.Type)
	}
	if !m.RepeatType.IsValid() {
		return fmt.Errorf("%w: unknown repeat type %q", ErrInvalidMemo, m.RepeatType)
	}
	if m.ReminderTime != "" {
		if _, _, err := dateutil.ParseClock(m.ReminderTime); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMemo, err)
		}
	}
	if m.ReminderTime == "" && len(m.ReminderOffsets) > 0 {
		return fmt.Errorf("%w: reminder offsets need a reminder time", ErrInvalidMemo)
	}
	for _, off := range m.ReminderOffsets {
		if off < 0 {
			return fmt.Errorf("%w: reminder offset %d is negative", ErrInvalidMemo, off)
		}
	}
	return nil
}

// Profile is the user's birth data and notification preferences
type Profile struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	BirthDate            string `json:"birth_date"`           // YYYY-MM-DD
	BirthTime            string `json:"birth_time,omitempty"` // HH:MM, optional
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DailyReminderTime    string `json:"daily_reminder_time,omitempty"` // HH:MM
}

// ErrInvalidProfile is returned by Validate for malformed profiles
var ErrInvalidProfile = errors.New("invalid profile")

// Validate checks the profile fields
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if _, err := dateutil.ParseISODate(p.BirthDate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if p.BirthTime != "" {
		if _, _, err := dateutil.ParseClock(p.BirthTime); err != nil {
			return fmt.Errorf("%w: birth time: %v", ErrInvalidProfile, err)
		}
	}
	if p.DailyReminderTime != "" {
		if _, _, err := dateutil.ParseClock(p.DailyReminderTime); err != nil {
			return fmt.Errorf("%w: daily reminder time: %v", ErrInvalidProfile, err)
		}
	}
	return nil
}
