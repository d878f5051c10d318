package calendar

import (
	"sort"
	"time"

	"github.com/username/daily-harmony/internal/lunar"
	"github.com/username/daily-harmony/internal/model"
)

// Holiday origins
const (
	OriginFixed    = "fixed"
	OriginLunar    = "lunar"
	OriginOverride = "override"
)

// Holiday represents a public holiday or a substitute holiday on a specific date
type Holiday struct {
	Date       string `json:"date"`
	Name       string `json:"name"`  // holiday the entry belongs to, e.g. "설날"
	Label      string `json:"label"` // what the calendar shows, e.g. "설날 연휴"
	Substitute bool   `json:"substitute"`
	Origin     string `json:"origin"`
}

// Holidays maps ISO dates to holidays
type Holidays map[string]Holiday

// Labels returns the plain date -> label mapping
func (h Holidays) Labels() map[string]string {
	labels := make(map[string]string, len(h))
	for date, holiday := range h {
		labels[date] = holiday.Label
	}
	return labels
}

// Sorted returns the holidays ordered by date
func (h Holidays) Sorted() []Holiday {
	out := make([]Holiday, 0, len(h))
	for _, holiday := range h {
		out = append(out, holiday)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// SolarTerms maps ISO dates to canonical Korean solar-term names
type SolarTerms map[string]string

// Dates returns the ISO dates of the terms in order
func (s SolarTerms) Dates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Source provides the per-year holiday and solar-term tables
type Source interface {
	// HolidaysOfYear returns all holidays of a Gregorian year
	HolidaysOfYear(year int) (Holidays, error)

	// SolarTermsOfYear returns the solar terms falling in a Gregorian year
	SolarTermsOfYear(year int) (SolarTerms, error)
}

// Converter is the subset of lunar.Converter the calendar needs
type Converter interface {
	ToLunar(date time.Time) (lunar.Date, error)
	SolarDate(year, month, day int, leap bool) (time.Time, error)
	SolarTermsOfYear(year int) (map[time.Time]string, error)
}

// MemoMatcher decides whether a memo shows up on a date
type MemoMatcher interface {
	IsActive(m model.Memo, date time.Time) bool
}

// DayAnnotation is everything the calendar shows for one day
type DayAnnotation struct {
	Date      time.Time    `json:"-"`
	ISO       string       `json:"date"`
	Weekday   time.Weekday `json:"weekday"`
	Lunar     *lunar.Date  `json:"lunar,omitempty"`
	Holiday   *Holiday     `json:"holiday,omitempty"`
	SolarTerm string       `json:"solar_term,omitempty"`
	Memos     []model.Memo `json:"memos"`
	InMonth   bool         `json:"in_month"`
	Err       error        `json:"-"`
	Error     string       `json:"error,omitempty"`
}

// MonthView represents the calendar grid of a month
type MonthView struct {
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	WeekStart  time.Weekday    `json:"week_start"`
	Holidays   int             `json:"holidays"`    // in-month days carrying a holiday
	SolarTerms int             `json:"solar_terms"` // in-month days carrying a term
	Memos      int             `json:"memos"`       // memo occurrences within the month
	Days       []DayAnnotation `json:"days"`
}
