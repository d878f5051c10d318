package lunar

import (
	"errors"
	"fmt"
	"time"

	"github.com/6tail/lunar-go/calendar"

	"github.com/username/daily-harmony/pkg/dateutil"
)

// Supported year range (Gregorian and lunar) for every conversion
const (
	MinYear = 1900
	MaxYear = 2100
)

var (
	// ErrUnsupportedDateRange is returned for dates outside [MinYear, MaxYear]
	ErrUnsupportedDateRange = errors.New("date outside supported lunar calendar range")
	// ErrInvalidLunarDate is returned for lunar dates that do not exist
	ErrInvalidLunarDate = errors.New("invalid lunar date")
)

// Date is a date of the Korean/Chinese lunisolar calendar
type Date struct {
	Year  int  `json:"year"`
	Month int  `json:"month"` // 1..12, see Leap
	Day   int  `json:"day"`
	Leap  bool `json:"leap"`
}

// String renders the date as the calendar shows it, e.g. "1.15" or "윤4.8"
func (d Date) String() string {
	if d.Leap {
		return fmt.Sprintf("윤%d.%d", d.Month, d.Day)
	}
	return fmt.Sprintf("%d.%d", d.Month, d.Day)
}

// Converter converts between Gregorian and lunar dates.
// It holds no state and is safe for concurrent use.
type Converter struct{}

// NewConverter creates a new Converter
func NewConverter() *Converter {
	return &Converter{}
}

// ToLunar returns the lunar date for the given Gregorian day
func (c *Converter) ToLunar(date time.Time) (Date, error) {
	date = dateutil.Noon(date)
	if err := checkYear(date.Year()); err != nil {
		return Date{}, fmt.Errorf("to lunar %s: %w", dateutil.ISODate(date), err)
	}

	var out Date
	err := guard(func() {
		l := calendar.NewLunarFromDate(date)
		month := l.GetMonth()
		out = Date{Year: l.GetYear(), Month: month, Day: l.GetDay()}
		if month < 0 {
			out.Month = -month
			out.Leap = true
		}
	})
	if err != nil {
		return Date{}, fmt.Errorf("to lunar %s: %w", dateutil.ISODate(date), err)
	}
	return out, nil
}

// LunarNewYear returns the Gregorian date of the first day of the given lunar year
func (c *Converter) LunarNewYear(year int) (time.Time, error) {
	return c.SolarDate(year, 1, 1, false)
}

// SolarDate returns the Gregorian date of the given lunar day.
// leap selects the intercalary month when the year has one for that month.
func (c *Converter) SolarDate(year, month, day int, leap bool) (time.Time, error) {
	if err := checkYear(year); err != nil {
		return time.Time{}, fmt.Errorf("lunar %d-%d-%d: %w", year, month, day, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 30 {
		return time.Time{}, fmt.Errorf("lunar %d-%d-%d: %w", year, month, day, ErrInvalidLunarDate)
	}

	lunarMonth := month
	if leap {
		lunarMonth = -month
	}

	var out time.Time
	err := guard(func() {
		s := calendar.NewLunarFromYmd(year, lunarMonth, day).GetSolar()
		out = dateutil.Date(s.GetYear(), time.Month(s.GetMonth()), s.GetDay())
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("lunar %d-%d-%d: %w", year, month, day, err)
	}
	return out, nil
}

// SolarTermsOfYear returns the raw solar-term table of the given lunar year,
// keyed by noon-pinned Gregorian date. The table runs from the December terms of
// the previous year through the early-March terms of the next one; names are the
// converter's own (hanja, or upper-case tokens for the spill-over terms).
func (c *Converter) SolarTermsOfYear(year int) (map[time.Time]string, error) {
	if err := checkYear(year); err != nil {
		return nil, fmt.Errorf("solar terms %d: %w", year, err)
	}

	terms := make(map[time.Time]string, 31)
	err := guard(func() {
		table := calendar.NewLunarFromYmd(year, 1, 1).GetJieQiTable()
		for name, s := range table {
			if s == nil {
				continue
			}
			terms[dateutil.Date(s.GetYear(), time.Month(s.GetMonth()), s.GetDay())] = name
		}
	})
	if err != nil {
		return nil, fmt.Errorf("solar terms %d: %w", year, err)
	}
	return terms, nil
}

func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: year %d not in [%d, %d]", ErrUnsupportedDateRange, year, MinYear, MaxYear)
	}
	return nil
}

// guard runs fn and converts a lunar-go panic (its only way of rejecting
// impossible dates) into ErrInvalidLunarDate.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidLunarDate, r)
		}
	}()
	fn()
	return nil
}
