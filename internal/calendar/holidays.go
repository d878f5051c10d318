package calendar

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/pkg/dateutil"
)

const (
	seollalName  = "설날"
	seollalLabel = "설날 연휴"
	chuseokName  = "추석"
	chuseokLabel = "추석 연휴"
	buddhaName   = "부처님오신날"
)

type fixedHoliday struct {
	month         time.Month
	day           int
	name          string
	substitutable bool
}

// Registration order matters: an earlier primary holiday keeps its date.
var fixedHolidays = []fixedHoliday{
	{time.January, 1, "신정", false},
	{time.March, 1, "삼일절", true},
	{time.May, 5, "어린이날", true},
	{time.June, 6, "현충일", false},
	{time.August, 15, "광복절", true},
	{time.October, 3, "개천절", true},
	{time.October, 9, "한글날", true},
	{time.December, 25, "성탄절", true},
}

type lunarWindow struct {
	month, day int
	name       string
	label      string
}

var lunarWindows = []lunarWindow{
	{1, 1, seollalName, seollalLabel},
	{8, 15, chuseokName, chuseokLabel},
}

// SubstituteLabel returns the calendar label of a substitute holiday for name
func SubstituteLabel(name string) string {
	return fmt.Sprintf("대체공휴일(%s)", name)
}

// HolidayResolver computes the Korean public holidays of a year
type HolidayResolver struct {
	converter Converter
	logger    *zap.Logger
}

// NewHolidayResolver creates a new HolidayResolver
func NewHolidayResolver(converter Converter, logger *zap.Logger) *HolidayResolver {
	return &HolidayResolver{
		converter: converter,
		logger:    logger,
	}
}

// HolidaysOfYear returns every holiday of the given Gregorian year
func (hr *HolidayResolver) HolidaysOfYear(year int) (Holidays, error) {
	b := &holidayBuilder{
		holidays: make(Holidays, 24),
		logger:   hr.logger,
	}

	for _, fh := range fixedHolidays {
		date := dateutil.Date(year, fh.month, fh.day)
		b.addPrimary(date, fh.name, fh.name, OriginFixed)
		if fh.substitutable {
			b.substituteIfWeekend(date, fh.name, OriginFixed)
		}
	}

	for _, w := range lunarWindows {
		day, err := hr.converter.SolarDate(year, w.month, w.day, false)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s %d: %w", w.name, year, err)
		}

		hasSunday := false
		for offset := -1; offset <= 1; offset++ {
			d := dateutil.AddDays(day, offset)
			b.addPrimary(d, w.name, w.label, OriginLunar)
			if d.Weekday() == time.Sunday {
				hasSunday = true
			}
		}
		// Only a Sunday inside the window earns a substitute day.
		if hasSunday {
			b.queueSubstitute(dateutil.AddDays(day, 2), w.name, OriginLunar)
		}
	}

	buddha, err := hr.converter.SolarDate(year, 4, 8, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s %d: %w", buddhaName, year, err)
	}
	b.addPrimary(buddha, buddhaName, buddhaName, OriginLunar)
	b.substituteIfWeekend(buddha, buddhaName, OriginLunar)

	b.flushSubstitutes()

	hr.logger.Debug("Holidays resolved",
		zap.Int("year", year),
		zap.Int("count", len(b.holidays)))

	return b.holidays, nil
}

// holidayBuilder registers primary holidays first and substitutes last,
// so a substitute never displaces a primary holiday.
type holidayBuilder struct {
	holidays    Holidays
	substitutes []pendingSubstitute
	logger      *zap.Logger
}

type pendingSubstitute struct {
	date   time.Time
	name   string
	origin string
}

func (b *holidayBuilder) addPrimary(date time.Time, name, label, origin string) {
	key := dateutil.ISODate(date)
	if existing, ok := b.holidays[key]; ok {
		b.logger.Debug("Holiday collision, keeping earlier entry",
			zap.String("date", key),
			zap.String("kept", existing.Label),
			zap.String("dropped", label))
		return
	}
	b.holidays[key] = Holiday{
		Date:   key,
		Name:   name,
		Label:  label,
		Origin: origin,
	}
}

func (b *holidayBuilder) substituteIfWeekend(date time.Time, name, origin string) {
	switch date.Weekday() {
	case time.Saturday:
		b.queueSubstitute(dateutil.AddDays(date, 2), name, origin)
	case time.Sunday:
		b.queueSubstitute(dateutil.AddDays(date, 1), name, origin)
	}
}

func (b *holidayBuilder) queueSubstitute(date time.Time, name, origin string) {
	b.substitutes = append(b.substitutes, pendingSubstitute{date: date, name: name, origin: origin})
}

// flushSubstitutes registers queued substitutes in order. A substitute whose
// date is taken moves forward to the next weekday that holds no holiday.
func (b *holidayBuilder) flushSubstitutes() {
	for _, sub := range b.substitutes {
		date := sub.date
		for b.taken(date) {
			date = dateutil.AddDays(date, 1)
		}

		key := dateutil.ISODate(date)
		if !dateutil.IsSameDay(date, sub.date) {
			b.logger.Debug("Substitute date already taken, moving forward",
				zap.String("holiday", sub.name),
				zap.String("from", dateutil.ISODate(sub.date)),
				zap.String("to", key))
		}
		b.holidays[key] = Holiday{
			Date:       key,
			Name:       sub.name,
			Label:      SubstituteLabel(sub.name),
			Substitute: true,
			Origin:     sub.origin,
		}
	}
	b.substitutes = nil
}

func (b *holidayBuilder) taken(date time.Time) bool {
	if dateutil.IsWeekend(date) {
		return true
	}
	_, ok := b.holidays[dateutil.ISODate(date)]
	return ok
}
