package biorhythm

import (
	"errors"
	"math"
	"time"

	"github.com/username/daily-harmony/pkg/dateutil"
)

// Cycle lengths in days
const (
	PhysicalPeriod     = 23
	EmotionalPeriod    = 28
	IntellectualPeriod = 33
)

// ErrBeforeBirth is returned when the target date precedes the birth date
var ErrBeforeBirth = errors.New("target date is before birth date")

// Index holds the three cycle values of a day, each in [-100, 100]
type Index struct {
	Date         string `json:"date"`
	Days         int    `json:"days"` // days since birth
	Physical     int    `json:"physical"`
	Emotional    int    `json:"emotional"`
	Intellectual int    `json:"intellectual"`
}

// Calculate returns the biorhythm index of target for someone born on birth
func Calculate(birth, target time.Time) (Index, error) {
	days := dateutil.DaysBetween(birth, target)
	if days < 0 {
		return Index{}, ErrBeforeBirth
	}

	return Index{
		Date:         dateutil.ISODate(dateutil.Noon(target)),
		Days:         days,
		Physical:     cycle(days, PhysicalPeriod),
		Emotional:    cycle(days, EmotionalPeriod),
		Intellectual: cycle(days, IntellectualPeriod),
	}, nil
}

// Series returns the indices of every day in [from, to]
func Series(birth, from, to time.Time) ([]Index, error) {
	from, to = dateutil.Noon(from), dateutil.Noon(to)

	var out []Index
	for d := from; !d.After(to); d = dateutil.AddDays(d, 1) {
		idx, err := Calculate(birth, d)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

func cycle(days, period int) int {
	return int(math.Round(math.Sin(2*math.Pi*float64(days)/float64(period)) * 100))
}
