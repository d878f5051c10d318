package calendar

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

// GridCells is the number of cells in a month view (six weeks)
const GridCells = 42

// Context carries the tables a day is annotated against
type Context struct {
	Holidays   Holidays
	SolarTerms SolarTerms
	Memos      []model.Memo
}

// Annotator builds day annotations and month views
type Annotator struct {
	converter Converter
	matcher   MemoMatcher
	source    Source
	weekStart time.Weekday
	logger    *zap.Logger
}

// NewAnnotator creates a new Annotator. weekStart is the first column of month views.
func NewAnnotator(converter Converter, matcher MemoMatcher, source Source, weekStart time.Weekday, logger *zap.Logger) *Annotator {
	return &Annotator{
		converter: converter,
		matcher:   matcher,
		source:    source,
		weekStart: weekStart,
		logger:    logger,
	}
}

// Annotate returns the annotation of a single day against ctx.
// A failed lunar conversion yields a placeholder with Err set; memos are still filtered.
func (a *Annotator) Annotate(date time.Time, ctx Context) DayAnnotation {
	date = dateutil.Noon(date)
	key := dateutil.ISODate(date)

	day := DayAnnotation{
		Date:    date,
		ISO:     key,
		Weekday: date.Weekday(),
		Memos:   a.activeMemos(ctx.Memos, date),
	}

	l, err := a.converter.ToLunar(date)
	if err != nil {
		a.logger.Warn("Lunar conversion failed, showing placeholder",
			zap.String("date", key),
			zap.Error(err))
		day.Err = err
		day.Error = err.Error()
		return day
	}
	day.Lunar = &l

	if h, ok := ctx.Holidays[key]; ok {
		day.Holiday = &h
	}
	day.SolarTerm = ctx.SolarTerms[key]

	return day
}

// Day annotates a single day using the source tables of its year
func (a *Annotator) Day(date time.Time, memos []model.Memo) DayAnnotation {
	ctx := a.contextFor([]int{date.Year()}, memos)
	day := a.Annotate(date, ctx)
	day.InMonth = true
	return day
}

// Month returns the six-week grid containing the given month
func (a *Annotator) Month(year int, month time.Month, memos []model.Memo) (*MonthView, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	first := dateutil.Date(year, month, 1)
	start := dateutil.StartOfWeek(first, a.weekStart)
	end := dateutil.AddDays(start, GridCells-1)

	years := []int{start.Year()}
	for y := start.Year() + 1; y <= end.Year(); y++ {
		years = append(years, y)
	}
	ctx := a.contextFor(years, memos)

	view := &MonthView{
		Year:      year,
		Month:     month,
		WeekStart: a.weekStart,
		Days:      make([]DayAnnotation, 0, GridCells),
	}

	for i := 0; i < GridCells; i++ {
		day := a.Annotate(dateutil.AddDays(start, i), ctx)
		day.InMonth = day.Date.Month() == month && day.Date.Year() == year
		if day.InMonth {
			if day.Holiday != nil {
				view.Holidays++
			}
			if day.SolarTerm != "" {
				view.SolarTerms++
			}
			view.Memos += len(day.Memos)
		}
		view.Days = append(view.Days, day)
	}

	a.logger.Debug("Month view built",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("holidays", view.Holidays))

	return view, nil
}

// contextFor merges the source tables of the given years. A year whose tables
// cannot be built contributes nothing; its cells fall back to placeholders.
func (a *Annotator) contextFor(years []int, memos []model.Memo) Context {
	ctx := Context{
		Holidays:   make(Holidays),
		SolarTerms: make(SolarTerms),
		Memos:      memos,
	}

	for _, year := range years {
		holidays, err := a.source.HolidaysOfYear(year)
		if err != nil {
			a.logger.Warn("Holidays unavailable", zap.Int("year", year), zap.Error(err))
		}
		for key, h := range holidays {
			ctx.Holidays[key] = h
		}

		terms, err := a.source.SolarTermsOfYear(year)
		if err != nil {
			a.logger.Warn("Solar terms unavailable", zap.Int("year", year), zap.Error(err))
		}
		for key, name := range terms {
			ctx.SolarTerms[key] = name
		}
	}

	return ctx
}

func (a *Annotator) activeMemos(memos []model.Memo, date time.Time) []model.Memo {
	active := make([]model.Memo, 0)
	for _, m := range memos {
		if a.matcher.IsActive(m, date) {
			active = append(active, m)
		}
	}
	return active
}
