package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/calendar"
	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

const (
	productID = "-//daily-harmony//Korean calendar//KO"
	uidDomain = "daily-harmony"

	CategoryHoliday   = "HOLIDAY"
	CategorySolarTerm = "SOLAR-TERM"
	CategoryMemo      = "MEMO"
)

// OccurrenceFinder expands a memo into the days it occurs on
type OccurrenceFinder interface {
	Occurrences(m model.Memo, from, to time.Time) ([]time.Time, error)
}

// Options selects what goes into an export
type Options struct {
	From       time.Time
	To         time.Time
	Holidays   bool
	SolarTerms bool
	Memos      bool
}

// Exporter renders holidays, solar terms and memos as an iCalendar feed
type Exporter struct {
	source calendar.Source
	finder OccurrenceFinder
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new Exporter
func NewExporter(source calendar.Source, finder OccurrenceFinder, logger *zap.Logger) *Exporter {
	return &Exporter{
		source: source,
		finder: finder,
		logger: logger,
		now:    time.Now,
	}
}

// Calendar builds the feed for the given range. Years or memos that fail are
// skipped with a warning.
func (e *Exporter) Calendar(memos []model.Memo, opts Options) (*ical.Calendar, error) {
	from, to := dateutil.Noon(opts.From), dateutil.Noon(opts.To)
	if to.Before(from) {
		return nil, fmt.Errorf("export range ends before it starts: %s..%s", dateutil.ISODate(from), dateutil.ISODate(to))
	}

	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName("daily-harmony")
	stamp := e.now().UTC()

	inRange := func(key string) bool {
		d, err := dateutil.ParseISODate(key)
		return err == nil && !d.Before(from) && !d.After(to)
	}

	events := 0
	for year := from.Year(); year <= to.Year(); year++ {
		if opts.Holidays {
			holidays, err := e.source.HolidaysOfYear(year)
			if err != nil {
				e.logger.Warn("Skipping holidays of year", zap.Int("year", year), zap.Error(err))
			}
			for _, h := range holidays.Sorted() {
				if !inRange(h.Date) {
					continue
				}
				addAllDay(cal, "holiday-"+h.Date, h.Label, CategoryHoliday, h.Date, stamp)
				events++
			}
		}

		if opts.SolarTerms {
			terms, err := e.source.SolarTermsOfYear(year)
			if err != nil {
				e.logger.Warn("Skipping solar terms of year", zap.Int("year", year), zap.Error(err))
			}
			for _, key := range terms.Dates() {
				if !inRange(key) {
					continue
				}
				addAllDay(cal, "term-"+key, terms[key], CategorySolarTerm, key, stamp)
				events++
			}
		}
	}

	if opts.Memos {
		for _, m := range memos {
			events += e.addMemo(cal, m, from, to, stamp)
		}
	}

	e.logger.Info("Calendar exported",
		zap.String("from", dateutil.ISODate(from)),
		zap.String("to", dateutil.ISODate(to)),
		zap.Int("events", events))

	return cal, nil
}

// Write serializes the feed for the given range to w
func (e *Exporter) Write(w io.Writer, memos []model.Memo, opts Options) error {
	cal, err := e.Calendar(memos, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// addMemo adds a rule-expressible memo as one recurring event and any other
// memo as one event per occurrence
func (e *Exporter) addMemo(cal *ical.Calendar, m model.Memo, from, to, stamp time.Time) int {
	anchor, err := dateutil.ParseISODate(m.Date)
	if err != nil {
		e.logger.Warn("Skipping memo with invalid date", zap.String("memo_id", m.ID), zap.Error(err))
		return 0
	}

	if rule, err := memo.RuleString(m); err == nil {
		if anchor.After(to) {
			return 0
		}
		ev := addAllDay(cal, "memo-"+m.ID, m.Content, CategoryMemo, m.Date, stamp)
		ev.AddProperty(ical.ComponentPropertyRrule, rule)
		setMemoDetails(ev, m)
		return 1
	}

	days, err := e.finder.Occurrences(m, from, to)
	if err != nil {
		e.logger.Warn("Skipping memo occurrences", zap.String("memo_id", m.ID), zap.Error(err))
		return 0
	}
	for _, d := range days {
		key := dateutil.ISODate(d)
		ev := addAllDay(cal, "memo-"+m.ID+"-"+key, m.Content, CategoryMemo, key, stamp)
		setMemoDetails(ev, m)
	}
	return len(days)
}

func setMemoDetails(ev *ical.VEvent, m model.Memo) {
	ev.SetDescription(fmt.Sprintf("%s (%s)", m.Type, m.RepeatType))
	if m.Completed {
		ev.SetStatus(ical.ObjectStatusCompleted)
	}
}

func addAllDay(cal *ical.Calendar, id, summary, category, isoDate string, stamp time.Time) *ical.VEvent {
	day, _ := dateutil.ParseISODate(isoDate)

	ev := cal.AddEvent(id + "@" + uidDomain)
	ev.SetDtStampTime(stamp)
	ev.SetSummary(summary)
	ev.SetAllDayStartAt(day)
	ev.SetAllDayEndAt(dateutil.AddDays(day, 1))
	ev.SetProperty(ical.ComponentPropertyCategories, category)
	return ev
}
