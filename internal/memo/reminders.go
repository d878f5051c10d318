package memo

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

const minutesPerDay = 24 * 60

// Reminder is a single notification due for a memo occurrence
type Reminder struct {
	MemoID        string    `json:"memo_id"`
	Content       string    `json:"content"`
	Occurrence    string    `json:"occurrence"` // ISO date of the memo occurrence
	At            time.Time `json:"at"`
	OffsetMinutes int       `json:"offset_minutes"`
}

// RemindersOn returns the reminders of the memo occurrences on day.
// Fire times are in loc and may fall on an earlier day when offsets are large.
func (mt *Matcher) RemindersOn(memos []model.Memo, day time.Time, loc *time.Location) []Reminder {
	if loc == nil {
		loc = time.Local
	}
	day = dateutil.Noon(day)

	var out []Reminder
	for _, m := range memos {
		if m.ReminderTime == "" || m.Completed {
			continue
		}
		hour, minute, err := dateutil.ParseClock(m.ReminderTime)
		if err != nil {
			mt.logger.Warn("Memo has an invalid reminder time",
				zap.String("memo_id", m.ID),
				zap.String("reminder_time", m.ReminderTime))
			continue
		}
		if !mt.IsActive(m, day) {
			continue
		}

		base := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		offsets := m.ReminderOffsets
		if len(offsets) == 0 {
			offsets = []int{0}
		}
		for _, off := range offsets {
			out = append(out, Reminder{
				MemoID:        m.ID,
				Content:       m.Content,
				Occurrence:    dateutil.ISODate(day),
				At:            base.Add(-time.Duration(off) * time.Minute),
				OffsetMinutes: off,
			})
		}
	}
	return out
}

// RemindersBetween returns the reminders firing in [from, to), ordered by time
func (mt *Matcher) RemindersBetween(memos []model.Memo, from, to time.Time, loc *time.Location) []Reminder {
	if loc == nil {
		loc = time.Local
	}
	if !from.Before(to) {
		return nil
	}

	// Offsets can pull a reminder onto an earlier day, so look ahead far enough.
	lookahead := 0
	for _, m := range memos {
		for _, off := range m.ReminderOffsets {
			if days := (off + minutesPerDay - 1) / minutesPerDay; days > lookahead {
				lookahead = days
			}
		}
	}

	start := dateutil.Noon(from.In(loc))
	end := dateutil.AddDays(dateutil.Noon(to.In(loc)), lookahead)

	var out []Reminder
	for d := start; !d.After(end); d = dateutil.AddDays(d, 1) {
		for _, r := range mt.RemindersOn(memos, d, loc) {
			if !r.At.Before(from) && r.At.Before(to) {
				out = append(out, r)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
