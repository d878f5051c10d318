package memo

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

// ErrNoRRule is returned for memos whose repetition has no RFC 5545 equivalent
var ErrNoRRule = errors.New("repetition has no RRULE equivalent")

// RuleString returns the RRULE value for m, e.g. "FREQ=WEEKLY"
func RuleString(m model.Memo) (string, error) {
	switch m.RepeatType {
	case model.RepeatWeekly:
		return "FREQ=WEEKLY", nil
	case model.RepeatMonthly:
		// RFC 5545 skips months without the anchor day, as Match does.
		return "FREQ=MONTHLY", nil
	case model.RepeatYearlySolar:
		return "FREQ=YEARLY", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrNoRRule, m.RepeatType)
	}
}

// RRule builds the recurrence rule of m, anchored at its date
func RRule(m model.Memo) (*rrule.RRule, error) {
	rule, err := RuleString(m)
	if err != nil {
		return nil, err
	}

	anchor, err := dateutil.ParseISODate(m.Date)
	if err != nil {
		return nil, err
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rule %q: %w", rule, err)
	}
	r.DTStart(anchor)

	return r, nil
}

// Occurrences returns the days in [from, to] on which m is active.
// Rule-expressible memos go through rrule; the rest are checked day by day.
func (mt *Matcher) Occurrences(m model.Memo, from, to time.Time) ([]time.Time, error) {
	from, to = dateutil.Noon(from), dateutil.Noon(to)
	if to.Before(from) {
		return nil, nil
	}

	if r, err := RRule(m); err == nil {
		days := r.Between(from, to, true)
		out := make([]time.Time, 0, len(days))
		for _, d := range days {
			out = append(out, dateutil.Noon(d))
		}
		return out, nil
	} else if !errors.Is(err, ErrNoRRule) {
		return nil, err
	}

	var out []time.Time
	for d := from; !d.After(to); d = dateutil.AddDays(d, 1) {
		ok, err := mt.Match(m, d)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}
