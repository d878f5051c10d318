package memo

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/lunar"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

// LunarConverter converts Gregorian dates to lunar dates
type LunarConverter interface {
	ToLunar(date time.Time) (lunar.Date, error)
}

// Matcher decides whether a memo is active on a given day
type Matcher struct {
	converter LunarConverter
	logger    *zap.Logger
}

// NewMatcher creates a new Matcher
func NewMatcher(converter LunarConverter, logger *zap.Logger) *Matcher {
	return &Matcher{
		converter: converter,
		logger:    logger,
	}
}

// Match reports whether m occurs on target.
// Unknown repeat types and unparsable anchor dates never match and are not errors;
// only a failed lunar conversion is.
func (mt *Matcher) Match(m model.Memo, target time.Time) (bool, error) {
	anchor, err := dateutil.ParseISODate(m.Date)
	if err != nil {
		mt.logger.Warn("Memo has an invalid date",
			zap.String("memo_id", m.ID),
			zap.String("date", m.Date),
			zap.Error(err))
		return false, nil
	}
	target = dateutil.Noon(target)

	switch m.RepeatType {
	case "", model.RepeatNone:
		return dateutil.IsSameDay(anchor, target), nil
	case model.RepeatWeekly, model.RepeatMonthly, model.RepeatYearlySolar, model.RepeatYearlyLunar:
	default:
		mt.logger.Warn("Unrecognized repetition rule",
			zap.String("memo_id", m.ID),
			zap.String("repeat_type", string(m.RepeatType)))
		return false, nil
	}

	if target.Before(anchor) {
		return false, nil
	}

	switch m.RepeatType {
	case model.RepeatWeekly:
		return target.Weekday() == anchor.Weekday(), nil
	case model.RepeatMonthly:
		return target.Day() == anchor.Day(), nil
	case model.RepeatYearlySolar:
		return target.Month() == anchor.Month() && target.Day() == anchor.Day(), nil
	default:
		return mt.matchLunar(anchor, target)
	}
}

// matchLunar compares lunar month and day, ignoring the leap flag
func (mt *Matcher) matchLunar(anchor, target time.Time) (bool, error) {
	a, err := mt.converter.ToLunar(anchor)
	if err != nil {
		return false, fmt.Errorf("failed to convert memo date: %w", err)
	}
	t, err := mt.converter.ToLunar(target)
	if err != nil {
		return false, fmt.Errorf("failed to convert target date: %w", err)
	}
	return a.Month == t.Month && a.Day == t.Day, nil
}

// IsActive is Match with conversion errors reported as inactive
func (mt *Matcher) IsActive(m model.Memo, target time.Time) bool {
	ok, err := mt.Match(m, target)
	if err != nil {
		mt.logger.Debug("Memo match failed",
			zap.String("memo_id", m.ID),
			zap.String("target", dateutil.ISODate(target)),
			zap.Error(err))
		return false
	}
	return ok
}

// Filter returns the memos active on target, in input order
func (mt *Matcher) Filter(memos []model.Memo, target time.Time) []model.Memo {
	active := make([]model.Memo, 0)
	for _, m := range memos {
		if mt.IsActive(m, target) {
			active = append(active, m)
		}
	}
	return active
}
