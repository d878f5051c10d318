package memo

import (
	"errors"
	"testing"

	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

func TestRuleString(t *testing.T) {
	tests := []struct {
		repeat  model.RepeatType
		want    string
		wantErr bool
	}{
		{model.RepeatWeekly, "FREQ=WEEKLY", false},
		{model.RepeatMonthly, "FREQ=MONTHLY", false},
		{model.RepeatYearlySolar, "FREQ=YEARLY", false},
		{model.RepeatYearlyLunar, "", true},
		{model.RepeatNone, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.repeat), func(t *testing.T) {
			got, err := RuleString(model.Memo{RepeatType: tt.repeat})
			if (err != nil) != tt.wantErr {
				t.Fatalf("RuleString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoRRule) {
				t.Errorf("RuleString() error = %v, want ErrNoRRule", err)
			}
			if got != tt.want {
				t.Errorf("RuleString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOccurrences_AgreesWithMatch(t *testing.T) {
	mt := newTestMatcher(t)
	from, to := dateutil.Date(2022, 12, 1), dateutil.Date(2025, 12, 31)

	memos := []model.Memo{
		{ID: "weekly", Date: "2023-01-04", RepeatType: model.RepeatWeekly},
		{ID: "monthly", Date: "2023-01-31", RepeatType: model.RepeatMonthly},
		{ID: "yearly", Date: "2020-02-29", RepeatType: model.RepeatYearlySolar},
	}

	for _, m := range memos {
		t.Run(m.ID, func(t *testing.T) {
			got, err := mt.Occurrences(m, from, to)
			if err != nil {
				t.Fatalf("Occurrences() error = %v", err)
			}

			var want []string
			for d := from; !d.After(to); d = dateutil.AddDays(d, 1) {
				if mt.IsActive(m, d) {
					want = append(want, dateutil.ISODate(d))
				}
			}

			if len(got) != len(want) {
				t.Fatalf("Occurrences() returned %d days, Match found %d", len(got), len(want))
			}
			for i := range got {
				if dateutil.ISODate(got[i]) != want[i] {
					t.Errorf("occurrence %d = %s, want %s", i, dateutil.ISODate(got[i]), want[i])
				}
			}
		})
	}
}

func TestOccurrences_MonthlyOn31st(t *testing.T) {
	mt := newTestMatcher(t)
	m := model.Memo{ID: "m", Date: "2023-01-31", RepeatType: model.RepeatMonthly}

	got, err := mt.Occurrences(m, dateutil.Date(2023, 1, 1), dateutil.Date(2023, 12, 31))
	if err != nil {
		t.Fatalf("Occurrences() error = %v", err)
	}

	want := []string{"2023-01-31", "2023-03-31", "2023-05-31", "2023-07-31", "2023-08-31", "2023-10-31", "2023-12-31"}
	if len(got) != len(want) {
		t.Fatalf("Occurrences() = %v, want %v", got, want)
	}
	for i := range want {
		if dateutil.ISODate(got[i]) != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, dateutil.ISODate(got[i]), want[i])
		}
	}
}

func TestOccurrences_YearlyLunar(t *testing.T) {
	mt := newTestMatcher(t)
	m := model.Memo{ID: "chuseok", Date: "2023-09-29", RepeatType: model.RepeatYearlyLunar}

	got, err := mt.Occurrences(m, dateutil.Date(2023, 1, 1), dateutil.Date(2025, 12, 31))
	if err != nil {
		t.Fatalf("Occurrences() error = %v", err)
	}

	want := []string{"2023-09-29", "2024-09-17", "2025-10-06"}
	if len(got) != len(want) {
		t.Fatalf("Occurrences() = %v, want %v", got, want)
	}
	for i := range want {
		if dateutil.ISODate(got[i]) != want[i] {
			t.Errorf("occurrence %d = %s, want %s", i, dateutil.ISODate(got[i]), want[i])
		}
	}
}

func TestOccurrences_EmptyRange(t *testing.T) {
	mt := newTestMatcher(t)
	m := model.Memo{ID: "w", Date: "2024-01-03", RepeatType: model.RepeatWeekly}

	got, err := mt.Occurrences(m, dateutil.Date(2024, 2, 1), dateutil.Date(2024, 1, 1))
	if err != nil || len(got) != 0 {
		t.Errorf("Occurrences() = %v, %v, want nothing", got, err)
	}
}
