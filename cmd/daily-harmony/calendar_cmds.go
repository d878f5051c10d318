package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/daily-harmony/internal/calendar"
	"github.com/username/daily-harmony/internal/export"
	"github.com/username/daily-harmony/pkg/dateutil"
)

var weekdayNames = [...]string{"일", "월", "화", "수", "목", "금", "토"}

// runWithApp wires the components for a command and closes them afterwards
func runWithApp(fn func(a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(a, cmd, args)
	}
}

// dateArg parses args[0] as YYYY-MM-DD, defaulting to today
func dateArg(a *app, args []string) (time.Time, error) {
	if len(args) == 0 {
		return dateutil.Noon(a.today()), nil
	}
	return dateutil.ParseISODate(args[0])
}

// yearArg parses args[0] as a year, defaulting to the current one
func yearArg(a *app, args []string) (int, error) {
	if len(args) == 0 {
		return a.today().Year(), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", args[0])
	}
	return year, nil
}

func dayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Show lunar date, holiday, solar term and memos of a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			date, err := dateArg(a, args)
			if err != nil {
				return err
			}
			memos, err := a.memos.List()
			if err != nil {
				return err
			}

			day := a.annotator.Day(date, memos)
			if day.Err != nil {
				return day.Err
			}
			printDay(cmd.OutOrStdout(), day)
			return nil
		}),
	}
}

func printDay(w io.Writer, day calendar.DayAnnotation) {
	fmt.Fprintf(w, "%s (%s)\n", day.ISO, weekdayNames[day.Weekday])
	if day.Lunar != nil {
		fmt.Fprintf(w, "  음력 %d년 %s\n", day.Lunar.Year, day.Lunar)
	}
	if day.Holiday != nil {
		fmt.Fprintf(w, "  🎌 %s\n", day.Holiday.Label)
	}
	if day.SolarTerm != "" {
		fmt.Fprintf(w, "  🌿 %s\n", day.SolarTerm)
	}
	for _, m := range day.Memos {
		fmt.Fprintf(w, "  %s [%s] %s  (%s)\n", checkbox(m.Completed), m.Type, m.Content, m.ID)
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY MM]",
		Short: "Show the calendar grid of a month",
		Args:  cobra.RangeArgs(0, 2),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			now := a.today()
			year, month := now.Year(), int(now.Month())
			if len(args) == 2 {
				var err error
				if year, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid year %q", args[0])
				}
				if month, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid month %q", args[1])
				}
			} else if len(args) == 1 {
				return fmt.Errorf("month needs both year and month")
			}

			memos, err := a.memos.List()
			if err != nil {
				return err
			}
			view, err := a.annotator.Month(year, time.Month(month), memos)
			if err != nil {
				return err
			}
			printMonth(cmd.OutOrStdout(), view)
			return nil
		}),
	}
}

func printMonth(w io.Writer, view *calendar.MonthView) {
	fmt.Fprintf(w, "%d년 %d월\n", view.Year, int(view.Month))
	for i := 0; i < 7; i++ {
		fmt.Fprintf(w, " %s  ", weekdayNames[(int(view.WeekStart)+i)%7])
	}
	fmt.Fprintln(w)

	var notes []string
	for i, day := range view.Days {
		mark := " "
		switch {
		case day.Holiday != nil:
			mark = "*"
		case day.SolarTerm != "":
			mark = "~"
		}
		if day.InMonth {
			fmt.Fprintf(w, "%2d%s%s ", day.Date.Day(), mark, memoMark(len(day.Memos)))
		} else {
			fmt.Fprint(w, "     ")
		}
		if i%7 == 6 {
			fmt.Fprintln(w)
		}

		if !day.InMonth {
			continue
		}
		if day.Holiday != nil {
			notes = append(notes, fmt.Sprintf("  %s  %s", day.ISO, day.Holiday.Label))
		}
		if day.SolarTerm != "" {
			notes = append(notes, fmt.Sprintf("  %s  %s", day.ISO, day.SolarTerm))
		}
		if day.Err != nil {
			notes = append(notes, fmt.Sprintf("  %s  (%s)", day.ISO, day.Error))
		}
	}

	if len(notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Join(notes, "\n"))
	}
	fmt.Fprintf(w, "\n공휴일 %d일 · 절기 %d · 메모 %d\n", view.Holidays, view.SolarTerms, view.Memos)
}

func memoMark(n int) string {
	if n > 0 {
		return "•"
	}
	return " "
}

func holidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays [YYYY]",
		Short: "List the public holidays of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			year, err := yearArg(a, args)
			if err != nil {
				return err
			}
			holidays, err := a.source.HolidaysOfYear(year)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, h := range holidays.Sorted() {
				d, _ := dateutil.ParseISODate(h.Date)
				fmt.Fprintf(w, "%s (%s)  %s\n", h.Date, weekdayNames[d.Weekday()], h.Label)
			}
			return nil
		}),
	}
}

func termsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "terms [YYYY]",
		Short: "List the 24 solar terms of a year",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			year, err := yearArg(a, args)
			if err != nil {
				return err
			}
			terms, err := a.source.SolarTermsOfYear(year)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, k := range terms.Dates() {
				fmt.Fprintf(w, "%s  %s\n", k, terms[k])
			}
			return nil
		}),
	}
}

func exportCmd() *cobra.Command {
	var (
		from, to, out                string
		noHolidays, noTerms, noMemos bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export holidays, solar terms and memos as an iCalendar file",
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			year := a.today().Year()
			opts := export.Options{
				From:       dateutil.Date(year, time.January, 1),
				To:         dateutil.Date(year, time.December, 31),
				Holidays:   !noHolidays,
				SolarTerms: !noTerms,
				Memos:      !noMemos,
			}
			var err error
			if from != "" {
				if opts.From, err = dateutil.ParseISODate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if opts.To, err = dateutil.ParseISODate(to); err != nil {
					return err
				}
			}

			memos, err := a.memos.List()
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return a.exporter.Write(cmd.OutOrStdout(), memos, opts)
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("failed to create output dir: %w", err)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			if err := a.exporter.Write(f, memos, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ Exported to %s\n", out)
			return nil
		}),
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD, default Jan 1 of this year)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD, default Dec 31 of this year)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&noHolidays, "no-holidays", false, "Leave out holidays")
	cmd.Flags().BoolVar(&noTerms, "no-terms", false, "Leave out solar terms")
	cmd.Flags().BoolVar(&noMemos, "no-memos", false, "Leave out memos")

	return cmd
}
