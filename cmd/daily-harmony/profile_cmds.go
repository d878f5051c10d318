package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/biorhythm"
	"github.com/username/daily-harmony/internal/fortune"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or set birth data and notification preferences",
	}
	cmd.AddCommand(profileSetCmd(), profileShowCmd())
	return cmd
}

func profileSetCmd() *cobra.Command {
	var (
		name, birthDate, birthTime, reminder string
		notify                               bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the profile",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			p := model.Profile{}
			if existing, err := a.profiles.Get(); err == nil {
				p = *existing
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = name
			}
			if flags.Changed("birth-date") {
				p.BirthDate = birthDate
			}
			if flags.Changed("birth-time") {
				p.BirthTime = birthTime
			}
			if flags.Changed("notify") {
				p.NotificationsEnabled = notify
			}
			if flags.Changed("reminder-time") {
				p.DailyReminderTime = reminder
			}

			saved, err := a.profiles.Save(p)
			if err != nil {
				return err
			}
			printProfile(cmd, saved)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&birthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&birthTime, "birth-time", "", "Birth time (HH:MM, empty if unknown)")
	cmd.Flags().BoolVar(&notify, "notify", false, "Enable the daily reminder")
	cmd.Flags().StringVar(&reminder, "reminder-time", "", "Daily reminder time (HH:MM)")

	return cmd
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			p, err := a.profiles.Get()
			if err != nil {
				return err
			}
			printProfile(cmd, p)
			return nil
		}),
	}
}

func printProfile(cmd *cobra.Command, p *model.Profile) {
	w := cmd.OutOrStdout()
	birthTime := p.BirthTime
	if birthTime == "" {
		birthTime = "모름"
	}
	fmt.Fprintf(w, "이름:      %s\n", p.Name)
	fmt.Fprintf(w, "생년월일:  %s %s\n", p.BirthDate, birthTime)
	if p.NotificationsEnabled {
		fmt.Fprintf(w, "알림:      매일 %s\n", p.DailyReminderTime)
	} else {
		fmt.Fprintln(w, "알림:      꺼짐")
	}
}

func biorhythmCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "biorhythm [YYYY-MM-DD]",
		Short: "Show the physical, emotional and intellectual cycles",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			target, err := dateArg(a, args)
			if err != nil {
				return err
			}
			p, err := a.profiles.Get()
			if err != nil {
				return err
			}
			birth, err := dateutil.ParseISODate(p.BirthDate)
			if err != nil {
				return err
			}
			if days < 1 {
				days = 1
			}

			series, err := biorhythm.Series(birth, target, dateutil.AddDays(target, days-1))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "날짜        신체  감성  지성")
			for _, idx := range series {
				fmt.Fprintf(w, "%s  %4d  %4d  %4d\n", idx.Date, idx.Physical, idx.Emotional, idx.Intellectual)
			}
			return nil
		}),
	}

	cmd.Flags().IntVarP(&days, "days", "n", 1, "Number of days to show")
	return cmd
}

func fortuneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fortune [YYYY-MM-DD]",
		Short: "Ask for the daily fortune",
		Args:  cobra.MaximumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			target, err := dateArg(a, args)
			if err != nil {
				return err
			}
			p, err := a.profiles.Get()
			if err != nil {
				return err
			}

			text, err := a.fortune.DailyFortune(cmd.Context(), p.BirthDate, p.BirthTime, dateutil.ISODate(target))
			switch {
			case errors.Is(err, fortune.ErrEmptyResponse):
				logger.Warn("Fortune response had no text", zap.String("date", dateutil.ISODate(target)))
				text = fortune.FallbackText
			case errors.Is(err, fortune.ErrMissingCredential):
				return fmt.Errorf("%w: set fortune.api_key or GEMINI_API_KEY", err)
			case err != nil:
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🔮 %s\n\n%s\n", dateutil.ISODate(target), strings.TrimSpace(text))
			return nil
		}),
	}
}
