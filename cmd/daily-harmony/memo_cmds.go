package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/pkg/dateutil"
)

func memoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memo",
		Short: "Manage dated memos",
	}
	cmd.AddCommand(memoAddCmd(), memoListCmd(), memoDoneCmd(), memoEditCmd(), memoRmCmd())
	return cmd
}

func memoAddCmd() *cobra.Command {
	var (
		date, memoType, repeat, reminder string
		offsets                          []int
	)

	cmd := &cobra.Command{
		Use:   "add CONTENT...",
		Short: "Add a memo",
		Args:  cobra.MinimumNArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			if date == "" {
				date = dateutil.ISODate(a.today())
			}
			m, err := a.memos.Add(memo.NewMemo{
				Date:            date,
				Type:            model.MemoType(strings.ToLower(memoType)),
				Content:         strings.Join(args, " "),
				RepeatType:      model.ParseRepeatType(repeat),
				ReminderTime:    reminder,
				ReminderOffsets: offsets,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s\n", m.ID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Anchor date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&memoType, "type", "t", string(model.MemoTypeTodo), "todo, idea or appointment")
	cmd.Flags().StringVarP(&repeat, "repeat", "r", string(model.RepeatNone), "none, weekly, monthly, yearly_solar or yearly_lunar")
	cmd.Flags().StringVar(&reminder, "at", "", "Reminder time (HH:MM)")
	cmd.Flags().IntSliceVar(&offsets, "before", nil, "Remind this many minutes before --at (repeatable)")

	return cmd
}

func memoListCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memos, or the memos active on --date",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			memos, err := a.memos.List()
			if err != nil {
				return err
			}
			if date != "" {
				d, err := dateutil.ParseISODate(date)
				if err != nil {
					return err
				}
				memos = a.matcher.Filter(memos, d)
			}
			printMemos(cmd.OutOrStdout(), memos)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Only memos active on this date (YYYY-MM-DD)")
	return cmd
}

func printMemos(w io.Writer, memos []model.Memo) {
	if len(memos) == 0 {
		fmt.Fprintln(w, "No memos")
		return
	}
	for _, m := range memos {
		repeat := ""
		if m.RepeatType != "" && m.RepeatType != model.RepeatNone {
			repeat = " ↻" + string(m.RepeatType)
		}
		reminder := ""
		if m.ReminderTime != "" {
			reminder = " ⏰" + m.ReminderTime
		}
		fmt.Fprintf(w, "%s %s %s [%s]%s%s %s\n", m.ID, checkbox(m.Completed), m.Date, m.Type, repeat, reminder, m.Content)
	}
}

func memoDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle the completion of a memo",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			m, err := a.memos.Toggle(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkbox(m.Completed), m.Content)
			return nil
		}),
	}
}

func memoEditCmd() *cobra.Command {
	var (
		date, memoType, repeat, reminder, content string
		offsets                                   []int
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a memo",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			var patch memo.Patch
			flags := cmd.Flags()
			if flags.Changed("date") {
				patch.Date = &date
			}
			if flags.Changed("type") {
				t := model.MemoType(strings.ToLower(memoType))
				patch.Type = &t
			}
			if flags.Changed("repeat") {
				r := model.ParseRepeatType(repeat)
				patch.RepeatType = &r
			}
			if flags.Changed("at") {
				patch.ReminderTime = &reminder
			}
			if flags.Changed("before") {
				patch.ReminderOffsets = &offsets
			}
			if flags.Changed("content") {
				patch.Content = &content
			}

			m, err := a.memos.Update(args[0], patch)
			if err != nil {
				return err
			}
			printMemos(cmd.OutOrStdout(), []model.Memo{m})
			return nil
		}),
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "Anchor date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&memoType, "type", "t", "", "todo, idea or appointment")
	cmd.Flags().StringVarP(&repeat, "repeat", "r", "", "none, weekly, monthly, yearly_solar or yearly_lunar")
	cmd.Flags().StringVar(&reminder, "at", "", "Reminder time (HH:MM, empty to clear)")
	cmd.Flags().IntSliceVar(&offsets, "before", nil, "Reminder offsets in minutes")
	cmd.Flags().StringVar(&content, "content", "", "New content")

	return cmd
}

func memoRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a memo",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			if err := a.memos.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑  Deleted %s\n", args[0])
			return nil
		}),
	}
}
