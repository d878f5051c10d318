package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/username/daily-harmony/internal/daemon"
	"github.com/username/daily-harmony/internal/server"
	"github.com/username/daily-harmony/pkg/dateutil"
)

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = cfg.Server.Listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Deps{
				Annotator: a.annotator,
				Source:    a.source,
				Memos:     a.memos,
				Profiles:  a.profiles,
				Exporter:  a.exporter,
				Fortune:   a.fortune,
				Location:  a.loc,
			}, logger)
			return srv.Run(ctx, listen)
		}),
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default server.listen)")
	return cmd
}

func remindCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder daemon, or list today's reminders with --once",
		Args:  cobra.NoArgs,
		RunE: runWithApp(func(a *app, cmd *cobra.Command, args []string) error {
			if once {
				memos, err := a.memos.List()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				reminders := a.matcher.RemindersOn(memos, a.today(), a.loc)
				if len(reminders) == 0 {
					fmt.Fprintf(w, "No reminders on %s\n", dateutil.ISODate(a.today()))
				}
				for _, r := range reminders {
					fmt.Fprintf(w, "%s  %s  (%s)\n", r.At.Format("15:04"), r.Content, r.MemoID)
				}
				return nil
			}

			d, err := daemon.NewDaemon(a.store, a.matcher, daemon.NewLogNotifier(logger), cfg.Daemon.Schedule, a.loc, logger)
			if err != nil {
				return err
			}
			return d.Start()
		}),
	}

	cmd.Flags().BoolVar(&once, "once", false, "Print today's reminders and exit")
	return cmd
}
