package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mobcash/backoffice/app/mobcashctl/cmd/dashboard"
	"github.com/mobcash/backoffice/app/paniclogger"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Full-screen back-office dashboard",
	Long: `Opens a terminal dashboard with the users, recharges and platforms tables.

Lists refresh on their own after every successful write, and success or error
messages appear in the header for a few seconds. Logs go to
$MOBCASH_HOME/logs/mobcashctl.log while the dashboard is open.

Keys:
  1 2 3 / tab   switch tab
  /             search
  n p           next / previous page
  r             refresh the list
  e             platforms: all, enabled, disabled
  c             new recharge
  y             copy the referral code, reference or ID of the selected row
  ?             help
  q             quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logFile, err := setupFileLogging()
		if err != nil {
			return err
		}
		defer func() {
			_ = logFile.Close()
		}()

		console, err := openConsole()
		if err != nil {
			return err
		}
		defer console.Close()
		defer func() {
			_ = paniclogger.Close()
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("dashboard started", "api", cfg.APIURL)
		err = dashboard.Run(ctx, console)
		slog.Info("dashboard stopped", "error", err)
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
