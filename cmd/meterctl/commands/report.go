package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"homemeter-backend/lib/serviceutil"
	"homemeter-backend/lib/timezone"
	"homemeter-backend/services/report"

	"github.com/spf13/cobra"
)

var reportSend *bool

func init() {
	reportSend = reportCmd.Flags().Bool("send", false, "Dispatch the mail instead of printing a preview.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--send]",
	Short: "Builds last month's consumption report. Prints a preview unless --send is given.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		service := report.NewService(
			notionClient(cfg), cfg.Notion.ConsumptionDatabase,
			mailerFromConfig(cfg.Mail), cfg.Mail.From, cfg.Mail.To,
		)

		if *reportSend {
			err := service.Send(ctx, timezone.Now())
			if errors.Is(err, report.NoData) {
				serviceutil.Fatal("nothing to report", err)
			}
			if err != nil {
				serviceutil.Fatal("failed to send report", err)
			}
			slog.Info("report sent", "to", cfg.Mail.To)
			return
		}

		built, err := service.Build(ctx, timezone.Now())
		if errors.Is(err, report.NoData) {
			serviceutil.Fatal("nothing to report", err)
		}
		if err != nil {
			serviceutil.Fatal("failed to build report", err)
		}

		fmt.Println(built.Subject)
		fmt.Println(report.BuildTable(built.Rows).Render())
	},
}
