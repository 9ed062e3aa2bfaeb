package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"homemeter-backend/lib/serviceutil"
	"homemeter-backend/services/consumption"

	"github.com/spf13/cobra"
)

var ingestDryRun *bool

func init() {
	ingestDryRun = ingestCmd.Flags().Bool("dry-run", false, "Fetch and print the reading without writing it anywhere.")
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [--dry-run]",
	Short: "Logs in to the portal, fetches the current reading and stores it.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		portal := portalClient(cfg)

		if *ingestDryRun {
			session, err := portal.Login(ctx)
			if err != nil {
				serviceutil.Fatal("failed to login", err)
			}
			reading, err := portal.FetchReading(ctx, session)
			if err != nil {
				serviceutil.Fatal("failed to fetch reading", err)
			}
			out, err := json.MarshalIndent(reading, "", "  ")
			if err != nil {
				serviceutil.Fatal("failed to encode reading", err)
			}
			fmt.Println(string(out))
			return
		}

		service := consumption.NewService(
			portal, notionClient(cfg), cfg.Notion.ConsumptionDatabase,
		)
		err := service.Ingest(ctx)
		if err != nil {
			serviceutil.Fatal("failed to ingest reading", err)
		}
		slog.Info("reading stored")
	},
}
