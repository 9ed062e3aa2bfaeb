package commands

import (
	"fmt"

	"homemeter-backend/lib/serviceutil"
	"homemeter-backend/services/profile"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Prints the profile display name straight from the source, no cache.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		service := profile.NewService(
			notionClient(cfg), cfg.Notion.ProfileDatabase, nil,
		)

		name, err := service.DisplayName(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to fetch profile", err)
		}
		fmt.Println(name)
	},
}
