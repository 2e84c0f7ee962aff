package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-sync/internal/syncer"
)

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "Notify about contacts whose follow-up date has arrived",
	Long:  "Searches the CRM for postponed contacts whose follow-up date is today or earlier, sends Slack reminders, and clears the postponed flag.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("followups"); err != nil {
			return err
		}

		crmClient, err := initCRM()
		if err != nil {
			return err
		}

		slack, _ := initNotifiers()

		checker := syncer.NewFollowupChecker(crmClient, slack)
		report, err := checker.Run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(followupsCmd)
}
