package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncLimit    int
	syncFull     bool
	syncMaxLeads int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run an incremental sync pass for an outreach platform",
	Long:  "Pulls campaigns and conversations, classifies replies, and upserts leads into the CRM. Only conversations with activity since the last completed pass are processed unless --full is set.",
}

var syncHeyReachCmd = &cobra.Command{
	Use:   "heyreach",
	Short: "Sync HeyReach LinkedIn campaigns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, "heyreach")
	},
}

var syncInstantlyCmd = &cobra.Command{
	Use:   "instantly",
	Short: "Sync Instantly email campaigns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if syncMaxLeads > 0 {
			cfg.Instantly.MaxLeads = syncMaxLeads
		}
		return runSync(cmd, "instantly")
	},
}

func runSync(cmd *cobra.Command, platform string) error {
	ctx := cmd.Context()

	if err := cfg.Validate("sync"); err != nil {
		return err
	}

	s, st, err := buildSyncer(ctx, platform, syncLimit, syncFull)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	report, err := s.Run(ctx)
	if err != nil {
		return err
	}

	if len(report.Errors) > 0 {
		zap.L().Warn("sync completed with errors", zap.Int("errors", report.Errored))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func init() {
	syncCmd.PersistentFlags().IntVar(&syncLimit, "limit", 0, "max campaigns to process (default from config, 0 = all)")
	syncCmd.PersistentFlags().BoolVar(&syncFull, "full", false, "ignore the checkpoint and re-sync everything")
	syncInstantlyCmd.Flags().IntVar(&syncMaxLeads, "max-leads", 0, "max leads fetched per campaign (default from config)")
	syncCmd.AddCommand(syncHeyReachCmd)
	syncCmd.AddCommand(syncInstantlyCmd)
	rootCmd.AddCommand(syncCmd)
}
