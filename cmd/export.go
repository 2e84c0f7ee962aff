package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/classify"
	"github.com/sells-group/outreach-sync/internal/dedupe"
	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/internal/normalize"
	"github.com/sells-group/outreach-sync/internal/syncer"
)

var (
	exportOut   string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export <platform>",
	Short: "Export classified leads to an XLSX workbook without touching the CRM",
	Long:  "Pulls campaigns and conversations, classifies replies, and writes the normalized leads to a spreadsheet. Useful for reviewing classification output before a real sync.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := initSource(args[0])
		if err != nil {
			return err
		}

		norm, _, err := initNormalizer()
		if err != nil {
			return err
		}

		records, err := collectLeads(cmd.Context(), source, norm, exportLimit)
		if err != nil {
			return err
		}

		if err := writeWorkbook(exportOut, records); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Wrote %d leads to %s\n", len(records), exportOut)
		return nil
	},
}

func collectLeads(ctx context.Context, source syncer.Source, norm *normalize.Normalizer, limit int) ([]*model.LeadRecord, error) {
	campaigns, err := source.Campaigns(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "list campaigns")
	}
	if limit > 0 && len(campaigns) > limit {
		campaigns = campaigns[:limit]
	}

	cache := classify.SectorCache{}
	var records []*model.LeadRecord
	for _, campaign := range campaigns {
		convs, err := source.Conversations(ctx, campaign)
		if err != nil {
			zap.L().Warn("export: campaign fetch failed",
				zap.String("campaign", campaign.Name),
				zap.Error(err),
			)
			continue
		}
		for _, conv := range convs {
			if rec := norm.Normalize(ctx, conv, cache); rec != nil {
				records = append(records, rec)
			}
		}
	}

	return dedupe.Merge(records), nil
}

var exportHeader = []string{
	"Email", "First Name", "Last Name", "Company", "Job Title", "LinkedIn",
	"Platform", "Campaign", "Responded", "Sentiment", "Sector",
	"Postponed", "Follow-up Date", "Latest Reply",
}

func writeWorkbook(path string, records []*model.LeadRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range exportHeader {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		for _, val := range []string{
			r.Email, r.FirstName, r.LastName, r.Company, r.JobTitle, r.ProfileURL,
			r.Platform, r.CampaignName, r.HasResponded, r.ReplySentiment, r.Sector,
			r.IsPostponed, r.FollowupDate, r.LatestResponseText,
		} {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "leads.xlsx", "output file path")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "max campaigns to export (0 = all)")
	rootCmd.AddCommand(exportCmd)
}
