package notify

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/pkg/notion"
)

// FollowupLog records postponed leads as pages in a Notion database so the
// sales team has a browsable follow-up queue alongside the Slack pings.
// A nil client or empty database ID disables it.
type FollowupLog struct {
	client notion.Client
	dbID   string
}

// NewFollowupLog creates a FollowupLog writing to the given database.
func NewFollowupLog(client notion.Client, dbID string) *FollowupLog {
	return &FollowupLog{client: client, dbID: dbID}
}

// Enabled reports whether the log has a client and target database.
func (f *FollowupLog) Enabled() bool {
	return f != nil && f.client != nil && f.dbID != ""
}

// Record creates one page for a postponed lead. Leads with an email that
// already has a page in the database are skipped, so repeated sync passes
// do not pile up duplicates.
func (f *FollowupLog) Record(ctx context.Context, lead *model.LeadRecord) error {
	if !f.Enabled() {
		return nil
	}

	if email := lead.NormalizedEmail(); email != "" {
		existing, err := notion.FindFollowupByEmail(ctx, f.client, f.dbID, email)
		if err != nil {
			return eris.Wrap(err, "notify: check existing followup")
		}
		if len(existing) > 0 {
			return nil
		}
	}

	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: orUnknown(lead.FullName())}},
			},
		},
		"Email":    richText(lead.Email),
		"Company":  richText(lead.Company),
		"Campaign": richText(lead.CampaignName),
		"Reply":    richText(truncate(lead.LatestResponseText)),
	}
	if lead.FollowupDate != "" {
		props["Follow-up Date"] = richText(lead.FollowupDate)
	}

	_, err := f.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(f.dbID)},
		Properties: props,
	})
	if err != nil {
		return eris.Wrap(err, "notify: record followup in notion")
	}
	return nil
}

func richText(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type: notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: content}},
		},
	}
}
