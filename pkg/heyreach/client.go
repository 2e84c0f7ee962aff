// Package heyreach wraps the HeyReach public API for pulling LinkedIn
// outreach campaigns and their conversation threads.
package heyreach

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.heyreach.io/api/public"
	defaultPageSize = 100

	// SenderMe marks a message sent by the campaign's own account.
	SenderMe = "ME"
)

// Client pulls campaigns and conversations from HeyReach.
type Client interface {
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	ListConversations(ctx context.Context, campaignID int64) ([]Conversation, error)
}

// Campaign is a HeyReach outreach campaign.
type Campaign struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CorrespondentProfile is the lead on the other side of a conversation.
type CorrespondentProfile struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	EmailAddress         string `json:"emailAddress"`
	CustomEmailAddress   string `json:"customEmailAddress"`
	EnrichedEmailAddress string `json:"enrichedEmailAddress"`
	CompanyName          string `json:"companyName"`
	Position             string `json:"position"`
	Headline             string `json:"headline"`
	ProfileURL           string `json:"profileUrl"`
}

// Email returns the best available email for the lead, preferring the
// account-level address over custom and enriched fallbacks.
func (p CorrespondentProfile) Email() string {
	if p.EmailAddress != "" {
		return p.EmailAddress
	}
	if p.CustomEmailAddress != "" {
		return p.CustomEmailAddress
	}
	return p.EnrichedEmailAddress
}

// JobTitle returns the lead's position, falling back to the profile headline.
func (p CorrespondentProfile) JobTitle() string {
	if p.Position != "" {
		return p.Position
	}
	return p.Headline
}

// Message is one message in a conversation thread. Sender is SenderMe for
// outbound messages.
type Message struct {
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is a thread between a campaign account and one lead.
type Conversation struct {
	ID                   string               `json:"id"`
	CampaignID           int64                `json:"campaignId"`
	CorrespondentProfile CorrespondentProfile `json:"correspondentProfile"`
	Messages             []Message            `json:"messages"`
}

type pageRequest struct {
	CampaignID int64 `json:"campaignId,omitempty"`
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
}

type campaignPage struct {
	Items      []Campaign `json:"items"`
	TotalCount int        `json:"totalCount"`
}

type conversationPage struct {
	Items      []Conversation `json:"items"`
	TotalCount int            `json:"totalCount"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a HeyReach API client. Requests are paced at 5/s by
// default to stay under the published API limits.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListCampaigns fetches every campaign, walking offset pagination until the
// reported total is reached.
func (c *httpClient) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var all []Campaign
	offset := 0
	for {
		var page campaignPage
		if err := c.post(ctx, "/campaign/GetAll", pageRequest{Offset: offset, Limit: defaultPageSize}, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		offset += defaultPageSize
		if len(page.Items) < defaultPageSize || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// ListConversations fetches every conversation thread for a campaign.
func (c *httpClient) ListConversations(ctx context.Context, campaignID int64) ([]Conversation, error) {
	var all []Conversation
	offset := 0
	for {
		var page conversationPage
		req := pageRequest{CampaignID: campaignID, Offset: offset, Limit: defaultPageSize}
		if err := c.post(ctx, "/inbox/GetConversationsV2", req, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		offset += defaultPageSize
		if len(page.Items) < defaultPageSize || offset >= page.TotalCount {
			return all, nil
		}
	}
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "heyreach: rate limit wait")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "heyreach: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "heyreach: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "heyreach: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "heyreach: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("heyreach: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "heyreach: unmarshal response")
	}
	return nil
}
