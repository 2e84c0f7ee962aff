// Package instantly wraps the Instantly v2 API for pulling email campaigns,
// their leads, and the message history per lead.
package instantly

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.instantly.ai/api/v2"

	campaignPageSize = 100
	leadPageSize     = 100
	emailPageSize    = 50
)

// EmailType distinguishes sent from received messages on the /emails
// endpoint.
type EmailType string

const (
	EmailTypeSent     EmailType = "sent"
	EmailTypeReceived EmailType = "received"
)

// Client pulls campaigns, leads, and emails from Instantly.
type Client interface {
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	ListLeads(ctx context.Context, campaignID string, maxLeads int) ([]Lead, error)
	ListEmails(ctx context.Context, campaignID, leadEmail string) ([]Email, error)
}

// Campaign is an Instantly email campaign.
type Campaign struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lead is a campaign recipient. Payload carries the free-form enrichment
// fields Instantly attaches at import time.
type Lead struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	CompanyName     string         `json:"company_name"`
	EmailReplyCount int            `json:"email_reply_count"`
	Payload         map[string]any `json:"payload"`
}

// JobTitle digs the lead's title out of the import payload, trying the
// field names seen across campaign imports.
func (l Lead) JobTitle() string {
	for _, key := range []string{"job_title", "title", "position"} {
		if v, ok := l.Payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// EmailBody is the message body wrapper on the /emails endpoint.
type EmailBody struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

// Email is one sent or received message. Type is filled in by the client
// from the query it issued, not by the API.
type Email struct {
	ID               string    `json:"id"`
	TimestampEmail   string    `json:"timestamp_email"`
	TimestampCreated string    `json:"timestamp_created"`
	Body             EmailBody `json:"body"`
	Type             EmailType `json:"-"`
}

// SentAt parses the message timestamp, preferring timestamp_email over the
// record creation time. Returns the zero time when neither parses.
func (e Email) SentAt() time.Time {
	for _, raw := range []string{e.TimestampEmail, e.TimestampCreated} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

type listResponse[T any] struct {
	Items             []T    `json:"items"`
	NextStartingAfter string `json:"next_starting_after"`
}

type leadListRequest struct {
	CampaignID    string `json:"campaign_id"`
	Limit         int    `json:"limit"`
	StartingAfter string `json:"starting_after,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
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

// NewClient creates an Instantly API client.
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

// ListCampaigns fetches every campaign, following cursor pagination.
func (c *httpClient) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	var all []Campaign
	cursor := ""
	for {
		params := url.Values{"limit": {strconv.Itoa(campaignPageSize)}}
		if cursor != "" {
			params.Set("starting_after", cursor)
		}

		var page listResponse[Campaign]
		if err := c.get(ctx, "/campaigns", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if page.NextStartingAfter == "" || len(page.Items) < campaignPageSize {
			return all, nil
		}
		cursor = page.NextStartingAfter
	}
}

// ListLeads fetches leads for a campaign. A positive maxLeads truncates the
// result once that many have been collected.
func (c *httpClient) ListLeads(ctx context.Context, campaignID string, maxLeads int) ([]Lead, error) {
	var all []Lead
	cursor := ""
	for {
		req := leadListRequest{CampaignID: campaignID, Limit: leadPageSize, StartingAfter: cursor}

		var page listResponse[Lead]
		if err := c.post(ctx, "/leads/list", req, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if maxLeads > 0 && len(all) >= maxLeads {
			return all[:maxLeads], nil
		}
		if page.NextStartingAfter == "" || len(page.Items) < leadPageSize {
			return all, nil
		}
		cursor = page.NextStartingAfter
	}
}

// ListEmails fetches the full message history for one lead in a campaign,
// both directions, tagging each message with its type.
func (c *httpClient) ListEmails(ctx context.Context, campaignID, leadEmail string) ([]Email, error) {
	var all []Email
	for _, emailType := range []EmailType{EmailTypeSent, EmailTypeReceived} {
		cursor := ""
		for {
			params := url.Values{
				"campaign_id": {campaignID},
				"lead":        {leadEmail},
				"email_type":  {string(emailType)},
				"limit":       {strconv.Itoa(emailPageSize)},
			}
			if cursor != "" {
				params.Set("starting_after", cursor)
			}

			var page listResponse[Email]
			if err := c.get(ctx, "/emails", params, &page); err != nil {
				return nil, err
			}
			for i := range page.Items {
				page.Items[i].Type = emailType
			}
			all = append(all, page.Items...)

			if page.NextStartingAfter == "" || len(page.Items) < emailPageSize {
				break
			}
			cursor = page.NextStartingAfter
		}
	}
	return all, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path+"?"+params.Encode(), nil, out)
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "instantly: marshal request")
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *httpClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "instantly: rate limit wait")
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "instantly: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "instantly: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "instantly: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("instantly: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "instantly: unmarshal response")
	}
	return nil
}
