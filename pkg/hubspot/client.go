// Package hubspot wraps the HubSpot CRM v3 contacts API with the small
// surface the sync pipeline needs: keyed batch upserts, single creates,
// contact search, and property updates.
package hubspot

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
	defaultBaseURL = "https://api.hubapi.com"

	// MaxBatchSize is the HubSpot limit on batch upsert inputs.
	MaxBatchSize = 100
)

// ErrConflict reports a create against an email that already has a contact.
var ErrConflict = eris.New("hubspot: contact already exists")

// Client performs contact operations against the HubSpot CRM API.
type Client interface {
	BatchUpsertContacts(ctx context.Context, inputs []UpsertInput) ([]UpsertedContact, error)
	CreateContact(ctx context.Context, properties map[string]string) (*SimpleContact, error)
	UpdateContact(ctx context.Context, contactID string, properties map[string]string) error
	SearchContacts(ctx context.Context, req SearchRequest) ([]SimpleContact, error)
}

// UpsertInput is one record in a batch upsert request, keyed on a unique
// property value (the contact's email).
type UpsertInput struct {
	ID         string            `json:"id"`
	IDProperty string            `json:"idProperty"`
	Properties map[string]string `json:"properties"`
}

// UpsertedContact is one record in a batch upsert response.
type UpsertedContact struct {
	ID         string            `json:"id"`
	New        bool              `json:"new"`
	Properties map[string]string `json:"properties"`
}

// SimpleContact is a contact as returned by create and search calls.
type SimpleContact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Filter is a single property condition inside a search filter group.
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value,omitempty"`
}

// FilterGroup ANDs its filters together; groups are ORed by the API.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// SearchRequest is the body for POST /crm/v3/objects/contacts/search.
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	After        string        `json:"after,omitempty"`
}

type batchUpsertRequest struct {
	Inputs []UpsertInput `json:"inputs"`
}

type batchUpsertResponse struct {
	Status  string            `json:"status"`
	Results []UpsertedContact `json:"results"`
}

type searchResponse struct {
	Total   int             `json:"total"`
	Results []SimpleContact `json:"results"`
	Paging  *struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

type createRequest struct {
	Properties map[string]string `json:"properties"`
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
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a HubSpot API client authenticated with a private app
// token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
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

// BatchUpsertContacts creates or updates up to MaxBatchSize contacts in one
// request, keyed on the email property.
func (c *httpClient) BatchUpsertContacts(ctx context.Context, inputs []UpsertInput) ([]UpsertedContact, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if len(inputs) > MaxBatchSize {
		return nil, eris.Errorf("hubspot: batch of %d exceeds limit of %d", len(inputs), MaxBatchSize)
	}

	var result batchUpsertResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/batch/upsert", batchUpsertRequest{Inputs: inputs}, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// CreateContact inserts a single contact. Returns ErrConflict when HubSpot
// rejects the create because the identity already exists.
func (c *httpClient) CreateContact(ctx context.Context, properties map[string]string) (*SimpleContact, error) {
	var result SimpleContact
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", createRequest{Properties: properties}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateContact patches properties on an existing contact.
func (c *httpClient) UpdateContact(ctx context.Context, contactID string, properties map[string]string) error {
	return c.do(ctx, http.MethodPatch, "/crm/v3/objects/contacts/"+contactID, createRequest{Properties: properties}, nil)
}

// SearchContacts runs a filtered search and follows paging until exhausted.
func (c *httpClient) SearchContacts(ctx context.Context, req SearchRequest) ([]SimpleContact, error) {
	if req.Limit == 0 {
		req.Limit = 100
	}

	var all []SimpleContact
	for {
		var page searchResponse
		if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", req, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if page.Paging == nil || page.Paging.Next.After == "" {
			return all, nil
		}
		req.After = page.Paging.Next.After
	}
}

func (c *httpClient) do(ctx context.Context, method, path string, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "hubspot: rate limit wait")
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "hubspot: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "hubspot: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "hubspot: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "hubspot: read response")
	}

	if resp.StatusCode == http.StatusConflict {
		return ErrConflict
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("hubspot: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "hubspot: unmarshal response")
		}
	}
	return nil
}
