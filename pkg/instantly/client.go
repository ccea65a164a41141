// Package instantly wraps the Instantly.ai campaign API used for outbound
// campaign handoff.
package instantly

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/liac-group/recruit-cli/internal/resilience"
)

const defaultBaseURL = "https://api.instantly.ai/api/v1"

// Client performs Instantly campaign operations.
type Client interface {
	CreateCampaign(ctx context.Context, name string) (string, error)
	AddLeads(ctx context.Context, campaignID string, leads []Lead) error
}

// Lead is one recipient added to a campaign.
type Lead struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
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

// WithRateLimit overrides the default request pacing (2 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Instantly client. Calls are paced to 2 req/s by
// default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(2, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

type createCampaignRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type createCampaignResponse struct {
	ID string `json:"id"`
}

// CreateCampaign creates a draft campaign and returns its id. The
// campaign is never activated from here.
func (c *httpClient) CreateCampaign(ctx context.Context, name string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", eris.Wrap(err, "instantly: rate limit wait")
	}

	body, err := c.post(ctx, "/campaigns", createCampaignRequest{Name: name, Status: "draft"})
	if err != nil {
		return "", err
	}

	var result createCampaignResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "instantly: unmarshal campaign response")
	}
	if result.ID == "" {
		return "", eris.New("instantly: campaign created without id")
	}
	return result.ID, nil
}

type addLeadsRequest struct {
	CampaignID string `json:"campaign_id"`
	Leads      []Lead `json:"leads"`
}

// AddLeads attaches leads to an existing draft campaign.
func (c *httpClient) AddLeads(ctx context.Context, campaignID string, leads []Lead) error {
	if len(leads) == 0 {
		return nil
	}
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "instantly: rate limit wait")
	}

	_, err := c.post(ctx, "/lead/add", addLeadsRequest{CampaignID: campaignID, Leads: leads})
	return err
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "instantly: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: read response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := eris.Errorf("instantly: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}
	return respBody, nil
}
