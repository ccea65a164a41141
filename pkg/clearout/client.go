// Package clearout wraps the Clearout company-autocomplete API used for
// company-name to domain resolution.
package clearout

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/liac-group/recruit-cli/internal/resilience"
)

const defaultBaseURL = "https://api.clearout.io/public"

// Client performs Clearout autocomplete lookups.
type Client interface {
	Autocomplete(ctx context.Context, query string) ([]Candidate, error)
}

// Candidate is one fuzzy company match. Confidence runs 0-100.
type Candidate struct {
	Name       string `json:"name"`
	Domain     string `json:"domain"`
	Confidence int    `json:"confidence_score"`
}

type autocompleteResponse struct {
	Status string      `json:"status"`
	Data   []Candidate `json:"data"`
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

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Clearout autocomplete client. The public endpoint
// is unauthenticated.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Autocomplete(ctx context.Context, query string) ([]Candidate, error) {
	u := c.baseURL + "/companies/autocomplete?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrap(err, "clearout: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "clearout: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "clearout: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("clearout: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result autocompleteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "clearout: unmarshal response")
	}

	if result.Status != "success" {
		return nil, eris.Errorf("clearout: api status %q", result.Status)
	}

	return result.Data, nil
}
