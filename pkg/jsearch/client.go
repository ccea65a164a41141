// Package jsearch wraps the RapidAPI JSearch job-board aggregation API.
package jsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/liac-group/recruit-cli/internal/resilience"
)

const (
	defaultBaseURL = "https://jsearch.p.rapidapi.com"
	rapidAPIHost   = "jsearch.p.rapidapi.com"
)

// Client performs job searches.
type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]Job, error)
}

// SearchRequest scopes one job search. An empty result set is not an
// error.
type SearchRequest struct {
	Query       string
	Location    string
	MaxAgeHours int
	Page        int
	// Filters are passed through verbatim as query parameters
	// (employment type, remote-only, and similar vendor knobs).
	Filters map[string]string
}

// Job is one raw posting from the aggregator.
type Job struct {
	Title       string `json:"job_title"`
	Company     string `json:"employer_name"`
	URL         string `json:"job_apply_link"`
	Description string `json:"job_description"`
	City        string `json:"job_city"`
	State       string `json:"job_state"`
	Website     string `json:"employer_website"`
	PostedAt    int64  `json:"job_posted_at_timestamp"`
}

type searchResponse struct {
	Status string `json:"status"`
	Data   []Job  `json:"data"`
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a JSearch client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) ([]Job, error) {
	query := req.Query
	if req.Location != "" {
		query += " in " + req.Location
	}

	params := url.Values{"query": {query}}
	if req.Page > 0 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	if req.MaxAgeHours > 0 && req.MaxAgeHours <= 24 {
		params.Set("date_posted", "today")
	} else if req.MaxAgeHours > 24 && req.MaxAgeHours <= 72 {
		params.Set("date_posted", "3days")
	} else if req.MaxAgeHours > 72 {
		params.Set("date_posted", "week")
	}
	for k, v := range req.Filters {
		params.Set(k, v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "jsearch: create request")
	}
	httpReq.Header.Set("X-RapidAPI-Key", c.apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "jsearch: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "jsearch: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("jsearch: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "jsearch: unmarshal response")
	}

	return result.Data, nil
}
