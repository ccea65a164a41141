// Package linkedin wraps the RapidAPI fresh-linkedin-scraper endpoints for
// company profiles and employee listings.
package linkedin

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
	defaultBaseURL = "https://fresh-linkedin-scraper-api.p.rapidapi.com/api/v1"
	rapidAPIHost   = "fresh-linkedin-scraper-api.p.rapidapi.com"

	// PageSize is the maximum number of people records per page the
	// vendor returns.
	PageSize = 10
)

// Client performs LinkedIn company lookups via RapidAPI.
type Client interface {
	GetProfile(ctx context.Context, company string) (*Profile, error)
	GetPeople(ctx context.Context, company string, page int) ([]Person, error)
}

// Profile is the company profile payload. Found is false when the vendor
// has no record of the company; that is not an error.
type Profile struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Verified      bool   `json:"verified"`
	EmployeeCount int    `json:"employee_count"`
	Industry      string `json:"industry"`
	Found         bool   `json:"-"`
}

// Person is one employee record from the people listing.
type Person struct {
	FullName string          `json:"full_name"`
	Title    string          `json:"title"`
	Raw      json.RawMessage `json:"-"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
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

// NewClient creates a RapidAPI LinkedIn scraper client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GetProfile(ctx context.Context, company string) (*Profile, error) {
	body, status, err := c.get(ctx, "/company/profile", url.Values{"company": {company}})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return &Profile{Name: company}, nil
	}
	if status != http.StatusOK {
		err := eris.Errorf("linkedin: profile returned status %d", status)
		if resilience.IsTransientHTTPStatus(status) {
			return nil, resilience.NewTransientError(err, status)
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "linkedin: unmarshal profile envelope")
	}
	if !env.Success {
		// Vendor reports lookup failure as an unsuccessful envelope,
		// not an HTTP error.
		return &Profile{Name: company}, nil
	}

	var p Profile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, eris.Wrap(err, "linkedin: unmarshal profile")
	}
	p.Found = true
	if p.Name == "" {
		p.Name = company
	}
	return &p, nil
}

func (c *httpClient) GetPeople(ctx context.Context, company string, page int) ([]Person, error) {
	if page < 1 {
		page = 1
	}
	body, status, err := c.get(ctx, "/company/people", url.Values{
		"company": {company},
		"page":    {strconv.Itoa(page)},
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		err := eris.Errorf("linkedin: people page %d returned status %d", page, status)
		if resilience.IsTransientHTTPStatus(status) {
			return nil, resilience.NewTransientError(err, status)
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "linkedin: unmarshal people envelope")
	}
	if !env.Success {
		// Unsuccessful envelope past the last page means end of data.
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, eris.Wrap(err, "linkedin: unmarshal people")
	}

	people := make([]Person, 0, len(raw))
	for _, r := range raw {
		var p Person
		if err := json.Unmarshal(r, &p); err != nil {
			continue
		}
		p.Raw = r
		people = append(people, p)
	}
	return people, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "linkedin: create request")
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrap(err, "linkedin: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, eris.Wrap(err, "linkedin: read response")
	}
	return body, resp.StatusCode, nil
}
