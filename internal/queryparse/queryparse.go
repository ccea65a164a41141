// Package queryparse turns a free-text hiring query into structured
// search parameters.
package queryparse

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/pkg/anthropic"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
)

const systemPrompt = `You extract structured job-search parameters from a recruiter's free-text query.
Respond with a single JSON object and nothing else:
{"search_term": "...", "locations": ["..."], "keywords": ["..."], "max_age_hours": 0}
search_term is the role being hired for. locations are cities mentioned, empty if none.
keywords are skills or technologies mentioned. max_age_hours is a posting-age limit in hours, 0 if unstated.`

// Parser extracts search parameters from natural language. When the
// model is unavailable it degrades to a lexical fallback rather than
// failing a run before it starts.
type Parser struct {
	client anthropic.Client
	model  string
}

// NewParser creates a parser over the given model client. A nil client
// means fallback-only parsing.
func NewParser(client anthropic.Client) *Parser {
	return &Parser{client: client, model: defaultModel}
}

// WithModel overrides the default model name.
func (p *Parser) WithModel(model string) *Parser {
	p.model = model
	return p
}

// Parse extracts SearchParams from a free-text query.
func (p *Parser) Parse(ctx context.Context, query string) model.SearchParams {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchParams{}
	}
	if p.client == nil {
		return fallbackParse(query)
	}

	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: defaultMaxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		zap.L().Warn("query parse model call failed, using lexical fallback", zap.Error(err))
		return fallbackParse(query)
	}

	params, ok := decodeParams(resp)
	if !ok {
		zap.L().Warn("query parse model returned malformed output, using lexical fallback")
		return fallbackParse(query)
	}

	if params.SearchTerm == "" {
		params.SearchTerm = query
	}
	return params
}

func decodeParams(resp *anthropic.MessageResponse) (model.SearchParams, bool) {
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	// Models sometimes wrap JSON in code fences.
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var out struct {
		SearchTerm  string   `json:"search_term"`
		Locations   []string `json:"locations"`
		Keywords    []string `json:"keywords"`
		MaxAgeHours int      `json:"max_age_hours"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return model.SearchParams{}, false
	}

	return model.SearchParams{
		SearchTerm:  strings.TrimSpace(out.SearchTerm),
		Locations:   out.Locations,
		Keywords:    out.Keywords,
		MaxAgeHours: out.MaxAgeHours,
	}, true
}

// fallbackParse does a lexical split: the part before " in " is the
// role, the part after is a comma-separated city list.
func fallbackParse(query string) model.SearchParams {
	params := model.SearchParams{SearchTerm: query}

	lowered := strings.ToLower(query)
	if idx := strings.LastIndex(lowered, " in "); idx > 0 {
		params.SearchTerm = strings.TrimSpace(query[:idx])
		for _, city := range strings.Split(query[idx+4:], ",") {
			city = strings.TrimSpace(city)
			if city != "" {
				params.Locations = append(params.Locations, city)
			}
		}
	}

	params.Keywords = ExtractKeywords(params.SearchTerm)
	return params
}

// ExtractKeywords returns the meaningful lowercase tokens of a search
// term, stop words removed.
func ExtractKeywords(term string) []string {
	stop := map[string]struct{}{
		"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "for": {},
		"in": {}, "or": {}, "with": {}, "to": {},
	}

	var out []string
	for _, tok := range strings.Fields(strings.ToLower(term)) {
		tok = strings.Trim(tok, ".,;:()[]{}&/")
		if tok == "" {
			continue
		}
		if _, skip := stop[tok]; skip {
			continue
		}
		out = append(out, tok)
	}
	return out
}
