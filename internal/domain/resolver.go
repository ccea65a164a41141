// Package domain resolves company names to web domains via fuzzy
// company autocomplete.
package domain

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/pkg/clearout"
)

// minConfidence is the lowest autocomplete confidence accepted as a
// real resolution. Anything below it is treated as no match.
const minConfidence = 50

// Resolver maps a company name to its primary web domain.
type Resolver struct {
	client clearout.Client
}

// NewResolver creates a Resolver over the given autocomplete client.
func NewResolver(client clearout.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve returns the domain of the highest-confidence candidate at or
// above the confidence floor, keeping the first seen on ties. Every
// failure mode, transport errors included, reads as "not resolved";
// the caller never blocks on this lookup.
func (r *Resolver) Resolve(ctx context.Context, company string) (string, bool) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", false
	}

	log := zap.L().With(zap.String("company", company))

	candidates, err := r.client.Autocomplete(ctx, company)
	if err != nil {
		log.Warn("domain autocomplete failed", zap.Error(err))
		return "", false
	}

	var (
		best      clearout.Candidate
		bestFound bool
	)
	for _, c := range candidates {
		if c.Confidence < minConfidence || c.Domain == "" {
			continue
		}
		if !bestFound || c.Confidence > best.Confidence {
			best = c
			bestFound = true
		}
	}

	if !bestFound {
		log.Info("no confident domain candidate", zap.Int("candidates", len(candidates)))
		return "", false
	}

	log.Info("resolved company domain",
		zap.String("domain", best.Domain),
		zap.Int("confidence", best.Confidence))
	return best.Domain, true
}
