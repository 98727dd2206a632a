package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/carthago-ai/carthago/engine/semantic"
)

// Fallbacks for chunks persisted without the corresponding metadata.
const (
	untitledSite  = "Sans titre"
	unknownSource = "inconnu"
)

// retrieve embeds the sanitized query, fetches the topK nearest chunks, and
// returns their texts joined most-relevant-first plus the deduplicated
// source list. Zero hits yield ("", nil): nothing found, not an error. No
// relevance threshold is applied; weak matches stay in whenever topK asks
// for them.
func (c *Chatbot) retrieve(ctx context.Context, query string, topK int) (string, []Source, error) {
	embedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("rag: embed query: %w", err)
	}

	results, err := c.search.Search(ctx, embedding, topK)
	if err != nil {
		return "", nil, fmt.Errorf("rag: search: %w", err)
	}
	if len(results) == 0 {
		return "", nil, nil
	}

	contextParts := make([]string, 0, len(results))
	var sources []Source
	seenSites := make(map[string]bool)

	for _, r := range results {
		contextParts = append(contextParts, strings.TrimSpace(r.Content))

		site := r.Meta["site"]
		if site == "" {
			site = untitledSite
		}
		if seenSites[site] {
			// Results arrive similarity-ordered, so the first chunk per
			// site is its best match; later ones add no new citation.
			continue
		}
		seenSites[site] = true
		sources = append(sources, sourceFromResult(site, r))
	}

	return strings.Join(contextParts, "\n\n"), sources, nil
}

func sourceFromResult(site string, r semantic.SearchResult) Source {
	src := r.Meta["source"]
	if src == "" {
		src = unknownSource
	}
	return Source{
		Site:        site,
		Ville:       r.Meta["ville"],
		Periode:     r.Meta["period"],
		Source:      src,
		Coordonnees: r.Meta["coordonnees"],
		Relevance:   relevance(r.Distance),
	}
}

// relevance converts the store's distance to a similarity in [0,1], rounded
// to three decimals.
func relevance(distance float32) *float64 {
	v := math.Round((1-float64(distance))*1000) / 1000
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}
