// Package graph maintains the heritage knowledge graph in Neo4j: site nodes
// linked to their city, historical period, and monuments. It is written at
// index time and queried at answer time for optional context enrichment;
// the answering pipeline treats it as best-effort and survives without it.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/carthago-ai/carthago/engine/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// HeritageGraph owns all Neo4j operations.
type HeritageGraph struct {
	driver neo4j.DriverWithContext
}

// New creates a HeritageGraph on an existing driver.
func New(driver neo4j.DriverWithContext) *HeritageGraph {
	return &HeritageGraph{driver: driver}
}

// Reset removes all heritage nodes. Called at the start of a reindex run so
// the graph mirrors the rebuilt collection.
func (g *HeritageGraph) Reset(ctx context.Context) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.Run(ctx,
		`MATCH (n) WHERE n:Site OR n:Ville OR n:Periode OR n:Monument DETACH DELETE n`, nil)
	if err != nil {
		return fmt.Errorf("graph: reset: %w", err)
	}
	return nil
}

// SaveSite upserts a site node and its city, period, and monument relations.
func (g *HeritageGraph) SaveSite(ctx context.Context, doc domain.SiteDocument, docID string) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	node := SiteNode{
		ID:      docID,
		Name:    doc.Site,
		Ville:   doc.Ville,
		Periode: doc.Periode,
		Statut:  doc.Statut,
	}
	_, err := sess.Run(ctx,
		`MERGE (s:Site {id: $id}) SET s += $props`,
		map[string]any{"id": docID, "props": siteToProps(node)})
	if err != nil {
		return fmt.Errorf("graph: save site %s: %w", docID, err)
	}

	if doc.Ville != "" {
		_, err = sess.Run(ctx,
			`MATCH (s:Site {id: $id})
			 MERGE (v:Ville {name: $ville})
			 MERGE (s)-[:SITUE_A]->(v)`,
			map[string]any{"id": docID, "ville": doc.Ville})
		if err != nil {
			return fmt.Errorf("graph: link ville for %s: %w", docID, err)
		}
	}

	if doc.Periode != "" {
		_, err = sess.Run(ctx,
			`MATCH (s:Site {id: $id})
			 MERGE (p:Periode {name: $periode})
			 MERGE (s)-[:DATE_DE]->(p)`,
			map[string]any{"id": docID, "periode": doc.Periode})
		if err != nil {
			return fmt.Errorf("graph: link periode for %s: %w", docID, err)
		}
	}

	for _, monument := range doc.Monuments {
		if monument == "" {
			continue
		}
		_, err = sess.Run(ctx,
			`MATCH (s:Site {id: $id})
			 MERGE (m:Monument {name: $monument})
			 MERGE (s)-[:POSSEDE]->(m)`,
			map[string]any{"id": docID, "monument": monument})
		if err != nil {
			return fmt.Errorf("graph: link monument for %s: %w", docID, err)
		}
	}
	return nil
}

// RelatedSites returns sites whose name, city, period, or monuments match
// any of the given keywords, case-insensitively.
func (g *HeritageGraph) RelatedSites(ctx context.Context, keywords []string) ([]SiteNode, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}

	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (s:Site)
		OPTIONAL MATCH (s)-[:POSSEDE]->(m:Monument)
		WITH s, collect(toLower(m.name)) AS monuments
		WHERE any(kw IN $keywords WHERE
			toLower(s.name) CONTAINS kw
			OR toLower(s.ville) CONTAINS kw
			OR toLower(s.periode) CONTAINS kw
			OR any(mn IN monuments WHERE mn CONTAINS kw))
		RETURN DISTINCT s`
	result, err := sess.Run(ctx, cypher, map[string]any{"keywords": lowered})
	if err != nil {
		return nil, fmt.Errorf("graph: related sites: %w", err)
	}

	var sites []SiteNode
	for result.Next(ctx) {
		raw, ok := result.Record().Get("s")
		if !ok {
			continue
		}
		node, ok := raw.(dbtype.Node)
		if !ok {
			continue
		}
		sites = append(sites, siteFromProps(node.Props))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("graph: related sites: %w", err)
	}
	return sites, nil
}
