// Package neo4jgraph is an optional alternate source of citation edges,
// for a deployment that keeps its citation graph in Neo4j instead of
// alongside paper metadata. It satisfies only the narrow slice of
// corpus.Store the citation package needs to build a graph.
package neo4jgraph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/paperforge/paperforge-core/internal/model"
)

// EdgeSource loads citation edges for a tenant from a Neo4j graph of
// (:Paper)-[:CITES]->(:Paper) nodes and relationships.
type EdgeSource struct {
	driver neo4j.DriverWithContext
}

// New builds an EdgeSource against a running Neo4j instance at uri.
func New(uri, username, password string) (*EdgeSource, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("building neo4j driver: %w", err)
	}
	return &EdgeSource{driver: driver}, nil
}

// Close releases the underlying driver's connection pool.
func (s *EdgeSource) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

const citationsQuery = `
MATCH (citing:Paper {tenant_id: $tenantID})-[:CITES]->(cited:Paper {tenant_id: $tenantID})
RETURN citing.id AS citing_id, cited.id AS cited_id
`

// Citations returns every citation edge recorded for tenant.
func (s *EdgeSource) Citations(ctx context.Context, tenant model.TenantID) ([]model.CitationEdge, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, citationsQuery,
		map[string]any{"tenantID": tenant.String()},
		neo4j.EagerResultTransformer,
	)
	if err != nil {
		return nil, fmt.Errorf("querying citation edges: %w", err)
	}

	edges := make([]model.CitationEdge, 0, len(result.Records))
	for _, record := range result.Records {
		citingStr, _, err := neo4j.GetRecordValue[string](record, "citing_id")
		if err != nil {
			continue
		}
		citedStr, _, err := neo4j.GetRecordValue[string](record, "cited_id")
		if err != nil {
			continue
		}
		citing, err := model.ParsePaperID(citingStr)
		if err != nil {
			continue
		}
		cited, err := model.ParsePaperID(citedStr)
		if err != nil {
			continue
		}
		edges = append(edges, model.CitationEdge{Citing: citing, Cited: cited})
	}
	return edges, nil
}
