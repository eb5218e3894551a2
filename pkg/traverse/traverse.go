package traverse

import (
	"context"
	"fmt"

	"chainsight/pkg/catalog"
	"chainsight/pkg/graph"
	"chainsight/pkg/resolver"
)

// Outcome classifies a traversal result. Absence and isolation are regular
// outcomes, never errors.
type Outcome string

const (
	// NotFound means the query resolved to no graph node.
	NotFound Outcome = "NOT_FOUND"
	// FoundIsolated means the node resolved but has no edges.
	FoundIsolated Outcome = "FOUND_ISOLATED"
	// FoundWithNeighbors means the node resolved and has at least one neighbor.
	FoundWithNeighbors Outcome = "FOUND_WITH_NEIGHBORS"
)

// Result is the display-ready answer to "what is connected to X". Entity and
// Neighbors are set according to Outcome; Match carries the resolver's
// provenance so callers can flag approximate matches instead of treating
// them as authoritative.
type Result struct {
	Query     string
	Outcome   Outcome
	Entity    catalog.Entity
	Neighbors []catalog.Entity
	Match     resolver.Match
}

// Service runs the resolve-then-traverse pipeline over a frozen graph.
// All reads, safe for concurrent use.
type Service struct {
	resolver *resolver.Resolver
	graph    *graph.Graph
}

func New(r *resolver.Resolver, g *graph.Graph) *Service {
	return &Service{resolver: r, graph: g}
}

// Traverse resolves the query and enumerates the resolved node's neighbors,
// irrespective of edge direction.
func (s *Service) Traverse(ctx context.Context, query string) (Result, error) {
	res, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve %q: %w", query, err)
	}

	result := Result{Query: query, Match: res.Match}
	if res.Match == resolver.MatchNotFound {
		result.Outcome = NotFound
		return result, nil
	}

	result.Entity = res.Entity
	result.Neighbors = s.graph.Neighbors(res.Entity)
	if len(result.Neighbors) == 0 {
		result.Outcome = FoundIsolated
		return result, nil
	}
	result.Outcome = FoundWithNeighbors
	return result, nil
}
