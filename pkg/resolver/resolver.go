package resolver

import (
	"context"
	"fmt"

	"chainsight/pkg/catalog"
	"chainsight/pkg/graph"
	"chainsight/pkg/index"
	"chainsight/pkg/logger"
)

// Match reports how a query was resolved to a graph node.
type Match string

const (
	// MatchExact means the query equalled a node display name verbatim.
	MatchExact Match = "EXACT"
	// MatchSemantic means the node was found via similarity search.
	MatchSemantic Match = "SEMANTIC"
	// MatchNotFound means no index produced a resolvable node.
	MatchNotFound Match = "NOT_FOUND"
)

// Resolution is the outcome of resolving a free-text query. Entity is nil
// iff Match is MatchNotFound.
type Resolution struct {
	Entity catalog.Entity
	Match  Match
}

// DefaultMinSimilarity is the floor under which a nearest neighbor is not
// considered a match. A k-NN search always returns something from a
// non-empty index, so without a floor nothing could ever resolve to
// NOT_FOUND.
const DefaultMinSimilarity float32 = 0.3

// Resolver locates the single best-matching graph node for a free-text name:
// exact display-name lookup first, then a fixed cascade of semantic indices.
// All reads, safe for concurrent use.
type Resolver struct {
	graph         *graph.Graph
	cascade       []*index.Index
	minSimilarity float32
}

// New wires a resolver over a frozen graph and the per-kind indices. The
// cascade order is fixed: locations first, then suppliers, then products —
// place descriptions dominate the expected query mix, so locations get the
// first shot at a fuzzy hit.
func New(g *graph.Graph, locations, suppliers, products *index.Index) *Resolver {
	return &Resolver{
		graph:         g,
		cascade:       []*index.Index{locations, suppliers, products},
		minSimilarity: DefaultMinSimilarity,
	}
}

// Resolve maps a query to a graph node. For a fixed index state and query,
// the result is the same on every call.
func (r *Resolver) Resolve(ctx context.Context, query string) (Resolution, error) {
	if e, found := r.graph.FindByName(query); found {
		return Resolution{Entity: e, Match: MatchExact}, nil
	}

	for _, idx := range r.cascade {
		hits, err := idx.SearchScored(ctx, query, 1)
		if err != nil {
			return Resolution{}, fmt.Errorf("semantic cascade failed at %s: %w", idx.Kind(), err)
		}
		if len(hits) == 0 || hits[0].Similarity < r.minSimilarity {
			continue
		}

		// The index stores names, not graph handles, so the top hit is
		// re-resolved by exact name. A dangling entry falls through to the
		// next index instead of failing the resolution.
		e, found := r.graph.FindByName(hits[0].Entity.DisplayName())
		if !found {
			logger.Warn("index entry has no graph node, falling through",
				"kind", idx.Kind(), "name", hits[0].Entity.DisplayName())
			continue
		}
		return Resolution{Entity: e, Match: MatchSemantic}, nil
	}

	return Resolution{Match: MatchNotFound}, nil
}
