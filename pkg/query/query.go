package query

import (
	"context"
	"fmt"
	"strings"

	"chainsight/pkg/catalog"
	"chainsight/pkg/logger"
	"chainsight/pkg/resolver"
	"chainsight/pkg/traverse"
	"chainsight/pkg/world"
)

// DefaultLookupK is how many candidates a description lookup returns when
// the caller does not ask for a specific count.
const DefaultLookupK = 5

// Client is the external query surface over a built world. Its operations
// return strings ready for an LLM or human consumer: absence comes back as
// an actionable message, never as an ambiguous empty result.
type Client struct {
	world *world.World
}

func NewClient(w *world.World) *Client {
	return &Client{world: w}
}

// LookupByDescription runs a direct semantic search over one kind's index,
// with no graph step. When nothing matches it returns a sentinel message
// naming the query, so a model caller gets something it can act on.
func (c *Client) LookupByDescription(ctx context.Context, kind catalog.Kind, query string, k int) (string, error) {
	idx, err := c.world.IndexFor(kind)
	if err != nil {
		return "", err
	}
	if k <= 0 {
		k = DefaultLookupK
	}

	hits, err := idx.Search(ctx, query, k)
	if err != nil {
		return "", fmt.Errorf("lookup failed: %w", err)
	}
	if len(hits) == 0 {
		return fmt.Sprintf("No %s entries match %q.", strings.ToLower(string(kind)), query), nil
	}

	lines := make([]string, len(hits))
	for i, e := range hits {
		lines[i] = e.Display()
	}
	return strings.Join(lines, "\n"), nil
}

// ExploreConnections runs the full resolve-then-traverse pipeline for a
// named entity and renders the outcome:
//   - exact hit with neighbors: the neighbor list alone
//   - semantic hit: a note naming the query and the matched node, then the
//     neighbors, so the caller knows the result rests on an approximate match
//   - resolved but isolated: a message naming the node
//   - not found: a message naming the query verbatim and pointing at the
//     description lookup tools
func (c *Client) ExploreConnections(ctx context.Context, name string) (string, error) {
	result, err := c.world.Traverse.Traverse(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to explore connections: %w", err)
	}

	switch result.Outcome {
	case traverse.NotFound:
		return fmt.Sprintf(
			"No entity matches %q. Try describing it instead, using lookup_locations, lookup_suppliers, or lookup_products.",
			name,
		), nil

	case traverse.FoundIsolated:
		return fmt.Sprintf("%s has no connections.", result.Entity.Display()), nil

	default:
		lines := make([]string, len(result.Neighbors))
		for i, e := range result.Neighbors {
			lines[i] = e.Display()
		}
		neighborList := strings.Join(lines, "\n")

		if result.Match == resolver.MatchSemantic {
			logger.Debug("approximate match surfaced",
				"query", name, "matched", result.Entity.DisplayName())
			return fmt.Sprintf(
				"No exact match for %q; closest entity is %s. Its connections:\n%s",
				name, result.Entity.Display(), neighborList,
			), nil
		}
		return neighborList, nil
	}
}
