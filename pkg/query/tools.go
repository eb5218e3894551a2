package query

import (
	"context"
	"fmt"
	"strings"

	"chainsight/pkg/ai"
	"chainsight/pkg/catalog"
)

type lookupArgs struct {
	Query string `json:"query" jsonschema:"description=Free-text description of what to find"`
	K     int    `json:"k,omitempty" jsonschema:"description=Maximum number of results,default=5"`
}

type exploreArgs struct {
	Name string `json:"name" jsonschema:"description=Name of the entity whose connections to explore"`
}

// Tools exposes the query surface as callable tools for a model: one
// description lookup per entity kind plus the connection explorer.
func (c *Client) Tools() []ai.Tool {
	return []ai.Tool{
		c.lookupTool("lookup_locations", catalog.KindLocation,
			"Find supply chain locations (ports, warehouses, facilities) matching a free-text description."),
		c.lookupTool("lookup_suppliers", catalog.KindSupplier,
			"Find suppliers matching a free-text description."),
		c.lookupTool("lookup_products", catalog.KindProduct,
			"Find products matching a free-text description, e.g. 'medical supplies'."),
		{
			Name: "explore_connections",
			Description: "Find everything directly connected to a named entity: the suppliers at a " +
				"location, or the location and products of a supplier. Falls back to fuzzy name " +
				"matching and says so when it does.",
			Parameters: ai.SchemaMap(exploreArgs{}),
			Handler: func(ctx context.Context, arguments string) (string, error) {
				var args exploreArgs
				if err := ai.UnmarshalFlexible(arguments, &args); err != nil {
					return "", fmt.Errorf("invalid explore_connections arguments: %w", err)
				}
				if strings.TrimSpace(args.Name) == "" {
					return "", fmt.Errorf("explore_connections requires a non-empty name")
				}
				return c.ExploreConnections(ctx, args.Name)
			},
		},
	}
}

func (c *Client) lookupTool(name string, kind catalog.Kind, description string) ai.Tool {
	return ai.Tool{
		Name:        name,
		Description: description,
		Parameters:  ai.SchemaMap(lookupArgs{}),
		Handler: func(ctx context.Context, arguments string) (string, error) {
			var args lookupArgs
			if err := ai.UnmarshalFlexible(arguments, &args); err != nil {
				return "", fmt.Errorf("invalid %s arguments: %w", name, err)
			}
			if strings.TrimSpace(args.Query) == "" {
				return "", fmt.Errorf("%s requires a non-empty query", name)
			}
			return c.LookupByDescription(ctx, kind, args.Query, args.K)
		},
	}
}

// QueryAgentic answers a free-form question by letting the model drive the
// query tools until it settles on an answer.
func (c *Client) QueryAgentic(ctx context.Context, model ai.Client, question string, opts ...ai.GenerateOption) (string, error) {
	messages := []ai.ChatMessage{{Role: "user", Message: question}}

	opts = append([]ai.GenerateOption{ai.WithSystemPrompts(ai.ToolQueryPrompt)}, opts...)
	answer, err := model.GenerateChatWithTools(ctx, messages, c.Tools(), opts...)
	if err != nil {
		return "", fmt.Errorf("agentic query failed: %w", err)
	}
	return answer, nil
}
