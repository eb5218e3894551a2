package query

import (
	"context"
	"strings"
	"testing"

	"chainsight/pkg/catalog"
	"chainsight/pkg/index"
	"chainsight/pkg/world"
)

func newClient(t *testing.T) *Client {
	t.Helper()

	cat := &catalog.Catalog{
		Locations: []catalog.Location{{Name: "Port of Shanghai", Country: "China"}},
		Suppliers: []catalog.Supplier{
			{Name: "Acme Corp", RiskScore: 0.8, Revenue: 5_000_000},
			{Name: "Standalone Fabrication Co", RiskScore: 0.2, Revenue: 300_000},
		},
		Products: []catalog.Product{{Name: "Widget", SKU: "SKU1", Price: 50}},
		Placements: []catalog.Placement{
			{SupplierKey: "Acme Corp", LocationKey: "Port of Shanghai, China"},
		},
		Productions: []catalog.Production{
			{SupplierKey: "Acme Corp", ProductKey: "SKU1"},
		},
	}

	w, err := world.Build(context.Background(), cat, index.NewHashEmbedder(0))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return NewClient(w)
}

func TestExploreConnectionsExact(t *testing.T) {
	c := newClient(t)

	out, err := c.ExploreConnections(context.Background(), "Port of Shanghai")
	if err != nil {
		t.Fatalf("ExploreConnections() error = %v", err)
	}

	// Exact hit: the neighbor list alone, no approximate-match preamble.
	want := `Supplier "Acme Corp" (risk score: 0.80, revenue: 5000000.00)`
	if out != want {
		t.Errorf("ExploreConnections() = %q, want %q", out, want)
	}
}

func TestExploreConnectionsSemantic(t *testing.T) {
	c := newClient(t)

	out, err := c.ExploreConnections(context.Background(), "Port of shangai")
	if err != nil {
		t.Fatalf("ExploreConnections() error = %v", err)
	}

	if !strings.Contains(out, `No exact match for "Port of shangai"`) {
		t.Errorf("semantic result does not name the original query: %q", out)
	}
	if !strings.Contains(out, `Location "Port of Shanghai"`) {
		t.Errorf("semantic result does not name the matched node: %q", out)
	}
	if !strings.Contains(out, `Supplier "Acme Corp"`) {
		t.Errorf("semantic result does not list the neighbors: %q", out)
	}
}

func TestExploreConnectionsNotFound(t *testing.T) {
	c := newClient(t)

	out, err := c.ExploreConnections(context.Background(), "Unknown Place")
	if err != nil {
		t.Fatalf("ExploreConnections() error = %v", err)
	}

	if !strings.Contains(out, `"Unknown Place"`) {
		t.Errorf("not-found diagnostic does not name the query verbatim: %q", out)
	}
	for _, tool := range []string{"lookup_locations", "lookup_suppliers", "lookup_products"} {
		if !strings.Contains(out, tool) {
			t.Errorf("not-found diagnostic does not suggest %s: %q", tool, out)
		}
	}
}

func TestExploreConnectionsIsolated(t *testing.T) {
	c := newClient(t)

	out, err := c.ExploreConnections(context.Background(), "Standalone Fabrication Co")
	if err != nil {
		t.Fatalf("ExploreConnections() error = %v", err)
	}

	if !strings.Contains(out, "Standalone Fabrication Co") || !strings.Contains(out, "no connections") {
		t.Errorf("isolated diagnostic = %q, want one naming the node and stating it has no connections", out)
	}
}

func TestLookupByDescription(t *testing.T) {
	c := newClient(t)

	out, err := c.LookupByDescription(context.Background(), catalog.KindProduct, "widget", 5)
	if err != nil {
		t.Fatalf("LookupByDescription() error = %v", err)
	}
	if !strings.Contains(out, `Product "Widget" (sku: SKU1, price: 50.00)`) {
		t.Errorf("lookup output = %q, want the widget display string", out)
	}
}

func TestLookupByDescriptionSentinel(t *testing.T) {
	// An empty index can produce no hits; the caller must still get an
	// actionable message, not an empty string.
	w, err := world.Build(context.Background(), &catalog.Catalog{}, index.NewHashEmbedder(0))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	c := NewClient(w)

	out, err := c.LookupByDescription(context.Background(), catalog.KindSupplier, "chemical companies", 3)
	if err != nil {
		t.Fatalf("LookupByDescription() error = %v", err)
	}
	if !strings.Contains(out, "No supplier entries match") || !strings.Contains(out, `"chemical companies"`) {
		t.Errorf("sentinel = %q, want a no-matches message naming the query", out)
	}
}

func TestLookupByDescriptionUnknownKind(t *testing.T) {
	c := newClient(t)

	if _, err := c.LookupByDescription(context.Background(), catalog.Kind("WAREHOUSE"), "x", 1); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
}

func TestToolHandlers(t *testing.T) {
	c := newClient(t)
	tools := c.Tools()

	byName := map[string]int{}
	for i, tool := range tools {
		byName[tool.Name] = i
	}
	for _, name := range []string{"lookup_locations", "lookup_suppliers", "lookup_products", "explore_connections"} {
		if _, ok := byName[name]; !ok {
			t.Fatalf("missing tool %q", name)
		}
	}

	tests := []struct {
		name     string
		tool     string
		args     string
		want     string
		wantErr  bool
	}{
		{
			name: "explore valid args",
			tool: "explore_connections",
			args: `{"name": "Acme Corp"}`,
			want: `Location "Port of Shanghai"`,
		},
		{
			name: "explore repaired args",
			tool: "explore_connections",
			args: `{"name": "Acme Corp",}`,
			want: `Product "Widget"`,
		},
		{
			name: "lookup products",
			tool: "lookup_products",
			args: `{"query": "widget", "k": 1}`,
			want: `Product "Widget"`,
		},
		{
			name:    "explore empty name",
			tool:    "explore_connections",
			args:    `{"name": ""}`,
			wantErr: true,
		},
		{
			name:    "lookup empty query",
			tool:    "lookup_suppliers",
			args:    `{}`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := tools[byName[tc.tool]]
			out, err := tool.Handler(context.Background(), tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if !strings.Contains(out, tc.want) {
				t.Errorf("handler output = %q, want it to contain %q", out, tc.want)
			}
		})
	}
}

func TestToolSchemas(t *testing.T) {
	c := newClient(t)

	for _, tool := range c.Tools() {
		props, ok := tool.Parameters["properties"].(map[string]any)
		if !ok {
			t.Fatalf("tool %s has no properties in its schema", tool.Name)
		}
		wantProp := "query"
		if tool.Name == "explore_connections" {
			wantProp = "name"
		}
		if _, ok := props[wantProp]; !ok {
			t.Errorf("tool %s schema is missing property %q", tool.Name, wantProp)
		}
	}
}
