package index

import (
	"context"
	"math"
	"testing"

	"chainsight/pkg/catalog"

	"github.com/philippgille/chromem-go"
)

func newTestIndex(t *testing.T, kind catalog.Kind) *Index {
	t.Helper()
	idx, err := New(chromem.NewDB(), kind, NewHashEmbedder(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return idx
}

func TestAddDedupesByKey(t *testing.T) {
	idx := newTestIndex(t, catalog.KindLocation)
	ctx := context.Background()

	shanghai := catalog.Location{Name: "Port of Shanghai", Country: "China"}
	entities := []catalog.Entity{
		shanghai,
		shanghai,
		catalog.Location{Name: "Port of Rotterdam", Country: "Netherlands"},
	}

	n, err := idx.Add(ctx, entities)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Add() indexed %d, want 2", n)
	}

	// A second pass with known keys writes nothing.
	n, err = idx.Add(ctx, entities)
	if err != nil {
		t.Fatalf("second Add() error = %v", err)
	}
	if n != 0 {
		t.Errorf("re-adding known keys indexed %d, want 0", n)
	}
	if idx.Count() != 2 {
		t.Errorf("Count() = %d, want 2", idx.Count())
	}
}

func TestAddEmptyInput(t *testing.T) {
	idx := newTestIndex(t, catalog.KindSupplier)

	n, err := idx.Add(context.Background(), nil)
	if err != nil {
		t.Fatalf("Add(nil) error = %v", err)
	}
	if n != 0 {
		t.Errorf("Add(nil) = %d, want 0", n)
	}
}

func TestAddRejectsWrongKind(t *testing.T) {
	idx := newTestIndex(t, catalog.KindLocation)

	_, err := idx.Add(context.Background(), []catalog.Entity{
		catalog.Supplier{Name: "Acme Corp"},
	})
	if err == nil {
		t.Fatal("indexing a supplier in the location index must fail")
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := newTestIndex(t, catalog.KindProduct)

	hits, err := idx.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search() on empty index error = %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("Search() on empty index = %v, want empty slice", hits)
	}
}

func TestSearchRoundTrip(t *testing.T) {
	idx := newTestIndex(t, catalog.KindSupplier)
	ctx := context.Background()

	acme := catalog.Supplier{Name: "Acme Corp", RiskScore: 0.8, Revenue: 5_000_000}
	others := []catalog.Entity{
		catalog.Supplier{Name: "Globex Industries", RiskScore: 0.3, Revenue: 2_000_000},
		acme,
		catalog.Supplier{Name: "Initech Manufacturing", RiskScore: 0.5, Revenue: 750_000},
	}
	if _, err := idx.Add(ctx, others); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	hits, err := idx.Search(ctx, "Acme Corp", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() = %d hits, want 1", len(hits))
	}
	got, ok := hits[0].(catalog.Supplier)
	if !ok {
		t.Fatalf("Search() returned %T, want catalog.Supplier", hits[0])
	}
	if got != acme {
		t.Errorf("round-trip record = %+v, want %+v", got, acme)
	}
}

func TestSearchFuzzyMatch(t *testing.T) {
	idx := newTestIndex(t, catalog.KindLocation)
	ctx := context.Background()

	_, err := idx.Add(ctx, []catalog.Entity{
		catalog.Location{Name: "Port of Shanghai", Country: "China"},
		catalog.Location{Name: "Hamburg Warehouse", Country: "Germany"},
		catalog.Location{Name: "Mexico City Manufacturing Facility", Country: "Mexico"},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	tests := []struct {
		name     string
		query    string
		wantName string
	}{
		{"misspelled port", "Port of shangai", "Port of Shanghai"},
		{"paraphrased facility", "Port of mexico city", "Mexico City Manufacturing Facility"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hits, err := idx.Search(ctx, tc.query, 1)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tc.query, err)
			}
			if len(hits) != 1 {
				t.Fatalf("Search(%q) = %d hits, want 1", tc.query, len(hits))
			}
			if hits[0].DisplayName() != tc.wantName {
				t.Errorf("Search(%q) top hit = %q, want %q", tc.query, hits[0].DisplayName(), tc.wantName)
			}
		})
	}
}

func TestSearchKClampedAndRanked(t *testing.T) {
	idx := newTestIndex(t, catalog.KindProduct)
	ctx := context.Background()

	_, err := idx.Add(ctx, []catalog.Entity{
		catalog.Product{Name: "Hydraulic Pump", SKU: "SKU1", Price: 100},
		catalog.Product{Name: "Hydraulic Valve", SKU: "SKU2", Price: 200},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// k larger than the index is clamped, not an error.
	hits, err := idx.Search(ctx, "Hydraulic Pump", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search() = %d hits, want 2", len(hits))
	}
	if hits[0].DisplayName() != "Hydraulic Pump" {
		t.Errorf("top hit = %q, want %q", hits[0].DisplayName(), "Hydraulic Pump")
	}

	scored, err := idx.SearchScored(ctx, "Hydraulic Pump", 10)
	if err != nil {
		t.Fatalf("SearchScored() error = %v", err)
	}
	if len(scored) != 2 || scored[0].Similarity < scored[1].Similarity {
		t.Errorf("SearchScored() not ranked by descending similarity: %v", scored)
	}
	if scored[0].Similarity < 0.99 {
		t.Errorf("exact text similarity = %f, want ~1", scored[0].Similarity)
	}
}

func TestSearchDeterministic(t *testing.T) {
	idx := newTestIndex(t, catalog.KindSupplier)
	ctx := context.Background()

	// Identical embedding texts tie exactly; insertion sequence must break
	// the tie the same way on every call.
	_, err := idx.Add(ctx, []catalog.Entity{
		catalog.Supplier{Name: "Twin Components Ltd", RiskScore: 0.1},
		catalog.Supplier{Name: "Twin Components Ltd ", RiskScore: 0.9},
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	first, err := idx.Search(ctx, "Twin Components Ltd", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := idx.Search(ctx, "Twin Components Ltd", 2)
		if err != nil {
			t.Fatalf("Search() round %d error = %v", i, err)
		}
		if len(again) != len(first) {
			t.Fatalf("result size changed between calls: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("result order changed between calls at %d: %v vs %v", j, first[j], again[j])
			}
		}
	}
}

func TestHashEmbedderProperties(t *testing.T) {
	h := NewHashEmbedder(0)
	ctx := context.Background()

	a, err := h.GenerateEmbedding(ctx, []byte("Port of Shanghai"))
	if err != nil {
		t.Fatalf("GenerateEmbedding() error = %v", err)
	}
	b, _ := h.GenerateEmbedding(ctx, []byte("Port of Shanghai"))

	var norm, dot float64
	for i := range a {
		norm += float64(a[i]) * float64(a[i])
		dot += float64(a[i]) * float64(b[i])
	}
	if math.Abs(norm-1) > 1e-4 {
		t.Errorf("embedding norm = %f, want 1", norm)
	}
	if math.Abs(dot-1) > 1e-4 {
		t.Errorf("same input must embed identically, cosine = %f", dot)
	}

	empty, err := h.GenerateEmbedding(ctx, nil)
	if err != nil {
		t.Fatalf("GenerateEmbedding(nil) error = %v", err)
	}
	for _, v := range empty {
		if v != 0 {
			t.Fatal("empty input must yield the zero vector")
		}
	}
}
