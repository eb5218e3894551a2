package resolver

import (
	"context"
	"testing"

	"chainsight/pkg/catalog"
	"chainsight/pkg/graph"
	"chainsight/pkg/index"

	"github.com/philippgille/chromem-go"
)

type fixture struct {
	resolver  *Resolver
	locations *index.Index
	suppliers *index.Index
	products  *index.Index
	graph     *graph.Builder
}

func newFixture(t *testing.T) (*graph.Builder, func(*graph.Builder) *Resolver, *fixture) {
	t.Helper()

	db := chromem.NewDB()
	embedder := index.NewHashEmbedder(0)

	fx := &fixture{graph: graph.NewBuilder()}
	var err error
	if fx.locations, err = index.New(db, catalog.KindLocation, embedder); err != nil {
		t.Fatal(err)
	}
	if fx.suppliers, err = index.New(db, catalog.KindSupplier, embedder); err != nil {
		t.Fatal(err)
	}
	if fx.products, err = index.New(db, catalog.KindProduct, embedder); err != nil {
		t.Fatal(err)
	}

	freeze := func(b *graph.Builder) *Resolver {
		fx.resolver = New(b.Freeze(), fx.locations, fx.suppliers, fx.products)
		return fx.resolver
	}
	return fx.graph, freeze, fx
}

func mustAddNode(t *testing.T, b *graph.Builder, e catalog.Entity) {
	t.Helper()
	if err := b.AddNode(e); err != nil {
		t.Fatalf("AddNode(%s) error = %v", e.Display(), err)
	}
}

func mustIndex(t *testing.T, idx *index.Index, entities ...catalog.Entity) {
	t.Helper()
	if _, err := idx.Add(context.Background(), entities); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
}

func TestResolveExactMatch(t *testing.T) {
	b, freeze, fx := newFixture(t)

	loc := catalog.Location{Name: "Port of Shanghai", Country: "China"}
	mustAddNode(t, b, loc)
	mustIndex(t, fx.locations, loc)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "Port of Shanghai")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchExact {
		t.Errorf("Match = %s, want %s", res.Match, MatchExact)
	}
	if res.Entity != catalog.Entity(loc) {
		t.Errorf("Entity = %v, want %v", res.Entity, loc)
	}
}

func TestResolveExactBeatsSemantic(t *testing.T) {
	b, freeze, fx := newFixture(t)

	// The supplier node's display name matches the query verbatim; the
	// location index would score a different node higher semantically.
	loc := catalog.Location{Name: "Shanghai Distribution Center", Country: "China"}
	sup := catalog.Supplier{Name: "Shanghai Dist", RiskScore: 0.5}
	mustAddNode(t, b, loc)
	mustAddNode(t, b, sup)
	mustIndex(t, fx.locations, loc)
	mustIndex(t, fx.suppliers, sup)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "Shanghai Dist")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchExact {
		t.Fatalf("Match = %s, want %s", res.Match, MatchExact)
	}
	if res.Entity.Kind() != catalog.KindSupplier {
		t.Errorf("resolved kind = %s, want %s", res.Entity.Kind(), catalog.KindSupplier)
	}
}

func TestResolveSemanticFallback(t *testing.T) {
	b, freeze, fx := newFixture(t)

	loc := catalog.Location{Name: "Port of Shanghai", Country: "China"}
	mustAddNode(t, b, loc)
	mustIndex(t, fx.locations, loc)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "Port of shangai")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchSemantic {
		t.Errorf("Match = %s, want %s", res.Match, MatchSemantic)
	}
	if res.Entity == nil || res.Entity.DisplayName() != "Port of Shanghai" {
		t.Errorf("Entity = %v, want Port of Shanghai", res.Entity)
	}
}

func TestResolveCascadeOrder(t *testing.T) {
	b, freeze, fx := newFixture(t)

	// Both a location and a supplier fuzzily match the query; the location
	// index is consulted first, so the location must win.
	loc := catalog.Location{Name: "Meridian Harbor Port", Country: "Singapore"}
	sup := catalog.Supplier{Name: "Meridian Harbor Logistics", RiskScore: 0.4}
	mustAddNode(t, b, loc)
	mustAddNode(t, b, sup)
	mustIndex(t, fx.locations, loc)
	mustIndex(t, fx.suppliers, sup)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "meridian harbor")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchSemantic {
		t.Fatalf("Match = %s, want %s", res.Match, MatchSemantic)
	}
	if res.Entity.Kind() != catalog.KindLocation {
		t.Errorf("resolved kind = %s, want %s (location index is consulted first)",
			res.Entity.Kind(), catalog.KindLocation)
	}
}

func TestResolveDanglingEntryFallsThrough(t *testing.T) {
	b, freeze, fx := newFixture(t)

	// The location index holds an entry whose node was never added to the
	// graph; resolution must fall through to the supplier index instead of
	// giving up.
	dangling := catalog.Location{Name: "Phantom Cargo Terminal", Country: "Nowhere"}
	sup := catalog.Supplier{Name: "Phantom Cargo Handling Co", RiskScore: 0.6}
	mustAddNode(t, b, sup)
	mustIndex(t, fx.locations, dangling)
	mustIndex(t, fx.suppliers, sup)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "phantom cargo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchSemantic {
		t.Fatalf("Match = %s, want %s", res.Match, MatchSemantic)
	}
	if res.Entity.Kind() != catalog.KindSupplier {
		t.Errorf("resolved kind = %s, want %s", res.Entity.Kind(), catalog.KindSupplier)
	}
}

func TestResolveNotFoundEmptyIndices(t *testing.T) {
	b, freeze, _ := newFixture(t)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "anything at all")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchNotFound {
		t.Errorf("Match = %s, want %s", res.Match, MatchNotFound)
	}
	if res.Entity != nil {
		t.Errorf("Entity = %v, want nil", res.Entity)
	}
}

func TestResolveNotFoundBelowSimilarityFloor(t *testing.T) {
	b, freeze, fx := newFixture(t)

	// The nearest neighbor to an unrelated query still exists, but far below
	// the similarity floor; it must not be treated as a match.
	loc := catalog.Location{Name: "Port of Shanghai", Country: "China"}
	mustAddNode(t, b, loc)
	mustIndex(t, fx.locations, loc)
	r := freeze(b)

	res, err := r.Resolve(context.Background(), "Unknown Place")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Match != MatchNotFound {
		t.Errorf("Match = %s, want %s", res.Match, MatchNotFound)
	}
}

func TestResolveDeterministic(t *testing.T) {
	b, freeze, fx := newFixture(t)

	locs := []catalog.Entity{
		catalog.Location{Name: "Hamburg Warehouse", Country: "Germany"},
		catalog.Location{Name: "Hamburg Logistics Hub", Country: "Germany"},
	}
	for _, e := range locs {
		mustAddNode(t, b, e)
	}
	mustIndex(t, fx.locations, locs...)
	r := freeze(b)

	first, err := r.Resolve(context.Background(), "hamburg depot")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), "hamburg depot")
		if err != nil {
			t.Fatalf("Resolve() round %d error = %v", i, err)
		}
		if again.Match != first.Match || again.Entity != first.Entity {
			t.Fatalf("resolution changed between calls: %+v vs %+v", again, first)
		}
	}
}
