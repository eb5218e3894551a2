package world

import (
	"context"
	"fmt"

	"chainsight/pkg/catalog"
	"chainsight/pkg/graph"
	"chainsight/pkg/index"
	"chainsight/pkg/logger"
	"chainsight/pkg/resolver"
	"chainsight/pkg/traverse"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/errgroup"
)

// World bundles the frozen knowledge structures built from one catalog: the
// relationship graph, the three semantic indices, and the query services
// wired over them. Everything is read-only after Build and safe for
// concurrent use.
type World struct {
	ID      string
	Catalog *catalog.Catalog
	Graph   *graph.Graph

	Locations *index.Index
	Suppliers *index.Index
	Products  *index.Index

	Resolver *resolver.Resolver
	Traverse *traverse.Service
}

// Build runs the single build phase: graph construction, then index
// population per kind in parallel. No reader exists until Build returns, so
// no locking is needed afterwards.
func Build(ctx context.Context, cat *catalog.Catalog, embedder index.Embedder) (*World, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate world id: %w", err)
	}

	g, err := buildGraph(cat)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	db := chromem.NewDB()
	locations, err := index.New(db, catalog.KindLocation, embedder)
	if err != nil {
		return nil, err
	}
	suppliers, err := index.New(db, catalog.KindSupplier, embedder)
	if err != nil {
		return nil, err
	}
	products, err := index.New(db, catalog.KindProduct, embedder)
	if err != nil {
		return nil, err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	var nLoc, nSup, nProd int
	eg.Go(func() error {
		var err error
		nLoc, err = locations.Add(egCtx, asEntities(cat.Locations))
		return err
	})
	eg.Go(func() error {
		var err error
		nSup, err = suppliers.Add(egCtx, asEntities(cat.Suppliers))
		return err
	})
	eg.Go(func() error {
		var err error
		nProd, err = products.Add(egCtx, asEntities(cat.Products))
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to populate indices: %w", err)
	}

	r := resolver.New(g, locations, suppliers, products)
	w := &World{
		ID:        id,
		Catalog:   cat,
		Graph:     g,
		Locations: locations,
		Suppliers: suppliers,
		Products:  products,
		Resolver:  r,
		Traverse:  traverse.New(r, g),
	}

	logger.Info("world built",
		"id", w.ID,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"indexed_locations", nLoc,
		"indexed_suppliers", nSup,
		"indexed_products", nProd,
	)
	return w, nil
}

// IndexFor returns the semantic index for the given kind.
func (w *World) IndexFor(kind catalog.Kind) (*index.Index, error) {
	switch kind {
	case catalog.KindLocation:
		return w.Locations, nil
	case catalog.KindSupplier:
		return w.Suppliers, nil
	case catalog.KindProduct:
		return w.Products, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func buildGraph(cat *catalog.Catalog) (*graph.Graph, error) {
	b := graph.NewBuilder()

	locByKey := make(map[string]catalog.Location, len(cat.Locations))
	for _, loc := range cat.Locations {
		if err := b.AddNode(loc); err != nil {
			return nil, err
		}
		locByKey[loc.Key()] = loc
	}
	supByKey := make(map[string]catalog.Supplier, len(cat.Suppliers))
	for _, sup := range cat.Suppliers {
		if err := b.AddNode(sup); err != nil {
			return nil, err
		}
		supByKey[sup.Key()] = sup
	}
	prodByKey := make(map[string]catalog.Product, len(cat.Products))
	for _, prod := range cat.Products {
		if err := b.AddNode(prod); err != nil {
			return nil, err
		}
		prodByKey[prod.Key()] = prod
	}

	for _, pl := range cat.Placements {
		sup, ok := supByKey[pl.SupplierKey]
		if !ok {
			return nil, fmt.Errorf("placement references unknown supplier %q", pl.SupplierKey)
		}
		loc, ok := locByKey[pl.LocationKey]
		if !ok {
			return nil, fmt.Errorf("placement references unknown location %q", pl.LocationKey)
		}
		if err := b.AddEdge(sup, loc, graph.EdgeLocatedAt); err != nil {
			return nil, err
		}
	}
	for _, pr := range cat.Productions {
		sup, ok := supByKey[pr.SupplierKey]
		if !ok {
			return nil, fmt.Errorf("production references unknown supplier %q", pr.SupplierKey)
		}
		prod, ok := prodByKey[pr.ProductKey]
		if !ok {
			return nil, fmt.Errorf("production references unknown product %q", pr.ProductKey)
		}
		if err := b.AddEdge(sup, prod, graph.EdgeManufactures); err != nil {
			return nil, err
		}
	}

	return b.Freeze(), nil
}

func asEntities[T catalog.Entity](in []T) []catalog.Entity {
	out := make([]catalog.Entity, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}
