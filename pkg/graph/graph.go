package graph

import (
	"fmt"

	"chainsight/pkg/catalog"
)

// EdgeKind labels the relationship carried by a directed edge.
type EdgeKind string

const (
	// EdgeLocatedAt runs supplier → location.
	EdgeLocatedAt EdgeKind = "LOCATED_AT"
	// EdgeManufactures runs supplier → product.
	EdgeManufactures EdgeKind = "MANUFACTURES"
)

// handle is the graph-internal node identity: entity keys are only unique
// within a kind, so the kind is folded in.
func handle(e catalog.Entity) string {
	return string(e.Kind()) + "/" + e.Key()
}

// Edge is one directed, kind-labeled relationship between two entities.
type Edge struct {
	Source catalog.Entity
	Target catalog.Entity
	Kind   EdgeKind
}

type edgeTriple struct {
	source string
	target string
	kind   EdgeKind
}

// Builder accumulates nodes and edges during the build phase. It is not safe
// for concurrent use; call Freeze once the build pass is complete and hand
// out the resulting Graph.
type Builder struct {
	nodes     map[string]catalog.Entity
	nodeOrder []string
	succ      map[string][]string
	pred      map[string][]string
	edges     map[edgeTriple]struct{}
	edgeOrder []edgeTriple
}

func NewBuilder() *Builder {
	return &Builder{
		nodes: map[string]catalog.Entity{},
		succ:  map[string][]string{},
		pred:  map[string][]string{},
		edges: map[edgeTriple]struct{}{},
	}
}

// AddNode inserts an entity as a node. Re-adding the same entity is a no-op;
// re-adding an entity whose identity key is already taken by different data
// is a build-phase bug and fails.
func (b *Builder) AddNode(e catalog.Entity) error {
	if e == nil {
		return fmt.Errorf("cannot add nil entity")
	}

	h := handle(e)
	if existing, ok := b.nodes[h]; ok {
		if existing != e {
			return fmt.Errorf("node key collision: %q already holds %s", h, existing.Display())
		}
		return nil
	}

	b.nodes[h] = e
	b.nodeOrder = append(b.nodeOrder, h)
	return nil
}

// AddEdge inserts a directed, kind-labeled edge. Both endpoints must already
// be present as nodes. Re-adding an identical (source, target, kind) triple
// is a no-op.
func (b *Builder) AddEdge(source, target catalog.Entity, kind EdgeKind) error {
	if source == nil || target == nil {
		return fmt.Errorf("edge endpoints must not be nil")
	}

	sh, th := handle(source), handle(target)
	if _, ok := b.nodes[sh]; !ok {
		return fmt.Errorf("edge source %q not in graph", sh)
	}
	if _, ok := b.nodes[th]; !ok {
		return fmt.Errorf("edge target %q not in graph", th)
	}
	if sh == th {
		return fmt.Errorf("self-loop on %q", sh)
	}
	if err := checkEdgeKinds(source, target, kind); err != nil {
		return err
	}

	triple := edgeTriple{source: sh, target: th, kind: kind}
	if _, dup := b.edges[triple]; dup {
		return nil
	}
	b.edges[triple] = struct{}{}
	b.edgeOrder = append(b.edgeOrder, triple)
	b.succ[sh] = append(b.succ[sh], th)
	b.pred[th] = append(b.pred[th], sh)
	return nil
}

func checkEdgeKinds(source, target catalog.Entity, kind EdgeKind) error {
	switch kind {
	case EdgeLocatedAt:
		if source.Kind() != catalog.KindSupplier || target.Kind() != catalog.KindLocation {
			return fmt.Errorf("%s edge must run supplier → location, got %s → %s",
				kind, source.Kind(), target.Kind())
		}
	case EdgeManufactures:
		if source.Kind() != catalog.KindSupplier || target.Kind() != catalog.KindProduct {
			return fmt.Errorf("%s edge must run supplier → product, got %s → %s",
				kind, source.Kind(), target.Kind())
		}
	default:
		return fmt.Errorf("unknown edge kind %q", kind)
	}
	return nil
}

// Freeze seals the builder into a read-only Graph. The builder must not be
// used afterwards; the Graph shares its internal maps and relies on nothing
// mutating them, which is what makes lock-free concurrent reads safe.
func (b *Builder) Freeze() *Graph {
	g := &Graph{
		nodes:     b.nodes,
		nodeOrder: b.nodeOrder,
		succ:      b.succ,
		pred:      b.pred,
		edgeOrder: b.edgeOrder,
	}
	b.nodes = nil
	b.nodeOrder = nil
	b.succ = nil
	b.pred = nil
	b.edges = nil
	b.edgeOrder = nil
	return g
}

// Graph is the frozen relationship graph. All methods are pure reads and safe
// for concurrent use.
type Graph struct {
	nodes     map[string]catalog.Entity
	nodeOrder []string
	succ      map[string][]string
	pred      map[string][]string
	edgeOrder []edgeTriple
}

// FindByName scans node display names for an exact, case-sensitive match and
// returns the first hit in insertion order.
func (g *Graph) FindByName(name string) (catalog.Entity, bool) {
	for _, h := range g.nodeOrder {
		if e := g.nodes[h]; e.DisplayName() == name {
			return e, true
		}
	}
	return nil, false
}

// Neighbors returns the union of direct successors and direct predecessors of
// the given entity, deduplicated, in edge insertion order. Edge direction and
// kind are not exposed at this layer. An isolated or absent node yields an
// empty slice, never an error.
func (g *Graph) Neighbors(e catalog.Entity) []catalog.Entity {
	if e == nil {
		return []catalog.Entity{}
	}

	h := handle(e)
	seen := map[string]struct{}{}
	neighbors := []catalog.Entity{}
	for _, nh := range append(append([]string{}, g.succ[h]...), g.pred[h]...) {
		if _, dup := seen[nh]; dup {
			continue
		}
		seen[nh] = struct{}{}
		neighbors = append(neighbors, g.nodes[nh])
	}
	return neighbors
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []catalog.Entity {
	out := make([]catalog.Entity, len(g.nodeOrder))
	for i, h := range g.nodeOrder {
		out[i] = g.nodes[h]
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edgeOrder))
	for i, t := range g.edgeOrder {
		out[i] = Edge{
			Source: g.nodes[t.source],
			Target: g.nodes[t.target],
			Kind:   t.kind,
		}
	}
	return out
}

// NodeCount reports the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount reports the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }
