package util

import (
	"fmt"
	"strings"

	"chainsight/pkg/catalog"
	"chainsight/pkg/graph"
)

// ToDOT renders the supply chain graph in Graphviz DOT format. Suppliers
// with a risk score above riskThreshold are filled red, the rest green;
// locations are blue boxes and products yellow ovals.
func ToDOT(g *graph.Graph, riskThreshold float64) string {
	var w strings.Builder
	w.WriteString("digraph SupplyChain {\n")
	w.WriteString("  rankdir=LR;\n")
	w.WriteString("  node [fontname=\"Arial\"];\n")

	for _, n := range g.Nodes() {
		switch e := n.(type) {
		case catalog.Location:
			w.WriteString(fmt.Sprintf("  %s [label=%s, shape=box, style=filled, fillcolor=lightblue];\n",
				quote(nodeID(e)), quote(e.Name)))
		case catalog.Supplier:
			color := "lightgreen"
			label := e.Name
			if e.RiskScore > riskThreshold {
				color = "red"
				label = fmt.Sprintf("%s\n(Risk: %.2f)", e.Name, e.RiskScore)
			}
			w.WriteString(fmt.Sprintf("  %s [label=%s, style=filled, fillcolor=%s];\n",
				quote(nodeID(e)), quote(label), color))
		case catalog.Product:
			w.WriteString(fmt.Sprintf("  %s [label=%s, shape=oval, style=filled, fillcolor=lightyellow];\n",
				quote(nodeID(e)), quote(fmt.Sprintf("%s\n$%.2f", e.Name, e.Price))))
		}
	}

	for _, e := range g.Edges() {
		label := string(e.Kind)
		if e.Kind == graph.EdgeManufactures {
			label = "MAKES"
		}
		w.WriteString(fmt.Sprintf("  %s -> %s [label=%s];\n",
			quote(nodeID(e.Source)), quote(nodeID(e.Target)), quote(label)))
	}

	w.WriteString("}\n")
	return w.String()
}

// nodeID disambiguates nodes whose display names collide across kinds.
func nodeID(e catalog.Entity) string {
	return string(e.Kind()) + ":" + e.Key()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
