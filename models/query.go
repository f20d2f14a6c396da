package models

// DanglingEdges returns edges with at least one endpoint missing from the graph
func (g *Graph) DanglingEdges() []Edge {
	known := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		known[node.ID] = true
	}

	var result []Edge
	for _, edge := range g.Edges {
		if !known[edge.Source] || !known[edge.Target] {
			result = append(result, edge)
		}
	}
	return result
}
