package taxonomy

// Edge is one node of the flattened tree with a pointer to its parent.
type Edge struct {
	Label  string
	ID     int
	Parent Identifier // absent at level 0
	Level  int
}

type edgeKey struct {
	label string
	id    int
}

// Flatten turns identifier rows into an edge list. Edges come out level by
// level, each level in row order. Cells without a numeric identifier are
// dropped, and a (label, id) pair already emitted is skipped.
func Flatten(rows []PairRow) []Edge {
	seen := make(map[edgeKey]struct{})
	var edges []Edge
	for level := 0; level < Levels; level++ {
		for _, r := range rows {
			id, ok := r.IDs[level].Int()
			if !ok {
				continue
			}
			key := edgeKey{label: r.Labels[level].Raw(), id: id}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			e := Edge{Label: key.label, ID: id, Level: level}
			if level > 0 {
				e.Parent = r.IDs[level-1]
			}
			edges = append(edges, e)
		}
	}
	return edges
}
