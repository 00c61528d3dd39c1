package dependencies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethpandaops/projector/pkg/variables"
)

// Info contains graph visualization information
type Info struct {
	Levels         map[int][]int64 `json:"levels"`
	MaxLevel       int             `json:"max_level"`
	RootNodes      []int64         `json:"root_nodes"`
	TotalVariables int             `json:"total_variables"`
}

// GetInfo returns the variables grouped by driver depth. Inputs sit on level 0
// and every calculated variable one level above its deepest driver variant.
func (g *Graph) GetInfo() *Info {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	levels := g.calculateLevels()

	levelGroups := make(map[int][]int64)
	maxLevel := 0
	for id, level := range levels {
		if level > maxLevel {
			maxLevel = level
		}
		levelGroups[level] = append(levelGroups[level], id)
	}

	for level := range levelGroups {
		sort.Slice(levelGroups[level], func(i, j int) bool { return levelGroups[level][i] < levelGroups[level][j] })
	}

	return &Info{
		Levels:         levelGroups,
		MaxLevel:       maxLevel,
		RootNodes:      g.findRootNodes(),
		TotalVariables: len(g.nodes),
	}
}

// calculateLevels calculates the driver depth of each variable
func (g *Graph) calculateLevels() map[int64]int {
	levels := make(map[int64]int, len(g.nodes))
	for id := range g.nodes {
		levels[id] = 0
	}

	// Keep updating levels until stable
	changed := true
	for changed {
		changed = false
		for id := range g.nodes {
			parents, err := g.dag.GetParents(vertexID(id))
			if err != nil {
				continue
			}

			maxParent := -1
			for parent := range parents {
				if l := levels[parseVertexID(parent)]; l > maxParent {
					maxParent = l
				}
			}

			if maxParent >= 0 && maxParent+1 > levels[id] {
				levels[id] = maxParent + 1
				changed = true
			}
		}
	}

	return levels
}

// findRootNodes finds all variables without drivers
func (g *Graph) findRootNodes() []int64 {
	roots := []int64{}
	for id, node := range g.nodes {
		if node.Variable.Kind == variables.KindInput {
			roots = append(roots, id)
		}
	}

	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	return roots
}

// GenerateDOTFormat generates a DOT format representation of the graph
func (g *Graph) GenerateDOTFormat() string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	sb.WriteString("digraph variables {\n")
	sb.WriteString("  rankdir=LR;\n")

	for _, id := range ids {
		v := g.nodes[id].Variable
		if v.Kind == variables.KindInput {
			fmt.Fprintf(&sb, "  \"%d\" [label=\"%s #%d\", shape=box, style=filled, fillcolor=lightblue];\n", id, v.Name, id)
		} else {
			fmt.Fprintf(&sb, "  \"%d\" [label=\"%s #%d\"];\n", id, v.Name, id)
		}
	}

	for _, id := range ids {
		parents, err := g.dag.GetParents(vertexID(id))
		if err != nil {
			continue
		}
		for _, parent := range sortedIDs(parents) {
			fmt.Fprintf(&sb, "  \"%d\" -> \"%d\";\n", parent, id)
		}
	}

	sb.WriteString("}")

	return sb.String()
}
