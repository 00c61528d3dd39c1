// Package dependencies builds the id-keyed driver graph of a set of variables
// and refuses cyclic definitions before any series is evaluated.
package dependencies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/ethpandaops/projector/pkg/variables"
	"github.com/heimdalr/dag"
)

var (
	// ErrNodeNotLoaded is returned when a variable is not part of the loaded graph
	ErrNodeNotLoaded = errors.New("variable is not part of the dependency graph")
)

// Node is one loaded variable together with the records it needs to be evaluated
type Node struct {
	Variable *variables.Variable
	// Overrides holds the yearly overrides of an input variable
	Overrides []variables.Override
	// DriverName is the name shared by the driver variants of a calculated variable
	DriverName string
}

// Reader provides read-only access to a loaded graph
type Reader interface {
	// GetNode retrieves a node by variable id
	GetNode(id int64) (*Node, error)

	// Variants returns every loaded variable sharing name, ordered by id
	Variants(name string) []*variables.Variable

	// GetDependencies returns the ids of the direct driver variants of a variable
	GetDependencies(id int64) []int64

	// GetDependents returns the ids of the variables directly driven by a variable
	GetDependents(id int64) []int64

	// GetAllDependencies returns all transitive driver variants of a variable
	GetAllDependencies(id int64) []int64

	// IsPathBetween checks if from drives to, directly or transitively
	IsPathBetween(from, to int64) bool
}

// Graph is the driver graph of a set of variables. Edges run from a driver
// variant to the variable it drives.
type Graph struct {
	dag      *dag.DAG
	nodes    map[int64]*Node
	variants map[string][]*variables.Variable
	mutex    sync.RWMutex
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		dag:      dag.NewDAG(),
		nodes:    make(map[int64]*Node),
		variants: make(map[string][]*variables.Variable),
	}
}

func vertexID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseVertexID(id string) int64 {
	v, _ := strconv.ParseInt(id, 10, 64)
	return v
}

// loader walks a Reader from a set of roots into a Graph
type loader struct {
	ctx      context.Context
	reader   variables.Reader
	graph    *Graph
	maxDepth int
}

// Load builds the graph of everything the given variables depend on.
// Every root's own variants are loaded too, since a simulation averages them.
func Load(ctx context.Context, reader variables.Reader, maxDepth int, rootIDs ...int64) (*Graph, error) {
	l := &loader{ctx: ctx, reader: reader, graph: NewGraph(), maxDepth: maxDepth}

	for _, id := range rootIDs {
		root, err := reader.GetVariable(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load variable %d: %w", id, err)
		}

		variants, err := l.variants(root.Name)
		if err != nil {
			return nil, err
		}

		for _, v := range variants {
			if err := l.visit(v.ID, 0); err != nil {
				return nil, err
			}
		}
	}

	return l.graph, nil
}

// LoadAll builds the graph of every variable the reader knows about
func LoadAll(ctx context.Context, reader variables.Reader, maxDepth int) (*Graph, error) {
	names, err := reader.ListNames(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list variable names: %w", err)
	}

	l := &loader{ctx: ctx, reader: reader, graph: NewGraph(), maxDepth: maxDepth}

	for _, name := range names {
		variants, err := l.variants(name)
		if err != nil {
			return nil, err
		}

		for _, v := range variants {
			if err := l.visit(v.ID, 0); err != nil {
				return nil, err
			}
		}
	}

	return l.graph, nil
}

// variants lists and remembers the variants of a name
func (l *loader) variants(name string) ([]*variables.Variable, error) {
	if known, ok := l.graph.variants[name]; ok {
		return known, nil
	}

	list, err := l.reader.ListVariants(l.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants of %q: %w", name, err)
	}

	sorted := append([]*variables.Variable(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	l.graph.variants[name] = sorted

	return sorted, nil
}

func (l *loader) visit(id int64, depth int) error {
	if _, ok := l.graph.nodes[id]; ok {
		return nil
	}

	if l.maxDepth > 0 && depth > l.maxDepth {
		return fmt.Errorf("%w: variable %d is more than %d drivers deep", variables.ErrMaxDepthExceeded, id, l.maxDepth)
	}

	if err := l.ctx.Err(); err != nil {
		return err
	}

	v, err := l.reader.GetVariable(l.ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load variable %d: %w", id, err)
	}

	if err := v.Validate(); err != nil {
		return err
	}

	node := &Node{Variable: v}
	if err := l.graph.addNode(node); err != nil {
		return err
	}

	if v.Kind == variables.KindInput {
		overrides, err := l.reader.ListOverrides(l.ctx, v.ID)
		if err != nil {
			return fmt.Errorf("%w for %q (%d): %w", variables.ErrMissingOverrideData, v.Name, v.ID, err)
		}

		node.Overrides = overrides

		return nil
	}

	driver, err := l.reader.GetVariable(l.ctx, *v.DriverID)
	if err != nil {
		return fmt.Errorf("failed to load driver %d of %q: %w", *v.DriverID, v.Name, err)
	}

	node.DriverName = driver.Name

	driverVariants, err := l.variants(driver.Name)
	if err != nil {
		return err
	}

	if len(driverVariants) == 0 {
		return fmt.Errorf("%w: %q drives %q", variables.ErrNoDriverVariants, driver.Name, v.Name)
	}

	for _, dv := range driverVariants {
		if err := l.visit(dv.ID, depth+1); err != nil {
			return err
		}

		if err := l.graph.addEdge(dv.ID, v.ID); err != nil {
			return err
		}
	}

	return nil
}

func (g *Graph) addNode(node *Node) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	id := node.Variable.ID
	if err := g.dag.AddVertexByID(vertexID(id), vertexID(id)); err != nil {
		return fmt.Errorf("failed to add vertex %d: %w", id, err)
	}

	g.nodes[id] = node

	return nil
}

// addEdge adds driver → dependent, refusing any edge that would close a cycle
func (g *Graph) addEdge(driverID, dependentID int64) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, to := vertexID(driverID), vertexID(dependentID)

	if from == to {
		return fmt.Errorf("%w: %s drives itself", variables.ErrCyclicDependency, g.label(driverID))
	}

	// A path dependent → driver already exists if driver is among the dependent's descendants
	if descendants, err := g.dag.GetDescendants(to); err == nil {
		if _, exists := descendants[from]; exists {
			return fmt.Errorf("%w: %s → %s", variables.ErrCyclicDependency, g.label(driverID), g.label(dependentID))
		}
	}

	if err := g.dag.AddEdge(from, to); err != nil {
		return fmt.Errorf("invalid dependency %s → %s: %w", g.label(driverID), g.label(dependentID), err)
	}

	return nil
}

func (g *Graph) label(id int64) string {
	if node, ok := g.nodes[id]; ok {
		return fmt.Sprintf("%q (%d)", node.Variable.Name, id)
	}

	return vertexID(id)
}

// GetNode retrieves a node by variable id
func (g *Graph) GetNode(id int64) (*Node, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	node, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotLoaded, id)
	}

	return node, nil
}

// Variants returns every loaded variable sharing name, ordered by id
func (g *Graph) Variants(name string) []*variables.Variable {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.variants[name]
}

// Nodes returns every loaded node ordered by id
func (g *Graph) Nodes() []*Node {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Variable.ID < nodes[j].Variable.ID })

	return nodes
}

// GetDependencies returns the ids of the direct driver variants of a variable
func (g *Graph) GetDependencies(id int64) []int64 {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	parents, err := g.dag.GetParents(vertexID(id))
	if err != nil {
		return nil
	}

	return sortedIDs(parents)
}

// GetDependents returns the ids of the variables directly driven by a variable
func (g *Graph) GetDependents(id int64) []int64 {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	children, err := g.dag.GetChildren(vertexID(id))
	if err != nil {
		return nil
	}

	return sortedIDs(children)
}

// GetAllDependencies returns all transitive driver variants of a variable
func (g *Graph) GetAllDependencies(id int64) []int64 {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ancestors, err := g.dag.GetAncestors(vertexID(id))
	if err != nil {
		return nil
	}

	return sortedIDs(ancestors)
}

// IsPathBetween checks if from drives to, directly or transitively
func (g *Graph) IsPathBetween(from, to int64) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	descendants, err := g.dag.GetDescendants(vertexID(from))
	if err != nil {
		return false
	}

	_, exists := descendants[vertexID(to)]

	return exists
}

func sortedIDs(vertices map[string]interface{}) []int64 {
	ids := make([]int64, 0, len(vertices))
	for id := range vertices {
		ids = append(ids, parseVertexID(id))
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Ensure Graph implements Reader
var _ Reader = (*Graph)(nil)
