package hierarchy

import (
	"fmt"
	"strings"
)

// MaxTraversalDepth bounds every traversal. A well-formed hierarchy is far
// shallower than this; overrunning the bound indicates an undetected cycle
// or corrupted graph and aborts the traversal with ErrDepthExceeded.
const MaxTraversalDepth = 512

// Graph is a directed acyclic graph of node names whose edges are
// child->parent inheritance links. Vertices are implicit: the vertex set is
// the union of all names referenced by the edge set. A Graph is immutable
// once built; a rebuild always constructs a fresh Graph so that readers
// holding a reference never observe a partial update.
type Graph struct {
	// parents maps a child to its direct parents (forward edge direction).
	parents map[string]NameSet
	// children maps a parent to its direct children (transposed direction).
	children map[string]NameSet
	edgeCount int
}

// BuildGraph constructs a graph from an edge set. Duplicate edges collapse
// to one. Self-loops and cyclic edge sets are integrity failures and yield
// an error wrapping ErrCycleDetected; a graph is never built from them.
func BuildGraph(edges []Relationship) (*Graph, error) {
	g := &Graph{
		parents:  make(map[string]NameSet),
		children: make(map[string]NameSet),
	}
	for _, edge := range edges {
		if edge.Child == edge.Parent {
			return nil, fmt.Errorf("self-loop on node %q: %w", edge.Child, ErrCycleDetected)
		}
		if g.parents[edge.Child].Contains(edge.Parent) {
			continue
		}
		g.addVertex(edge.Child)
		g.addVertex(edge.Parent)
		g.parents[edge.Child].Add(edge.Parent)
		g.children[edge.Parent].Add(edge.Child)
		g.edgeCount++
	}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) addVertex(name string) {
	if _, ok := g.parents[name]; !ok {
		g.parents[name] = make(NameSet)
		g.children[name] = make(NameSet)
	}
}

// checkAcyclic runs Kahn's algorithm over the forward edge direction. If
// any vertex is left unprocessed the edge set contains a cycle.
func (g *Graph) checkAcyclic() error {
	outDegree := make(map[string]int, len(g.parents))
	queue := make([]string, 0, len(g.parents))
	for name, parents := range g.parents {
		outDegree[name] = len(parents)
		if len(parents) == 0 {
			queue = append(queue, name)
		}
	}
	processed := 0
	for len(queue) > 0 {
		name := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		processed++
		for child := range g.children[name] {
			outDegree[child]--
			if outDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	if processed != len(g.parents) {
		return ErrCycleDetected
	}
	return nil
}

// VertexCount returns the number of nodes referenced by the edge set.
func (g *Graph) VertexCount() int {
	return len(g.parents)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// HasVertex reports whether the named node appears in the graph.
func (g *Graph) HasVertex(name string) bool {
	_, ok := g.parents[strings.ToUpper(name)]
	return ok
}

// HasEdge reports whether the direct edge child->parent exists.
func (g *Graph) HasEdge(child, parent string) bool {
	return g.parents[strings.ToUpper(child)].Contains(strings.ToUpper(parent))
}

// Edges returns a copy of the edge set in unspecified order.
func (g *Graph) Edges() []Relationship {
	out := make([]Relationship, 0, g.edgeCount)
	for child, parents := range g.parents {
		for parent := range parents {
			out = append(out, Relationship{Child: child, Parent: parent})
		}
	}
	return out
}

// Parents returns the direct parents of a node. Unknown names yield an
// empty set. The returned set is a copy.
func (g *Graph) Parents(name string) NameSet {
	return copySet(g.parents[strings.ToUpper(name)])
}

// Children returns the direct children of a node. Unknown names yield an
// empty set. The returned set is a copy.
func (g *Graph) Children(name string) NameSet {
	return copySet(g.children[strings.ToUpper(name)])
}

// ChildCount returns the number of direct children of a node.
func (g *Graph) ChildCount(name string) int {
	return len(g.children[strings.ToUpper(name)])
}

// Ascendants returns every node reachable from name by following
// child->parent edges, excluding name itself. Unknown names yield an empty
// set.
func (g *Graph) Ascendants(name string) (NameSet, error) {
	return g.walk(name, g.parents)
}

// Descendants returns every node from which name is reachable, i.e. all
// nodes that have name as an ascendant, excluding name itself. Unknown
// names yield an empty set.
func (g *Graph) Descendants(name string) (NameSet, error) {
	return g.walk(name, g.children)
}

// walk is an iterative breadth-first reachability search over the given
// adjacency direction, bounded by MaxTraversalDepth.
func (g *Graph) walk(name string, adjacency map[string]NameSet) (NameSet, error) {
	start := strings.ToUpper(name)
	reached := make(NameSet)
	if _, ok := adjacency[start]; !ok {
		return reached, nil
	}
	frontier := []string{start}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth > MaxTraversalDepth {
			return nil, fmt.Errorf("traversal from %q: %w", start, ErrDepthExceeded)
		}
		var next []string
		for _, current := range frontier {
			for neighbor := range adjacency[current] {
				if neighbor == start || reached.Contains(neighbor) {
					continue
				}
				reached.Add(neighbor)
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return reached, nil
}

func copySet(src NameSet) NameSet {
	out := make(NameSet, len(src))
	for name := range src {
		out.Add(name)
	}
	return out
}
