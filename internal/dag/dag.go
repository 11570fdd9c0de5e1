// Package dag orders named nodes by their dependencies. Runtime bodies use
// it to settle frame origins: a body whose ephemeris is expressed relative
// to another body depends on that body and must be finalized after it.
package dag

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned when the graph contains a dependency cycle.
var ErrCycle = errors.New("cycle detected")

// ErrNodeNotFound is returned when an operation references a non-existent node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when adding a node that already exists.
var ErrDuplicateNode = errors.New("duplicate node")

// ErrSelfEdge is returned when an edge would create a self-loop.
var ErrSelfEdge = errors.New("self-referencing edge")

// DAG is a directed acyclic graph. Edges point from a node to its
// dependencies: if A depends on B, there is an edge from A to B.
type DAG struct {
	// adjacency maps nodeID → set of dependency IDs (forward edges).
	adjacency map[string]map[string]bool
	// reverse maps nodeID → set of dependent IDs (backward edges).
	reverse map[string]map[string]bool
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		adjacency: make(map[string]map[string]bool),
		reverse:   make(map[string]map[string]bool),
	}
}

// AddNode adds a node. Returns ErrDuplicateNode if it already exists.
func (d *DAG) AddNode(id string) error {
	if d.Has(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	d.adjacency[id] = make(map[string]bool)
	d.reverse[id] = make(map[string]bool)
	return nil
}

// Has reports whether id is a node of the graph.
func (d *DAG) Has(id string) bool {
	_, ok := d.adjacency[id]
	return ok
}

// AddEdge adds a dependency edge: from depends on to. Both nodes must
// already exist. Returns an error if either node is missing, the edge
// would create a self-loop, or the edge would introduce a cycle.
func (d *DAG) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfEdge, from)
	}
	if !d.Has(from) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, from)
	}
	if !d.Has(to) {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, to)
	}
	if d.adjacency[from][to] {
		return nil
	}
	// A path to → ... → from plus the new edge would close a loop.
	if d.hasPath(to, from) {
		return fmt.Errorf("%w: edge %s → %s would create a cycle", ErrCycle, from, to)
	}
	d.adjacency[from][to] = true
	d.reverse[to][from] = true
	return nil
}

// TopologicalSort returns node IDs with dependencies before dependents.
// Nodes freed at the same step appear alphabetically, so the order is
// deterministic. Returns ErrCycle if the graph contains a cycle.
func (d *DAG) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(d.adjacency))
	for id, deps := range d.adjacency {
		inDegree[id] = len(deps)
	}

	queue := zeroDegreeNodes(inDegree)
	sorted := make([]string, 0, len(d.adjacency))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)

		var freed []string
		for dependent := range d.reverse[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				freed = append(freed, dependent)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}

	if len(sorted) != len(d.adjacency) {
		return nil, fmt.Errorf("%w: not all nodes could be ordered (%d of %d)",
			ErrCycle, len(sorted), len(d.adjacency))
	}
	return sorted, nil
}

// Ancestors returns every transitive dependency of id, sorted
// alphabetically. Returns nil if id does not exist.
func (d *DAG) Ancestors(id string) []string {
	if !d.Has(id) {
		return nil
	}
	visited := make(map[string]bool)
	d.collectAncestors(id, visited)
	result := make([]string, 0, len(visited))
	for v := range visited {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

// hasPath reports whether there is a directed path from src to dst
// through forward edges.
func (d *DAG) hasPath(src, dst string) bool {
	if src == dst {
		return false
	}
	visited := make(map[string]bool)
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for dep := range d.adjacency[cur] {
			if dep == dst {
				return true
			}
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}

func (d *DAG) collectAncestors(id string, visited map[string]bool) {
	for dep := range d.adjacency[id] {
		if !visited[dep] {
			visited[dep] = true
			d.collectAncestors(dep, visited)
		}
	}
}

// zeroDegreeNodes returns, sorted, the IDs with zero in-degree.
func zeroDegreeNodes(inDegree map[string]int) []string {
	var result []string
	for id, deg := range inDegree {
		if deg == 0 {
			result = append(result, id)
		}
	}
	sort.Strings(result)
	return result
}
