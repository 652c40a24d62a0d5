package assessment

import (
	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// Graph is a directed graph over document ids built from recorded relations.
// Preferences point from the preferred document to the other one; duplicates
// point both ways. Cycles are allowed.
type Graph struct {
	adj     map[uuid.UUID][]uuid.UUID
	reverse *Graph
}

func NewGraph(relations []domain.Relation) *Graph {
	g := &Graph{adj: make(map[uuid.UUID][]uuid.UUID)}
	for _, r := range relations {
		switch r.Type {
		case domain.RelationPreferred:
			g.AddEdge(r.Source, r.Target)
		case domain.RelationDuplicate:
			g.AddEdge(r.Source, r.Target)
			g.AddEdge(r.Target, r.Source)
		}
	}
	return g
}

func (g *Graph) AddEdge(from, to uuid.UUID) {
	g.adj[from] = append(g.adj[from], to)
	if _, ok := g.adj[to]; !ok {
		g.adj[to] = nil
	}
	g.reverse = nil
}

// ReachableFrom returns every node reachable from doc over at least one edge.
// doc itself is only included when it lies on a cycle.
func (g *Graph) ReachableFrom(doc uuid.UUID) mapset.Set[uuid.UUID] {
	visited := mapset.NewThreadUnsafeSet[uuid.UUID]()
	queue := []uuid.UUID{doc}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, to := range g.adj[cur] {
			if visited.Add(to) {
				queue = append(queue, to)
			}
		}
	}
	return visited
}

func (g *Graph) Reverse() *Graph {
	if g.reverse != nil {
		return g.reverse
	}
	r := &Graph{adj: make(map[uuid.UUID][]uuid.UUID, len(g.adj))}
	for from, targets := range g.adj {
		if _, ok := r.adj[from]; !ok {
			r.adj[from] = nil
		}
		for _, to := range targets {
			r.adj[to] = append(r.adj[to], from)
		}
	}
	g.reverse = r
	return r
}

// JudgedWith returns the documents doc has been compared against either
// directly or through a chain of judgments, in both directions.
func (g *Graph) JudgedWith(doc uuid.UUID) mapset.Set[uuid.UUID] {
	out := g.ReachableFrom(doc).Union(g.Reverse().ReachableFrom(doc))
	out.Remove(doc)
	return out
}

// ReachablePairs counts the unordered document pairs connected by a path in
// either direction.
func (g *Graph) ReachablePairs() int {
	type pair struct{ a, b uuid.UUID }
	seen := mapset.NewThreadUnsafeSet[pair]()
	for from := range g.adj {
		for to := range g.ReachableFrom(from).Iter() {
			if to == from {
				continue
			}
			a, b := from, to
			if b.String() < a.String() {
				a, b = b, a
			}
			seen.Add(pair{a, b})
		}
	}
	return seen.Cardinality()
}
