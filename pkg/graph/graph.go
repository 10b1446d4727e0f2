// Package graph builds the weighted undirected road-network graph for one
// routing request. nodes live in an arena with monotonically issued ids, so
// whether a node came from the input collection or was synthesized during
// build/snap is a property of insertion order, not of an id range convention.
package graph

import (
	"github.com/paulmach/orb"
)

type Node struct {
	ID    int
	Point orb.Point
	// Synthetic marks nodes created during graph build or query snapping
	// rather than present in the input node collection.
	Synthetic bool
}

type Edge struct {
	ID int
	U  int
	V  int

	Cost   float64 // weighted routing cost, >= EDGE_COST_FLOOR*Length
	Length float64 // raw geometric length

	ShadeRatio    float64
	BuildingRatio float64

	Geometry orb.LineString

	// Connector marks edges synthesized by the snapper to attach a query
	// point to the network. their cost is plain euclidean distance, they
	// never go through the edge weight model.
	Connector bool
}

// Other the opposite endpoint of the edge.
func (e *Edge) Other(node int) int {
	if e.U == node {
		return e.V
	}
	return e.U
}

// Graph node/edge arena for one routing invocation. built fresh per request,
// mutated only by the builder and the snapper, discarded afterwards.
type Graph struct {
	nodes []Node
	edges []Edge
	adj   [][]int // node id -> incident edge ids
}

func New() *Graph {
	return &Graph{}
}

func (g *Graph) AddNode(p orb.Point, synthetic bool) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Point: p, Synthetic: synthetic})
	g.adj = append(g.adj, nil)
	return id
}

// AddEdge add one undirected edge. (u,v) ordering carries no meaning.
func (g *Graph) AddEdge(e Edge) int {
	e.ID = len(g.edges)
	g.edges = append(g.edges, e)
	g.adj[e.U] = append(g.adj[e.U], e.ID)
	g.adj[e.V] = append(g.adj[e.V], e.ID)
	return e.ID
}

func (g *Graph) Node(id int) Node {
	return g.nodes[id]
}

func (g *Graph) Edge(id int) *Edge {
	return &g.edges[id]
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// ForAdjacentEdges visit all edges incident to node.
func (g *Graph) ForAdjacentEdges(node int, fn func(e *Edge)) {
	for _, eid := range g.adj[node] {
		fn(&g.edges[eid])
	}
}

// ForNodes visit all nodes in insertion order.
func (g *Graph) ForNodes(fn func(n Node)) {
	for _, n := range g.nodes {
		fn(n)
	}
}

// ForEdges visit all edges in insertion order.
func (g *Graph) ForEdges(fn func(e *Edge)) {
	for i := range g.edges {
		fn(&g.edges[i])
	}
}
