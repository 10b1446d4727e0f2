package routing

import (
	"math"

	"github.com/urbansim/hazardroute/pkg"
	da "github.com/urbansim/hazardroute/pkg/datastructure"
	"github.com/urbansim/hazardroute/pkg/graph"
)

// Metric edge weight used by the shortest path search. an edge whose weight
// is not finite is treated as untraversable under that metric.
type Metric func(e *graph.Edge) float64

// CostMetric the weighted routing cost (shade/building/temperature aware).
func CostMetric(e *graph.Edge) float64 {
	return e.Cost
}

// LengthMetric raw geometric length, the fallback metric.
func LengthMetric(e *graph.Edge) float64 {
	return e.Length
}

type vertexInfo struct {
	dist       float64
	parentEdge int
	heapNode   *da.PriorityQueueNode[int]
}

// Dijkstra single-pair shortest path over one request-scoped graph.
type Dijkstra struct {
	g    *graph.Graph
	info []vertexInfo
	pq   *da.MinHeap[int]

	numSettledNodes int
}

func NewDijkstra(g *graph.Graph) *Dijkstra {
	return &Dijkstra{
		g:  g,
		pq: da.NewFourAryHeap[int](),
	}
}

// ShortestPath from s to t under metric. returns the node sequence, the edge
// id sequence between consecutive nodes, the total weight, and whether a path
// exists. settles at most all vertices, stops early once t is settled.
func (d *Dijkstra) ShortestPath(s, t int, metric Metric) ([]int, []int, float64, bool) {
	n := d.g.NumNodes()
	if s < 0 || t < 0 || s >= n || t >= n {
		return nil, nil, 0, false
	}
	if s == t {
		return []int{s}, nil, 0, true
	}

	d.preallocate(n)

	sNode := da.NewPriorityQueueNode(0, s)
	d.info[s] = vertexInfo{dist: 0, parentEdge: -1, heapNode: sNode}
	d.pq.Insert(sNode)

	settled := make([]bool, n)
	for !d.pq.IsEmpty() {
		uNode, err := d.pq.ExtractMin()
		if err != nil {
			break
		}
		u := uNode.GetItem()
		if settled[u] {
			continue
		}
		settled[u] = true
		d.numSettledNodes++

		if u == t {
			break
		}

		d.g.ForAdjacentEdges(u, func(e *graph.Edge) {
			w := metric(e)
			if math.IsNaN(w) || math.IsInf(w, 0) || da.Ge(w, pkg.INF_WEIGHT) {
				return
			}

			v := e.Other(u)
			if settled[v] {
				return
			}

			newDist := d.info[u].dist + w
			cur := d.info[v]
			if cur.heapNode == nil {
				vNode := da.NewPriorityQueueNode(newDist, v)
				d.info[v] = vertexInfo{dist: newDist, parentEdge: e.ID, heapNode: vNode}
				d.pq.Insert(vNode)
			} else if da.Lt(newDist, cur.dist) {
				d.info[v].dist = newDist
				d.info[v].parentEdge = e.ID
				d.pq.DecreaseKey(cur.heapNode, newDist)
			}
		})
	}

	if !settled[t] {
		return nil, nil, 0, false
	}

	// walk parents back from t
	var nodeSeq, edgeSeq []int
	for cur := t; ; {
		nodeSeq = append(nodeSeq, cur)
		pe := d.info[cur].parentEdge
		if pe < 0 {
			break
		}
		edgeSeq = append(edgeSeq, pe)
		cur = d.g.Edge(pe).Other(cur)
	}
	reverseInts(nodeSeq)
	reverseInts(edgeSeq)

	return nodeSeq, edgeSeq, d.info[t].dist, true
}

func (d *Dijkstra) preallocate(n int) {
	d.info = make([]vertexInfo, n)
	for i := range d.info {
		d.info[i] = vertexInfo{dist: pkg.INF_WEIGHT, parentEdge: -1}
	}
	d.pq.Clear()
	d.pq.Preallocate(n)
}

func reverseInts(a []int) {
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
}
