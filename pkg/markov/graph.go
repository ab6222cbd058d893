package markov

import (
	"cmp"
	"fmt"
	"strings"
)

// WeightedGraph is a directed graph with uint64 edge weights over a vertex set that
// is fixed at construction. Weights live in a dense n×n matrix stored row-major in a
// flat slice, so the weight of from→to sits at offset n*idx(from) + idx(to). This
// addressing is also the layout of the serialized weight matrix.
//
// A WeightedGraph is not safe for concurrent use.
type WeightedGraph[T cmp.Ordered] struct {
	vertices []T       // index order
	index    map[T]int // vertex -> row/column
	weights  []uint64  // len == n*n
}

// NewWeightedGraph builds a graph over vertices with all weights set to zero. The
// order of vertices becomes the graph's fixed index order.
func NewWeightedGraph[T cmp.Ordered](vertices []T) (*WeightedGraph[T], error) {
	n := len(vertices)
	if n == 0 {
		return nil, ErrEmptyVertexSet
	}
	index := make(map[T]int, n)
	for i, v := range vertices {
		if _, ok := index[v]; ok {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateVertex, v)
		}
		index[v] = i
	}
	return &WeightedGraph[T]{
		vertices: append([]T(nil), vertices...),
		index:    index,
		weights:  make([]uint64, n*n),
	}, nil
}

// NumVertices returns the number of vertices.
func (g *WeightedGraph[T]) NumVertices() int {
	return len(g.vertices)
}

// Vertices returns a copy of the vertex table in index order.
func (g *WeightedGraph[T]) Vertices() []T {
	return append([]T(nil), g.vertices...)
}

// Index returns the dense index of v.
func (g *WeightedGraph[T]) Index(v T) (int, bool) {
	i, ok := g.index[v]
	return i, ok
}

// SetWeight sets the weight of the edge from→to.
func (g *WeightedGraph[T]) SetWeight(from, to T, w uint64) {
	g.weights[g.offset(from, to)] = w
}

// Increment adds one to the weight of the edge from→to.
func (g *WeightedGraph[T]) Increment(from, to T) {
	g.weights[g.offset(from, to)]++
}

// Weight returns the weight of the edge from→to.
func (g *WeightedGraph[T]) Weight(from, to T) uint64 {
	return g.weights[g.offset(from, to)]
}

// WeightsFor returns the outgoing row of v, ordered like Vertices. The slice aliases
// the graph's storage and must not be modified.
func (g *WeightedGraph[T]) WeightsFor(v T) []uint64 {
	n := len(g.vertices)
	i := g.mustIndex(v)
	return g.weights[n*i : n*i+n : n*i+n]
}

// AllWeights returns a copy of the row-major weight matrix.
func (g *WeightedGraph[T]) AllWeights() []uint64 {
	return append([]uint64(nil), g.weights...)
}

// SetAllWeights replaces the whole weight matrix. w must hold exactly n² entries in
// row-major order.
func (g *WeightedGraph[T]) SetAllWeights(w []uint64) error {
	n := len(g.vertices)
	if len(w) != n*n {
		return fmt.Errorf("%w: got %d, want %d", ErrWeightCountMismatch, len(w), n*n)
	}
	copy(g.weights, w)
	return nil
}

// String renders the matrix with a header row of vertices, one row per vertex.
func (g *WeightedGraph[T]) String() string {
	var sb strings.Builder
	n := len(g.vertices)
	fmt.Fprintf(&sb, "   %v\n", g.vertices)
	for i, v := range g.vertices {
		fmt.Fprintf(&sb, "%v %v\n", v, g.weights[n*i:n*i+n])
	}
	return sb.String()
}

// offset computes the flat index of from→to. Unknown vertices are programmer errors.
func (g *WeightedGraph[T]) offset(from, to T) int {
	return len(g.vertices)*g.mustIndex(from) + g.mustIndex(to)
}

func (g *WeightedGraph[T]) mustIndex(v T) int {
	i, ok := g.index[v]
	if !ok {
		panic(fmt.Sprintf("markov: unknown vertex %v", v))
	}
	return i
}
