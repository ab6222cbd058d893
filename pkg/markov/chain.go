package markov

import (
	"io"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// Boundary is the reserved symbol marking the start and end of a word.
	Boundary = ' '
	// DefaultTopFraction is the share of highest-count successors sampled from.
	DefaultTopFraction = 0.35
)

// cannotStart lists the symbols a generated word may not begin with.
const cannotStart = "'-" + string(Boundary)

// maxStartDraws bounds the rejection loop that picks a starting symbol before
// Generate falls back to drawing among the permitted symbols directly.
const maxStartDraws = 64

// Chain is a first-order character-level Markov chain. It owns a WeightedGraph whose
// vertices are the characters seen during fitting plus Boundary, and whose weights
// are raw transition counts.
//
// A Chain is ready as soon as Fit, New, Decode or Load returns it. It is not safe
// for concurrent use.
type Chain struct {
	graph       *WeightedGraph[rune]
	vertices    []rune
	rng         *rand.Rand
	topFraction float64
	logger      *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithRand sets the random source used by Generate. Passing a seeded source makes
// generation reproducible.
func WithRand(r *rand.Rand) Option {
	return func(c *Chain) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithTopFraction sets the share of the highest-count successors that sampling is
// restricted to. Values outside (0, 1] are ignored.
// Default: 0.35
func WithTopFraction(f float64) Option {
	return func(c *Chain) {
		if f > 0 && f <= 1 {
			c.topFraction = f
		}
	}
}

// WithLogger sets the logger. By default, all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) { c.SetLogger(logger) }
}

// newChain builds an empty chain over vertices, which must contain Boundary.
func newChain(vertices []rune, opts []Option) (*Chain, error) {
	if len(vertices) > 0 && !slices.Contains(vertices, Boundary) {
		return nil, ErrMissingBoundary
	}
	graph, err := NewWeightedGraph(vertices)
	if err != nil {
		return nil, err
	}
	c := &Chain{
		graph:       graph,
		vertices:    graph.Vertices(),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		topFraction: DefaultTopFraction,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// New reconstructs a chain from a vertex table and its row-major count matrix.
// vertices must be distinct and include Boundary, and weights must hold
// len(vertices)² entries.
func New(vertices []rune, weights []uint64, opts ...Option) (*Chain, error) {
	c, err := newChain(vertices, opts)
	if err != nil {
		return nil, err
	}
	if err = c.graph.SetAllWeights(weights); err != nil {
		return nil, err
	}
	return c, nil
}

// Fit learns transition counts from words. Every consecutive pair of characters in
// a word counts as one transition, and the last character transitions into
// Boundary, so a word of k characters contributes exactly k counts. Words must be
// non-empty and must not contain Boundary; the first offending word is reported as
// an *InputError.
func Fit(words []string, opts ...Option) (*Chain, error) {
	if len(words) == 0 {
		return nil, ErrEmptyCorpus
	}

	symbols := map[rune]struct{}{Boundary: {}}
	for i, word := range words {
		if word == "" {
			return nil, &InputError{Index: i, Word: word, Err: ErrEmptyWord}
		}
		if !utf8.ValidString(word) {
			return nil, &InputError{Index: i, Word: word, Err: ErrInvalidUTF8}
		}
		if strings.ContainsRune(word, Boundary) {
			return nil, &InputError{Index: i, Word: word, Err: ErrBoundaryInWord}
		}
		for _, r := range word {
			symbols[r] = struct{}{}
		}
	}

	c, err := newChain(slices.Sorted(maps.Keys(symbols)), opts)
	if err != nil {
		return nil, err
	}

	var transitions int
	for _, word := range words {
		prev := utf8.RuneError
		first := true
		for _, r := range word {
			if !first {
				c.graph.Increment(prev, r)
				transitions++
			}
			prev, first = r, false
		}
		c.graph.Increment(prev, Boundary)
		transitions++
	}

	c.logger.Info("Chain fitted",
		slog.Int("words", len(words)),
		slog.Int("vertices", len(c.vertices)),
		slog.Int("transitions", transitions),
	)
	return c, nil
}

// SetLogger sets the logger for the Chain. By default, all logs are discarded.
func (c *Chain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Vertices returns the chain's alphabet in its fixed order.
func (c *Chain) Vertices() []rune {
	return slices.Clone(c.vertices)
}

// Weights returns a copy of the row-major transition count matrix.
func (c *Chain) Weights() []uint64 {
	return c.graph.AllWeights()
}

// Weight returns the number of from→to transitions, or zero if either symbol is
// outside the alphabet.
func (c *Chain) Weight(from, to rune) uint64 {
	if _, ok := c.graph.Index(from); !ok {
		return 0
	}
	if _, ok := c.graph.Index(to); !ok {
		return 0
	}
	return c.graph.Weight(from, to)
}

// WeightsFor returns a copy of the outgoing counts of r ordered like Vertices, or
// nil if r is outside the alphabet.
func (c *Chain) WeightsFor(r rune) []uint64 {
	if _, ok := c.graph.Index(r); !ok {
		return nil
	}
	return slices.Clone(c.graph.WeightsFor(r))
}

// String renders the count matrix.
func (c *Chain) String() string {
	return c.graph.String()
}

// Stats holds aggregated figures about a chain.
type Stats struct {
	Vertices        int    // size of the alphabet, Boundary included
	Transitions     int    // number of distinct from→to pairs with a non-zero count
	TotalFrequency  uint64 // sum of all counts
	StartingSymbols int    // symbols a generated word may begin with
}

// Stats computes a snapshot of the chain's statistics.
func (c *Chain) Stats() Stats {
	s := Stats{Vertices: len(c.vertices)}
	for _, w := range c.graph.weights {
		if w > 0 {
			s.Transitions++
			s.TotalFrequency += w
		}
	}
	for _, v := range c.vertices {
		if canStart(v) {
			s.StartingSymbols++
		}
	}
	return s
}

func canStart(r rune) bool {
	return !strings.ContainsRune(cannotStart, r)
}
