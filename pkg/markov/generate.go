package markov

import (
	"log/slog"
	"strings"
)

// generateOptions Is used by Generate to configure default options.
type generateOptions struct {
	maxLength int
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument to Generate.
type GenerateOption func(*generateOptions)

// WithMaxLength caps the number of characters in a generated word. A value of 0 or
// less means the word ends only when Boundary is drawn, which is the default.
func WithMaxLength(n int) GenerateOption {
	return func(o *generateOptions) { o.maxLength = n }
}

// Generate produces a single word. The first character is drawn uniformly from the
// alphabet, excluding Boundary, apostrophes and hyphens. Each following character is
// drawn from the current character's successors, restricted to the highest-count
// share configured with WithTopFraction and weighted by count. The word ends when
// Boundary is drawn, which is never part of the result.
//
// If the alphabet has no permitted starting character, Generate returns "".
func (c *Chain) Generate(opts ...GenerateOption) string {
	options := &generateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	start, ok := c.chooseStart()
	if !ok {
		c.logger.Warn("No permitted starting symbol in alphabet",
			slog.Int("vertices", len(c.vertices)),
		)
		return ""
	}

	var builder strings.Builder
	builder.WriteRune(start)
	length := 1
	current := start

	for options.maxLength <= 0 || length < options.maxLength {
		row := c.graph.WeightsFor(current)
		next := c.vertices[chooseFromTop(c.rng, row, c.topFraction)]
		if next == Boundary {
			c.logger.Debug("Generation terminated by boundary",
				slog.Int("generated_length", length),
			)
			return builder.String()
		}
		builder.WriteRune(next)
		length++
		current = next
	}

	c.logger.Debug("Generation terminated by reaching maxLength",
		slog.Int("max_length", options.maxLength),
	)
	return builder.String()
}

// chooseStart draws a permitted starting symbol. After maxStartDraws rejected
// draws it picks uniformly among the permitted symbols instead.
func (c *Chain) chooseStart() (rune, bool) {
	for range maxStartDraws {
		r := c.vertices[c.rng.IntN(len(c.vertices))]
		if canStart(r) {
			return r, true
		}
	}

	allowed := make([]rune, 0, len(c.vertices))
	for _, r := range c.vertices {
		if canStart(r) {
			allowed = append(allowed, r)
		}
	}
	if len(allowed) == 0 {
		return 0, false
	}
	return allowed[c.rng.IntN(len(allowed))], true
}
