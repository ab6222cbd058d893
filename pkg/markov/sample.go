package markov

import (
	"math/rand/v2"
	"slices"
)

// chooseFromTop picks an index into weights. Candidates are ranked by weight,
// highest first with ties kept in index order, and only the leading
// trunc(len(weights)*fraction) of them are considered (at least one). The draw among
// those is proportional to weight. When every retained candidate has zero weight the
// draw is uniform among them.
func chooseFromTop(rng *rand.Rand, weights []uint64, fraction float64) int {
	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case weights[a] > weights[b]:
			return -1
		case weights[a] < weights[b]:
			return 1
		}
		return 0
	})

	top := topCount(len(weights), fraction)
	order = order[:top]

	var total uint64
	for _, i := range order {
		total += weights[i]
	}
	if total == 0 {
		return order[rng.IntN(len(order))]
	}

	r := rng.Uint64N(total)
	for _, i := range order {
		if r < weights[i] {
			return i
		}
		r -= weights[i]
	}
	return order[len(order)-1]
}

// topCount is the size of the candidate pool for n options.
func topCount(n int, fraction float64) int {
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}
