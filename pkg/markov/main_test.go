package markov

import (
	"bufio"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleCorpus is the small corpus whose counts are asserted literally in tests.
var sampleCorpus = []string{"aa", "ar", "rc", "cr", "bo"}

// seeded returns a deterministic random source for tests.
func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// fitTestChain fits a chain over corpus with a seeded random source.
func fitTestChain(t testing.TB, corpus []string) *Chain {
	t.Helper()
	c, err := Fit(corpus, WithRand(seeded(1)))
	require.NoError(t, err)
	return c
}

// saveTestChain writes c into a fresh temp dir and returns the file path.
func saveTestChain(t testing.TB, c *Chain) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weights.bin")
	require.NoError(t, c.Save(path))
	return path
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus builds a word list from the system dictionary, falling back
// to a synthetic corpus when none is installed.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		seen := make(map[string]struct{})
		if f, err := os.Open("/usr/share/dict/words"); err == nil {
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				word := strings.ToLower(strings.TrimSpace(scanner.Text()))
				if word != "" && !strings.ContainsRune(word, Boundary) {
					seen[word] = struct{}{}
				}
			}
			_ = f.Close()
		}
		if len(seen) == 0 {
			rng := seeded(42)
			const letters = "abcdefghijklmnopqrstuvwxyz'-"
			for len(seen) < 5000 {
				var sb strings.Builder
				for n := 2 + rng.IntN(8); n > 0; n-- {
					sb.WriteByte(letters[rng.IntN(len(letters))])
				}
				seen[sb.String()] = struct{}{}
			}
		}
		for word := range seen {
			benchmarkCorpus = append(benchmarkCorpus, word)
		}
		slices.Sort(benchmarkCorpus)
	})
	return benchmarkCorpus
}
