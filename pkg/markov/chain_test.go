package markov

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	c := fitTestChain(t, sampleCorpus)

	require.Equal(t, []rune{' ', 'a', 'b', 'c', 'o', 'r'}, c.Vertices())
	expected := []uint64{
		0, 0, 0, 0, 0, 0, // ' '
		1, 1, 0, 0, 0, 1, // a
		0, 0, 0, 0, 1, 0, // b
		1, 0, 0, 0, 0, 1, // c
		1, 0, 0, 0, 0, 0, // o
		2, 0, 0, 1, 0, 0, // r
	}
	require.Equal(t, expected, c.Weights())

	require.Equal(t, uint64(1), c.Weight('a', 'a'))
	require.Equal(t, uint64(1), c.Weight('a', 'r'))
	require.Equal(t, uint64(1), c.Weight('a', Boundary))
	require.Equal(t, uint64(1), c.Weight('r', 'c'))
	require.Equal(t, uint64(2), c.Weight('r', Boundary))
	require.Equal(t, uint64(1), c.Weight('c', 'r'))
	require.Equal(t, uint64(1), c.Weight('c', Boundary))
	require.Equal(t, uint64(1), c.Weight('b', 'o'))
	require.Equal(t, uint64(1), c.Weight('o', Boundary))
	require.Zero(t, c.Weight('x', 'a'))
}

func TestFitIsDeterministic(t *testing.T) {
	corpus := []string{"zebra", "apple", "mango", "kiwi", "it's", "well-known"}
	first, err := Fit(corpus)
	require.NoError(t, err)
	second, err := Fit(corpus)
	require.NoError(t, err)

	require.Equal(t, first.Vertices(), second.Vertices())
	require.Equal(t, first.Weights(), second.Weights())
	require.True(t, slices.IsSorted(first.Vertices()))
}

func TestFitCountConservation(t *testing.T) {
	for _, word := range []string{"a", "hello", "día", "mississippi", "o'neil"} {
		t.Run(word, func(t *testing.T) {
			c := fitTestChain(t, []string{word})
			require.Equal(t, uint64(utf8.RuneCountInString(word)), c.Stats().TotalFrequency)
		})
	}

	c := fitTestChain(t, sampleCorpus)
	require.Equal(t, uint64(10), c.Stats().TotalFrequency)
}

func TestFitValidation(t *testing.T) {
	testCases := []struct {
		name    string
		corpus  []string
		wantErr error
		index   int
	}{
		{name: "Word containing boundary", corpus: []string{"ab cd"}, wantErr: ErrBoundaryInWord, index: 0},
		{name: "Later word containing boundary", corpus: []string{"ok", "fine", " lead"}, wantErr: ErrBoundaryInWord, index: 2},
		{name: "Empty word", corpus: []string{"ok", ""}, wantErr: ErrEmptyWord, index: 1},
		{name: "Invalid utf-8", corpus: []string{"\xff\xfe"}, wantErr: ErrInvalidUTF8, index: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Fit(tc.corpus)
			require.ErrorIs(t, err, tc.wantErr)

			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			require.Equal(t, tc.index, inputErr.Index)
			require.Equal(t, tc.corpus[tc.index], inputErr.Word)
		})
	}

	_, err := Fit(nil)
	require.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestNew(t *testing.T) {
	c, err := New([]rune{' ', 'a'}, []uint64{0, 0, 3, 1})
	require.NoError(t, err)
	require.Equal(t, uint64(3), c.Weight('a', Boundary))
	require.Equal(t, []uint64{3, 1}, c.WeightsFor('a'))
	require.Nil(t, c.WeightsFor('q'))

	_, err = New([]rune{'a', 'b'}, make([]uint64, 4))
	require.ErrorIs(t, err, ErrMissingBoundary)

	_, err = New([]rune{' ', 'a'}, make([]uint64, 3))
	require.ErrorIs(t, err, ErrWeightCountMismatch)

	_, err = New(nil, nil)
	require.ErrorIs(t, err, ErrEmptyVertexSet)
}

func TestStats(t *testing.T) {
	c := fitTestChain(t, sampleCorpus)
	require.Equal(t, Stats{
		Vertices:        6,
		Transitions:     9,
		TotalFrequency:  10,
		StartingSymbols: 5,
	}, c.Stats())
}

func TestGenerateClosure(t *testing.T) {
	corpus := []string{"aa", "ar", "rc", "cr", "bo", "o'brien", "jean-luc", "zoë"}
	c := fitTestChain(t, corpus)
	alphabet := c.Vertices()

	for i := 0; i < 500; i++ {
		word := c.Generate()
		require.NotEmpty(t, word)
		require.NotContains(t, word, string(Boundary))

		first, _ := utf8.DecodeRuneInString(word)
		require.False(t, strings.ContainsRune(cannotStart, first), "word %q starts with a forbidden symbol", word)
		for _, r := range word {
			require.Contains(t, alphabet, r)
		}
	}
}

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	corpus := createBenchmarkCorpus()[:500]
	a, err := Fit(corpus, WithRand(seeded(7)))
	require.NoError(t, err)
	b, err := Fit(corpus, WithRand(seeded(7)))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.Generate(), b.Generate())
	}
}

func TestGenerateWithMaxLength(t *testing.T) {
	// 'a' only ever transitions to itself, so without a cap the word never ends.
	c, err := New([]rune{' ', 'a'}, []uint64{0, 0, 0, 1}, WithRand(seeded(3)))
	require.NoError(t, err)

	for _, n := range []int{1, 2, 10} {
		t.Run(fmt.Sprintf("MaxLength%d", n), func(t *testing.T) {
			require.Equal(t, strings.Repeat("a", n), c.Generate(WithMaxLength(n)))
		})
	}
}

func TestGenerateDegenerateRowEndsWord(t *testing.T) {
	// All counts are zero; the uniform fallback over the single retained candidate
	// picks the boundary, which sorts first among equal weights.
	c, err := New([]rune{' ', 'a'}, make([]uint64, 4), WithRand(seeded(5)))
	require.NoError(t, err)
	require.Equal(t, "a", c.Generate())
}

func TestGenerateWithoutPermittedStart(t *testing.T) {
	c, err := New([]rune{' ', '\'', '-'}, make([]uint64, 9), WithRand(seeded(9)))
	require.NoError(t, err)
	require.Equal(t, "", c.Generate())
}

func TestGenerateStartFallback(t *testing.T) {
	// A large alphabet of forbidden starts with a single permitted one: the
	// rejection loop may give up, the fallback must still find 'q'.
	vertices := []rune{' ', '\'', '-', 'q'}
	weights := make([]uint64, 16)
	weights[3*4+0] = 1 // q -> boundary
	c, err := New(vertices, weights, WithRand(seeded(11)))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.Equal(t, "q", c.Generate())
	}
}

func BenchmarkFit(b *testing.B) {
	corpus := createBenchmarkCorpus()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fit(corpus); err != nil {
			b.Fatalf("Fit() failed: %v", err)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	c, err := Fit(createBenchmarkCorpus(), WithRand(seeded(1)))
	if err != nil {
		b.Fatalf("Fit() setup for benchmark failed: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := c.Generate(WithMaxLength(64))
		b.SetBytes(int64(len(s)))
	}
}
