package viewer

import (
	"math/rand/v2"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/internal/testutil"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// scriptedRand returns preset values and records the bounds it was asked for.
type scriptedRand struct {
	values []int
	bounds []int
}

func (s *scriptedRand) IntN(n int) int {
	s.bounds = append(s.bounds, n)
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func ids(rows []core.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cell("id")
	}
	return out
}

func TestShuffle_FisherYatesSequence(t *testing.T) {
	rows := testutil.Rows(4)
	rnd := &scriptedRand{values: []int{0, 2, 1}}

	out := Shuffle(rows, rnd)

	// i=3 draws from [0,3], i=2 from [0,2], i=1 from [0,1].
	assert.Equal(t, []int{4, 3, 2}, rnd.bounds)
	// swap(3,0): 3 1 2 0; swap(2,2): 3 1 2 0; swap(1,1): 3 1 2 0
	assert.Equal(t, []string{"3", "1", "2", "0"}, ids(out))
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	rows := testutil.Rows(10)
	_ = Shuffle(rows, rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}, ids(rows))
}

func TestShuffle_IsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 11))

	for _, n := range []int{0, 1, 2, 5, 37, 200} {
		rows := testutil.Rows(n)
		for trial := 0; trial < 50; trial++ {
			out := Shuffle(rows, rnd)
			require.Len(t, out, n)

			got := ids(out)
			want := ids(rows)
			sort.Strings(got)
			sort.Strings(want)
			require.Equal(t, want, got)
		}
	}
}

func TestShuffle_UniformOverPermutations(t *testing.T) {
	const trials = 60000
	rnd := rand.New(rand.NewPCG(42, 1337))
	rows := testutil.Rows(3)

	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		counts[strings.Join(ids(Shuffle(rows, rnd)), "")]++
	}
	require.Len(t, counts, 6, "all 3! permutations should appear")

	expected := float64(trials) / 6
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	// df=5; 30 is far beyond the 0.001 critical value of 20.5.
	assert.Less(t, chi, 30.0, "chi-square %f suggests a biased shuffle", chi)
}

func TestShuffle_UniformOverPositions(t *testing.T) {
	const (
		n      = 6
		trials = 30000
	)
	rnd := rand.New(rand.NewPCG(3, 5))
	rows := testutil.Rows(n)

	var freq [n][n]int
	for i := 0; i < trials; i++ {
		for pos, id := range ids(Shuffle(rows, rnd)) {
			elem := int(id[0] - '0')
			freq[elem][pos]++
		}
	}

	expected := float64(trials) / n
	for elem := 0; elem < n; elem++ {
		for pos := 0; pos < n; pos++ {
			assert.InDelta(t, expected, float64(freq[elem][pos]), expected*0.08,
				"element %d at position %d", elem, pos)
		}
	}
}

func TestTruncate(t *testing.T) {
	rows := testutil.Rows(5)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"cap below length", 3, 3},
		{"cap equal length", 5, 5},
		{"cap above length", 1000, 5},
		{"zero cap", 0, 0},
		{"negative cap", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Truncate(rows, tt.n), tt.want)
		})
	}
}

func TestShuffleThenTruncate_DrawsFromInput(t *testing.T) {
	rnd := rand.New(rand.NewPCG(9, 9))
	rows := testutil.Rows(20)
	all := map[string]bool{}
	for _, id := range ids(rows) {
		all[id] = true
	}

	for _, c := range []int{1, 7, 20, 50} {
		out := Truncate(Shuffle(rows, rnd), c)
		assert.Len(t, out, min(c, len(rows)))

		seen := map[string]bool{}
		for _, id := range ids(out) {
			assert.True(t, all[id], "row %s not from input", id)
			assert.False(t, seen[id], "row %s duplicated", id)
			seen[id] = true
		}
	}
}
