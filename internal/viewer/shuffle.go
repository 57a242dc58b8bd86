package viewer

import (
	"math/rand/v2"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// Rand is the source of uniform integers used by Shuffle.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the runtime-seeded global generator.
var DefaultRand Rand = globalRand{}

// Shuffle returns a uniformly random permutation of rows using Fisher-Yates.
// The input slice is not modified.
func Shuffle(rows []core.Row, rnd Rand) []core.Row {
	if rnd == nil {
		rnd = DefaultRand
	}
	out := make([]core.Row, len(rows))
	copy(out, rows)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Truncate returns at most n leading rows. Non-positive n yields no rows.
func Truncate(rows []core.Row, n int) []core.Row {
	if n <= 0 {
		return rows[:0]
	}
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}
