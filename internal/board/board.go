// Package board generates member bingo boards from the shared term pool.
package board

import (
	"math/rand"

	"github.com/finnvold/lineup-bingo/internal/bingo"
)

// FreeSpace is the label of the fixed center cell.
const FreeSpace = "FREE SPACE"

// TermsPerBoard is how many pool terms a full board holds besides the
// free cell.
const TermsPerBoard = bingo.Size*bingo.Size - 1

// Generate draws up to 24 terms from the pool with an unbiased shuffle and
// places the free cell at the center. Pools smaller than 24 produce a
// short board rather than an error; if fewer than 12 terms exist the free
// cell goes at the end instead of the center. The pool slice is not
// modified.
func Generate(pool []string, rng *rand.Rand) []string {
	drawn := make([]string, len(pool))
	copy(drawn, pool)
	rng.Shuffle(len(drawn), func(i, j int) {
		drawn[i], drawn[j] = drawn[j], drawn[i]
	})
	if len(drawn) > TermsPerBoard {
		drawn = drawn[:TermsPerBoard]
	}

	if len(drawn) < bingo.FreeIndex {
		return append(drawn, FreeSpace)
	}

	cells := make([]string, 0, len(drawn)+1)
	cells = append(cells, drawn[:bingo.FreeIndex]...)
	cells = append(cells, FreeSpace)
	cells = append(cells, drawn[bingo.FreeIndex:]...)
	return cells
}
