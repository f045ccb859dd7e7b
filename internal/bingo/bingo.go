// Package bingo counts completed lines on a 5x5 board.
package bingo

// Size is the board edge length; cells are indexed row*Size+col.
const Size = 5

// FreeIndex is the center cell, treated as always selected.
const FreeIndex = 12

// lines enumerates every winning set of cell indices: 5 rows, 5 columns
// and the two diagonals.
var lines = buildLines()

func buildLines() [][Size]int {
	all := make([][Size]int, 0, 2*Size+2)
	for r := 0; r < Size; r++ {
		var row [Size]int
		for c := 0; c < Size; c++ {
			row[c] = r*Size + c
		}
		all = append(all, row)
	}
	for c := 0; c < Size; c++ {
		var col [Size]int
		for r := 0; r < Size; r++ {
			col[r] = r*Size + c
		}
		all = append(all, col)
	}
	var down, up [Size]int
	for i := 0; i < Size; i++ {
		down[i] = i*Size + i
		up[i] = i*Size + (Size - 1 - i)
	}
	all = append(all, down, up)
	return all
}

// CountLines returns how many rows, columns and diagonals are fully
// selected. The free cell counts as selected whether or not it appears in
// the input. Result is in [0, 12].
func CountLines(selected []int) int {
	var marked [Size * Size]bool
	for _, i := range selected {
		if i >= 0 && i < Size*Size {
			marked[i] = true
		}
	}
	marked[FreeIndex] = true

	count := 0
	for _, line := range lines {
		complete := true
		for _, cell := range line {
			if !marked[cell] {
				complete = false
				break
			}
		}
		if complete {
			count++
		}
	}
	return count
}
