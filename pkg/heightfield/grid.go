package heightfield

import (
	"fmt"
	"math"
)

// NextPowerOfTwo returns the smallest power of two that is >= n.
// Values below 1 yield 1.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// validateGrid checks that every row has the same length and every
// sample is a finite non-negative number.
func validateGrid(grid [][]float64) error {
	if len(grid) == 0 {
		return nil
	}
	cols := len(grid[0])
	for mx, row := range grid {
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d samples, expected %d", ErrJaggedGrid, mx, len(row), cols)
		}
		for my, h := range row {
			if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
				return fmt.Errorf("%w: %v at (%d, %d)", ErrInvalidHeight, h, mx, my)
			}
		}
	}
	return nil
}

// validateResolution checks that r is a finite positive number.
func validateResolution(r float64) error {
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidResolution, r)
	}
	return nil
}

// padGrid copies grid into the low corner of a square grid whose side is
// the next power of two of its largest dimension. Every padding sample is
// zero, so padding never adds geometry.
func padGrid(grid [][]float64) ([][]float64, int) {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	size := NextPowerOfTwo(max(rows, cols))

	padded := make([][]float64, size)
	for mx := range size {
		padded[mx] = make([]float64, size)
		if mx < rows {
			copy(padded[mx], grid[mx])
		}
	}
	return padded, size
}
