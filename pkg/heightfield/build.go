package heightfield

import (
	"fmt"

	"github.com/Faultbox/heightfield/pkg/geom"
)

// buildQuadTree builds the subtree for the half-open range
// [mxMin, mxMax) x [myMin, myMax) of a power-of-two padded grid. It
// returns nil for a range whose maximum height is zero.
func buildQuadTree(grid [][]float64, mxMin, myMin, mxMax, myMax int, resolution float64) (*Node, error) {
	// Each level rescans its whole range.
	var maxHeight float64
	for mx := mxMin; mx < mxMax; mx++ {
		for my := myMin; my < myMax; my++ {
			if grid[mx][my] > maxHeight {
				maxHeight = grid[mx][my]
			}
		}
	}

	if maxHeight == 0 {
		return nil, nil
	}

	n := &Node{
		box: geom.NewBox(
			geom.Vec(float64(mxMin)*resolution, float64(myMin)*resolution, 0),
			geom.Vec(float64(mxMax)*resolution, float64(myMax)*resolution, maxHeight),
		),
	}

	w, h := mxMax-mxMin, myMax-myMin
	if w == 1 || h == 1 {
		if w != h {
			return nil, fmt.Errorf("%w: range [%d,%d)x[%d,%d) is %dx%d",
				ErrInvariantViolation, mxMin, mxMax, myMin, myMax, w, h)
		}
		n.occupied = true
		return n, nil
	}

	cx := (mxMin + mxMax) / 2
	cy := (myMin + myMax) / 2

	quadrants := [4][4]int{
		QuadMinXMinY: {mxMin, myMin, cx, cy},
		QuadMaxXMinY: {cx, myMin, mxMax, cy},
		QuadMinXMaxY: {mxMin, cy, cx, myMax},
		QuadMaxXMaxY: {cx, cy, mxMax, myMax},
	}
	for i, q := range quadrants {
		child, err := buildQuadTree(grid, q[0], q[1], q[2], q[3], resolution)
		if err != nil {
			return nil, err
		}
		n.children[i] = child
	}

	return n, nil
}
