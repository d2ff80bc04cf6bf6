// Package heightfield builds a quadtree over a grid of terrain heights and
// casts rays against the solid it describes, where every grid cell is a
// vertical prism from z=0 up to its height sample. It also derives a flat
// triangle mesh of the terrain surface for rendering.
//
// A HeightField is immutable once built, so it is safe for concurrent
// read-only use by any number of goroutines.
package heightfield

import (
	"slices"

	"github.com/Faultbox/heightfield/pkg/geom"
)

// HeightField is a ray-castable terrain built from a height grid.
type HeightField struct {
	root       *Node
	mesh       []geom.Triangle
	resolution float64
	rows, cols int
	size       int
}

// Stats summarizes the shape of a height field.
type Stats struct {
	Nodes     int // all allocated quadtree nodes
	Leaves    int // occupied unit cells
	Depth     int // depth of the deepest node, root = 0; -1 for an empty tree
	Triangles int // mesh triangles
}

// FromGrid builds a height field from grid, indexed grid[mx][my], where
// cell (mx, my) covers [mx*r, (mx+1)*r] x [my*r, (my+1)*r] for resolution
// r. Rows must all have the same length and samples must be finite and
// non-negative. An empty or all-zero grid yields an empty tree.
func FromGrid(grid [][]float64, resolution float64) (*HeightField, error) {
	if err := validateResolution(resolution); err != nil {
		return nil, err
	}
	if err := validateGrid(grid); err != nil {
		return nil, err
	}

	hf := &HeightField{resolution: resolution}
	if len(grid) == 0 {
		return hf, nil
	}
	hf.rows, hf.cols = len(grid), len(grid[0])

	padded, size := padGrid(grid)
	root, err := buildQuadTree(padded, 0, 0, size, size, resolution)
	if err != nil {
		return nil, err
	}
	hf.root = root
	hf.size = size
	hf.mesh = buildMesh(grid, resolution)

	return hf, nil
}

// Intersect casts r against the terrain over the parametric interval
// [t0, t1] and returns the nearest entering distance. When several
// columns are hit at exactly the same distance, the first in quadrant
// order wins.
func (hf *HeightField) Intersect(r geom.Ray, t0, t1 float64) (float64, bool) {
	if hf == nil || hf.root == nil {
		return 0, false
	}
	return hf.root.intersect(r, t0, t1)
}

// Clone returns an independent deep copy of the height field.
func (hf *HeightField) Clone() *HeightField {
	if hf == nil {
		return &HeightField{}
	}
	return &HeightField{
		root:       hf.root.clone(),
		mesh:       slices.Clone(hf.mesh),
		resolution: hf.resolution,
		rows:       hf.rows,
		cols:       hf.cols,
		size:       hf.size,
	}
}

// Root returns the quadtree root, or nil for an empty tree.
func (hf *HeightField) Root() *Node {
	if hf == nil {
		return nil
	}
	return hf.root
}

// Mesh returns a copy of the triangle mesh in generation order.
func (hf *HeightField) Mesh() []geom.Triangle {
	if hf == nil {
		return nil
	}
	return slices.Clone(hf.mesh)
}

// Resolution returns the planar size of one grid cell.
func (hf *HeightField) Resolution() float64 {
	if hf == nil {
		return 0
	}
	return hf.resolution
}

// Dims returns the dimensions of the source grid.
func (hf *HeightField) Dims() (rows, cols int) {
	if hf == nil {
		return 0, 0
	}
	return hf.rows, hf.cols
}

// Size returns the side of the padded power-of-two grid.
func (hf *HeightField) Size() int {
	if hf == nil {
		return 0
	}
	return hf.size
}

// Empty reports whether the height field has no geometry.
func (hf *HeightField) Empty() bool {
	return hf == nil || hf.root == nil
}

// Bounds returns the root bounding box.
func (hf *HeightField) Bounds() (geom.Box, bool) {
	if hf.Empty() {
		return geom.Box{}, false
	}
	return hf.root.box, true
}

// HeightAt returns the column height at planar point (x, y), or 0 where
// there is no geometry.
func (hf *HeightField) HeightAt(x, y float64) float64 {
	return hf.Root().heightAt(x, y)
}

// Walk visits every node in pre-order, children in quadrant order. If fn
// returns false the node's subtree is skipped.
func (hf *HeightField) Walk(fn func(n *Node, depth int) bool) {
	hf.Root().walk(0, fn)
}

// Stats returns node, leaf and depth counts for the tree.
func (hf *HeightField) Stats() Stats {
	s := Stats{Depth: -1}
	if hf == nil {
		return s
	}
	s.Triangles = len(hf.mesh)
	hf.Walk(func(n *Node, depth int) bool {
		s.Nodes++
		if n.occupied {
			s.Leaves++
		}
		s.Depth = max(s.Depth, depth)
		return true
	})
	return s
}
