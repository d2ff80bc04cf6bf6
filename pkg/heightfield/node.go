package heightfield

import (
	"github.com/Faultbox/heightfield/pkg/geom"
)

// Quadrant indices into Node children, in traversal order.
const (
	QuadMinXMinY = iota
	QuadMaxXMinY
	QuadMinXMaxY
	QuadMaxXMaxY
)

// Node is one quadtree node. A leaf covers exactly one grid cell with a
// positive height and is always occupied. An internal node holds four
// quadrant slots; a nil slot is a pruned quadrant whose maximum height is
// zero. A node never exists for an all-zero range.
type Node struct {
	box      geom.Box
	occupied bool
	children [4]*Node
}

// Box returns the node's bounding box. For an internal node the z extent
// is the maximum height over its range.
func (n *Node) Box() geom.Box {
	return n.box
}

// Occupied reports whether the node is a solid unit cell.
func (n *Node) Occupied() bool {
	return n.occupied
}

// IsLeaf reports whether the node covers a single cell.
func (n *Node) IsLeaf() bool {
	return n.occupied
}

// Child returns the child in quadrant q (see QuadMinXMinY and friends),
// or nil if the quadrant is empty or n is a leaf.
func (n *Node) Child(q int) *Node {
	return n.children[q]
}

// Children returns the four quadrant slots.
func (n *Node) Children() [4]*Node {
	return n.children
}

// clone returns a deep copy of the subtree rooted at n.
func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{box: n.box, occupied: n.occupied}
	for i, child := range n.children {
		c.children[i] = child.clone()
	}
	return c
}

// intersect returns the nearest entering distance of r into the solid
// under n within [t0, t1]. Children are visited in quadrant order and the
// interval is narrowed as hits are found; an equal-distance hit in a later
// quadrant never replaces an earlier one.
func (n *Node) intersect(r geom.Ray, t0, t1 float64) (float64, bool) {
	t, ok := n.box.IntersectRay(r, t0, t1)
	if !ok {
		return 0, false
	}
	if n.occupied {
		return t, true
	}

	var best float64
	found := false
	for _, child := range n.children {
		if child == nil {
			continue
		}
		d, ok := child.intersect(r, t0, t1)
		if ok && (!found || d < best) {
			best = d
			found = true
			t1 = d
		}
	}
	return best, found
}

// heightAt descends to the leaf whose footprint contains (x, y). The
// child is picked by its own box so that cell edges compare against the
// exact coordinates the tree was built with.
func (n *Node) heightAt(x, y float64) float64 {
	if n == nil || !n.box.ContainsXY(x, y) {
		return 0
	}
	for !n.occupied {
		next := (*Node)(nil)
		for _, child := range n.children {
			if child != nil && child.box.ContainsXY(x, y) {
				next = child
				break
			}
		}
		if next == nil {
			return 0
		}
		n = next
	}
	return n.box.Max.Z
}

// walk visits the subtree in pre-order. Returning false from fn skips
// the node's children.
func (n *Node) walk(depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.children {
		child.walk(depth+1, fn)
	}
}
