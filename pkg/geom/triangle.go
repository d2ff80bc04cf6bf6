package geom

import "github.com/golang/geo/r3"

// Triangle is three vertices with no shared or indexed storage.
type Triangle struct {
	A, B, C r3.Vector
}

// NewTriangle creates a triangle from three vertices.
func NewTriangle(a, b, c r3.Vector) Triangle {
	return Triangle{A: a, B: b, C: c}
}

// Vertices returns the triangle's vertices in order.
func (t Triangle) Vertices() [3]r3.Vector {
	return [3]r3.Vector{t.A, t.B, t.C}
}

// Normal returns the unit normal following the right-hand rule over
// A, B, C. Degenerate triangles return the zero vector.
func (t Triangle) Normal() r3.Vector {
	n := t.B.Sub(t.A).Cross(t.C.Sub(t.A))
	if n.Norm() == 0 {
		return r3.Vector{}
	}
	return n.Normalize()
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float64 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Norm() / 2
}

// Bounds returns the axis-aligned box enclosing the triangle.
func (t Triangle) Bounds() Box {
	b := NewBox(t.A, t.B)
	return NewBox(
		r3.Vector{X: min(b.Min.X, t.C.X), Y: min(b.Min.Y, t.C.Y), Z: min(b.Min.Z, t.C.Z)},
		r3.Vector{X: max(b.Max.X, t.C.X), Y: max(b.Max.Y, t.C.Y), Z: max(b.Max.Z, t.C.Z)},
	)
}
