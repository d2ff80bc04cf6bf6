// Package geom provides the primitive geometry types used by the height
// field: vectors, axis-aligned boxes, rays and triangles.
package geom

import "github.com/golang/geo/r3"

// Vec returns the vector (x, y, z).
func Vec(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// axis returns the i-th component of v (0=X, 1=Y, 2=Z).
func axis(v r3.Vector, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
