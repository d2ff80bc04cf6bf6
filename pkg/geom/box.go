package geom

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min r3.Vector
	Max r3.Vector
}

// NewBox creates a box from two opposite corners, ordering each axis so
// that Min <= Max.
func NewBox(a, b r3.Vector) Box {
	return Box{
		Min: r3.Vector{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vector{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Size returns the extent of the box along each axis.
func (b Box) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the box.
func (b Box) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// ContainsXY reports whether the planar point (x, y) lies in the box's
// footprint. The footprint is half-open: [Min, Max).
func (b Box) ContainsXY(x, y float64) bool {
	return x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y
}

// IntersectRay tests the ray against the box over the parametric interval
// [t0, t1] using the slab method. It returns the entering distance, which
// is never less than t0, and whether the ray hits the box within the
// interval. A ray starting inside the box reports t0.
func (b Box) IntersectRay(r Ray, t0, t1 float64) (float64, bool) {
	tmin, tmax := t0, t1

	for i := range 3 {
		origin := axis(r.Origin, i)
		dir := axis(r.Direction, i)
		lo := axis(b.Min, i)
		hi := axis(b.Max, i)

		// Parallel to this slab: either always inside or never.
		if dir == 0 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}

		inv := 1 / dir
		near := (lo - origin) * inv
		far := (hi - origin) * inv
		if near > far {
			near, far = far, near
		}
		if near > tmin {
			tmin = near
		}
		if far < tmax {
			tmax = far
		}
		if tmin > tmax {
			return 0, false
		}
	}

	return tmin, true
}

// String returns the box as "[min max]".
func (b Box) String() string {
	return fmt.Sprintf("[%v %v]", b.Min, b.Max)
}
