package geom

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Ray represents a ray in 3D space: P(t) = Origin + t*Direction.
// Direction is not required to be normalized; distances reported by
// intersection routines are in units of the parameter t.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// NewRay creates a ray from an origin and a direction.
func NewRay(origin, direction r3.Vector) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// At returns the point on the ray at parameter t.
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}

// String returns the ray as "origin->direction".
func (r Ray) String() string {
	return fmt.Sprintf("%v->%v", r.Origin, r.Direction)
}
