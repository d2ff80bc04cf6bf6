package heightfield

import "errors"

// Height field errors.
var (
	// ErrInvariantViolation is returned when quadtree construction reaches
	// a range that is one cell wide on exactly one axis. Padding to a
	// power-of-two square makes this unreachable from FromGrid; seeing it
	// means the padding is broken.
	ErrInvariantViolation = errors.New("quadtree invariant violation")
	// ErrJaggedGrid is returned when grid rows have different lengths.
	ErrJaggedGrid = errors.New("jagged grid: rows have different lengths")
	// ErrInvalidResolution is returned for a resolution that is not a
	// finite positive number.
	ErrInvalidResolution = errors.New("invalid resolution")
	// ErrInvalidHeight is returned for a negative, NaN or infinite sample.
	ErrInvalidHeight = errors.New("invalid height sample")
)
