package core

import "errors"

var (
	// ErrValidation marks a malformed or out-of-range input row. The row is
	// skipped; the batch keeps going.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientData marks a fit invoked with fewer valid points than
	// it needs. Only that computation is aborted.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateOrbit marks a state vector with (near) zero angular
	// momentum: a radial trajectory has no defined orbital elements.
	ErrDegenerateOrbit = errors.New("degenerate orbit")

	// ErrMissingBand marks photometry too incomplete for a photo-z estimate.
	ErrMissingBand = errors.New("missing photometric band")

	// ErrUnsupportedQuantity marks a record that cannot yield the requested
	// quantity kind (e.g. orbital elements for a record with no state vector).
	ErrUnsupportedQuantity = errors.New("quantity not derivable for record")
)
