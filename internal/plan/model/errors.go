package model

import "errors"

// Rejection categories. Every failed mutation wraps exactly one of these and
// leaves the plan unchanged.
var (
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrPlacementRejected = errors.New("placement rejected")
	ErrOutOfRange        = errors.New("out of range")
	ErrNotFound          = errors.New("not found")
)

// Code maps a rejection to its wire error code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidGeometry):
		return "E_INVALID_GEOMETRY"
	case errors.Is(err, ErrPlacementRejected):
		return "E_PLACEMENT_REJECTED"
	case errors.Is(err, ErrOutOfRange):
		return "E_OUT_OF_RANGE"
	case errors.Is(err, ErrNotFound):
		return "E_NOT_FOUND"
	default:
		return "E_INTERNAL"
	}
}
