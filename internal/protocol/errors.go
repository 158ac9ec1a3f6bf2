package protocol

import (
	"errors"

	"plotcraft.ai/internal/plan/layout"
	"plotcraft.ai/internal/plan/model"
)

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Plan routing.
	ErrPlanNotFound = "E_PLAN_NOT_FOUND"
	ErrPlanBusy     = "E_PLAN_BUSY"

	// Mutation layer, one per model rejection category.
	ErrInvalidGeometry   = "E_INVALID_GEOMETRY"
	ErrPlacementRejected = "E_PLACEMENT_REJECTED"
	ErrOutOfRange        = "E_OUT_OF_RANGE"
	ErrNotFound          = "E_NOT_FOUND"

	ErrBadRequest = "E_BAD_REQUEST"
	ErrStale      = "E_STALE"
	ErrInternal   = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:   {},
	ErrPlanNotFound:      {},
	ErrPlanBusy:          {},
	ErrInvalidGeometry:   {},
	ErrPlacementRejected: {},
	ErrOutOfRange:        {},
	ErrNotFound:          {},
	ErrBadRequest:        {},
	ErrStale:             {},
	ErrInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// CodeFor maps an error from the plan packages to its wire code.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, layout.ErrInvalidDocument), errors.Is(err, ErrUnknownEvent):
		return ErrBadRequest
	}
	return model.Code(err)
}
