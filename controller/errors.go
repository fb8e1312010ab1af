package controller

import (
	"errors"

	"dockcall-backend/service"

	"github.com/danielgtaylor/huma/v2"
)

// mapServiceError translates a service error into the matching HTTP status:
// validation 422, missing records 404, lifecycle preconditions 409.
func mapServiceError(err error, fallbackMessage string) error {
	switch {
	case service.IsValidationError(err):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errors.Is(err, service.ErrDriverNotFound), errors.Is(err, service.ErrCallNotFound):
		return huma.Error404NotFound(err.Error(), err)
	case service.IsStatePreconditionError(err):
		return huma.Error409Conflict(err.Error(), err)
	default:
		return huma.Error500InternalServerError(fallbackMessage, err)
	}
}
