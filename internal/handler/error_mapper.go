package handler

import (
	"errors"

	"github.com/forgo/handy/api/internal/model"
	"github.com/forgo/handy/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotListingOwner),
		errors.Is(err, service.ErrNotBookingProvider):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrAccountNotFound):
		return model.NewNotFoundError("account")
	case errors.Is(err, service.ErrListingNotFound):
		return model.NewNotFoundError("listing")
	case errors.Is(err, service.ErrBookingNotFound):
		return model.NewNotFoundError("booking")
	case errors.Is(err, service.ErrRequesterNotFound):
		return model.NewNotFoundError("requester account")
	case errors.Is(err, service.ErrProviderNotFound):
		return model.NewNotFoundError("provider account")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrAccountExists):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrSearchQueryRequired):
		return model.NewValidationError([]model.FieldError{{Field: "query", Message: err.Error()}})
	case errors.Is(err, service.ErrBookingStatusMissing):
		return model.NewValidationError([]model.FieldError{{Field: "status", Message: err.Error()}})

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}
