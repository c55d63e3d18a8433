package handler

import (
	"context"
	"net/http"

	"github.com/forgo/handy/api/internal/middleware"
	"github.com/forgo/handy/api/internal/model"
	"github.com/forgo/handy/api/internal/service"
)

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// Book handles POST /v1/bookings
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.BookListingRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	booking, err := h.svc.Book(ctx, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, booking, nil)
}

// Requested handles GET /v1/bookings/requested - bookings the caller made
// as a customer
func (h *BookingHandler) Requested(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, h.svc.ListForRequester)
}

// ToFulfill handles GET /v1/bookings/to-fulfill - bookings the caller must
// fulfill as a provider
func (h *BookingHandler) ToFulfill(w http.ResponseWriter, r *http.Request) {
	h.listFor(w, r, h.svc.ListForProvider)
}

func (h *BookingHandler) listFor(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, externalID string) ([]*model.Booking, error)) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	bookings, err := list(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, bookings, len(bookings), nil)
}

// UpdateStatus handles PATCH /v1/bookings/{bookingId}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	bookingID := r.PathValue("bookingId")
	if bookingID == "" {
		WriteError(w, model.NewBadRequestError("booking ID is required"))
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	booking, err := h.svc.UpdateStatus(ctx, userID, bookingID, req.Status)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, booking, nil)
}
