package handler

import (
	"net/http"
	"strconv"

	"github.com/forgo/handy/api/internal/middleware"
	"github.com/forgo/handy/api/internal/model"
	"github.com/forgo/handy/api/internal/service"
)

// ListingHandler handles listing HTTP requests
type ListingHandler struct {
	svc *service.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(svc *service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// Search handles GET /v1/listings/search?query=
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("query")

	listings, err := h.svc.Search(ctx, query)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, listings, len(listings), nil)
}

// List handles GET /v1/listings?page=&page_size=
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := parseIntParam(r, "page")
	pageSize := parseIntParam(r, "page_size")

	result, err := h.svc.ListPage(ctx, page, pageSize)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, result.Listings, len(result.Listings), &PaginationInfo{
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
	})
}

// Featured handles GET /v1/listings/featured
func (h *ListingHandler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listings, err := h.svc.Featured(ctx)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, listings, len(listings), nil)
}

// Get handles GET /v1/listings/{listingId}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID := r.PathValue("listingId")
	if listingID == "" {
		WriteError(w, model.NewBadRequestError("listing ID is required"))
		return
	}

	listing, err := h.svc.GetByID(ctx, listingID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, listing, nil)
}

// Create handles POST /v1/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var fields model.ListingFields
	if err := DecodeJSON(r, &fields); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := fields.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	listing, err := h.svc.Create(ctx, userID, &fields)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, listing, nil)
}

// Owned handles GET /v1/listings/owned
func (h *ListingHandler) Owned(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	listings, err := h.svc.Owned(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, listings, len(listings), nil)
}

// Update handles PUT /v1/listings/{listingId}
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	listingID := r.PathValue("listingId")
	if listingID == "" {
		WriteError(w, model.NewBadRequestError("listing ID is required"))
		return
	}

	var fields model.ListingFields
	if err := DecodeJSON(r, &fields); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	if errs := fields.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	listing, err := h.svc.Update(ctx, userID, listingID, &fields)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, listing, nil)
}

// Delete handles DELETE /v1/listings/{listingId}. The deleted listing is
// returned so clients can render an undo-style confirmation.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	listingID := r.PathValue("listingId")
	if listingID == "" {
		WriteError(w, model.NewBadRequestError("listing ID is required"))
		return
	}

	listing, err := h.svc.Delete(ctx, userID, listingID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, listing, nil)
}

// parseIntParam reads a non-negative integer query parameter, returning 0
// when absent or malformed so the service applies its defaults.
func parseIntParam(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
