package handler

import (
	"context"
	"net/http"

	"github.com/forgo/handy/api/internal/middleware"
	"github.com/forgo/handy/api/internal/model"
	"github.com/forgo/handy/api/internal/service"
)

// AccountHandler handles account HTTP requests
type AccountHandler struct {
	svc *service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// registerBody carries the caller-supplied registration fields; the external
// identity always comes from the verified token, never from the body.
type registerBody struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
}

// Register handles POST /v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.svc.Register)
}

// RegisterProvider handles POST /v1/accounts/register-provider - the
// provider signup path, safe to repeat for the same identity
func (h *AccountHandler) RegisterProvider(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.svc.RegisterProvider)
}

func (h *AccountHandler) register(w http.ResponseWriter, r *http.Request, create func(context.Context, *model.RegisterAccountRequest) (*model.Account, error)) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var body registerBody
	if err := DecodeJSON(r, &body); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	req := &model.RegisterAccountRequest{
		ExternalID:   userID,
		Username:     body.Username,
		Email:        body.Email,
		ProfileImage: body.ProfileImage,
	}
	if errs := req.Validate(); len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	account, err := create(ctx, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, account, nil)
}

// Me handles GET /v1/accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	account, err := h.svc.GetByExternalID(ctx, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, account, nil)
}
