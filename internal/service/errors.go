package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Account Errors =====
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("identity or email already registered")
)

// ===== Listing Errors =====
var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrNotListingOwner     = errors.New("listing is not owned by this account")
	ErrSearchQueryRequired = errors.New("search query is required")
)

// ===== Booking Errors =====
var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrNotBookingProvider   = errors.New("booking is not assigned to this provider")
	ErrBookingStatusMissing = errors.New("booking status is required")
	ErrRequesterNotFound    = errors.New("requester account not found")
	ErrProviderNotFound     = errors.New("provider account not found")
)
