package model

import "time"

// BookingStatusPending is the initial status of every booking. Later values
// are chosen by the provider-side workflow and are not constrained to a
// fixed set; the ledger stores whatever non-empty string it is given.
const BookingStatusPending = "Pending"

// Booking represents a service booking. Listing fields are snapshotted at
// booking time so later listing edits do not retroactively change history.
type Booking struct {
	ID                 string    `json:"id"`
	ListingID          string    `json:"listing_id"`
	ListingName        string    `json:"listing_name"`
	ListingImage       string    `json:"listing_image"`
	ListingDescription string    `json:"listing_description"`
	Price              float64   `json:"price"`
	RequesterID        string    `json:"requester_id"`
	RequesterName      string    `json:"requester_name"`
	RequesterEmail     string    `json:"requester_email"`
	ProviderID         string    `json:"provider_id"`
	ProviderName       string    `json:"provider_name"`
	ProviderEmail      string    `json:"provider_email"`
	ServiceDate        string    `json:"service_date"`
	Instructions       string    `json:"instructions"`
	Status             string    `json:"status"`
	IdempotencyKey     string    `json:"idempotency_key,omitempty"`
	CreatedOn          time.Time `json:"created_on"`
	UpdatedOn          time.Time `json:"updated_on"`
}

// BookListingRequest is the payload for booking a listing
type BookListingRequest struct {
	ListingID      string `json:"listing_id"`
	RequesterEmail string `json:"requester_email"`
	ProviderEmail  string `json:"provider_email"`
	ServiceDate    string `json:"service_date"`
	Instructions   string `json:"instructions"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Validate returns field errors for missing booking fields
func (r *BookListingRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ListingID == "" {
		errs = append(errs, FieldError{Field: "listing_id", Message: "listing id is required"})
	}
	if r.RequesterEmail == "" {
		errs = append(errs, FieldError{Field: "requester_email", Message: "requester email is required"})
	}
	if r.ProviderEmail == "" {
		errs = append(errs, FieldError{Field: "provider_email", Message: "provider email is required"})
	}
	return errs
}

// UpdateBookingStatusRequest is the payload for a provider status change
type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}
