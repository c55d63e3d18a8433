package model

import "time"

// Validation limits for listings
const (
	MaxListingNameLength = 120
	MaxListingDescLength = 2000

	DefaultPageSize  = 10
	MaxPageSize      = 50
	FeaturedListings = 6
)

// Listing represents a published service offering. Provider fields are
// denormalized from the owning account for read convenience; OwnerID is
// the authoritative reference.
type Listing struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Area          string    `json:"area"`
	Price         float64   `json:"price"`
	ImageURL      string    `json:"image_url"`
	ProviderName  string    `json:"provider_name"`
	ProviderEmail string    `json:"provider_email"`
	ProviderImage string    `json:"provider_image"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

// ListingFields carries the caller-supplied mutable fields of a listing.
// Updates are a full replace of these fields, not a merge.
type ListingFields struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Area        string  `json:"area"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

// Validate returns field errors for missing or malformed listing fields
func (f *ListingFields) Validate() []FieldError {
	var errs []FieldError
	if f.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "listing name is required"})
	}
	if len(f.Name) > MaxListingNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "listing name exceeds maximum length"})
	}
	if f.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	}
	if len(f.Description) > MaxListingDescLength {
		errs = append(errs, FieldError{Field: "description", Message: "description exceeds maximum length"})
	}
	if f.Area == "" {
		errs = append(errs, FieldError{Field: "area", Message: "service area is required"})
	}
	if f.Price < 0 {
		errs = append(errs, FieldError{Field: "price", Message: "price must not be negative"})
	}
	if f.ImageURL == "" {
		errs = append(errs, FieldError{Field: "image_url", Message: "image is required"})
	}
	return errs
}

// SearchListingsRequest is the payload for listing search
type SearchListingsRequest struct {
	Query string `json:"query"`
}

// ListingPage is a deterministic slice of the catalog plus page count
type ListingPage struct {
	Listings   []*Listing `json:"listings"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int        `json:"total"`
}
