package model

import "time"

// MembershipList identifies one of an account's derived reference lists.
// The lists mirror ownership/participation facts held in the listing and
// booking stores and must be kept in lockstep with them.
type MembershipList string

const (
	ListListingsOwned     MembershipList = "listings_owned"
	ListBookingsRequested MembershipList = "bookings_requested"
	ListBookingsToFulfill MembershipList = "bookings_to_fulfill"
)

// IsValid returns true if the list name is one of the three known lists
func (l MembershipList) IsValid() bool {
	switch l {
	case ListListingsOwned, ListBookingsRequested, ListBookingsToFulfill:
		return true
	}
	return false
}

// Account represents a marketplace account. Identity is issued externally
// and handed to us as an opaque verified identifier (ExternalID).
type Account struct {
	ID           string    `json:"id"`
	ExternalID   string    `json:"external_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profile_image"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`

	// Derived reference lists. Every id must point at a record that
	// currently exists; stale entries are repaired at read time.
	ListingsOwned     []string `json:"listings_owned"`
	BookingsRequested []string `json:"bookings_requested"`
	BookingsToFulfill []string `json:"bookings_to_fulfill"`
}

// List returns the named membership list
func (a *Account) List(name MembershipList) []string {
	switch name {
	case ListListingsOwned:
		return a.ListingsOwned
	case ListBookingsRequested:
		return a.BookingsRequested
	case ListBookingsToFulfill:
		return a.BookingsToFulfill
	}
	return nil
}

// HasInList reports whether itemID appears in the named list
func (a *Account) HasInList(name MembershipList, itemID string) bool {
	for _, id := range a.List(name) {
		if id == itemID {
			return true
		}
	}
	return false
}

// ListRepair describes one membership-list correction: ids to register and
// stale ids to drop on a single account list. Both sides are idempotent.
type ListRepair struct {
	AccountID string
	List      MembershipList
	Add       []string
	Remove    []string
}

// RegisterAccountRequest is the payload for account registration
type RegisterAccountRequest struct {
	ExternalID   string `json:"external_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ProfileImage string `json:"profile_image"`
}

// Validate returns field errors for missing registration fields
func (r *RegisterAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ExternalID == "" {
		errs = append(errs, FieldError{Field: "external_id", Message: "external identity is required"})
	}
	if r.Username == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	}
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if r.ProfileImage == "" {
		errs = append(errs, FieldError{Field: "profile_image", Message: "profile image is required"})
	}
	return errs
}
