// Package model defines domain entities and data structures for the Handy API.
//
// The model package contains all struct definitions for domain objects, request/response
// types, and error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - Account: Marketplace participant, acting as provider and customer
//   - Listing: Service offered by a provider account
//   - Booking: Request by a customer account against a listing
//
// Accounts carry membership lists (listings owned, bookings requested, bookings
// to fulfill) that reference listing and booking records by id. Lists are
// maintained with idempotent add/remove semantics and repaired at read time
// when they drift from the records they reference.
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Listing struct {
//	    ID          string  `json:"id"`
//	    Name        string  `json:"name"`
//	    Description string  `json:"description,omitempty"`
//	    Price       float64 `json:"price"`
//	}
//
// # Validation Constants
//
// The package defines validation constants:
//
//	const (
//	    MaxListingNameLength = 120
//	    MaxListingDescLength = 2000
//	    DefaultPageSize      = 10
//	)
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
