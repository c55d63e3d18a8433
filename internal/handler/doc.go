// Package handler provides HTTP request handlers for the Handy API.
//
// The handler package contains all HTTP endpoint implementations organized by
// domain. Each handler struct wraps the service it serves (accounts, listings,
// bookings).
//
// # Handler Pattern
//
// All handlers follow a consistent pattern:
//
//   - Constructor function (NewXxxHandler) accepts the domain service
//   - Methods handle specific HTTP endpoints
//   - Response helpers from response.go standardize output format
//   - Service errors are mapped to RFC 9457 Problem Details by MapServiceError
//
// # Response Format
//
// Handlers use standardized response functions:
//
//   - WriteData: Single resource
//   - WriteCollection: List of resources with count and optional pagination
//   - WriteJSON: Raw JSON response
//   - WriteError: RFC 9457 Problem Details error response
//
// # Authentication
//
// Protected handlers read the caller's external identity from the verified
// token via middleware.GetUserID. Request bodies never carry identity.
//
// # Example Usage
//
//	handler := NewListingHandler(listingService)
//	mux.HandleFunc("GET /v1/listings", handler.List)
//	mux.HandleFunc("POST /v1/listings", handler.Create)
package handler
