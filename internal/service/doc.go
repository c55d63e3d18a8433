// Package service implements the business logic layer for the Handy API.
//
// The service package contains all domain logic, validation rules, and
// orchestration of repository operations. Services are the primary
// abstraction between HTTP handlers and data access.
//
// # Write Coordination
//
// The store commits one record at a time, so every operation that touches
// two or three records follows a fixed discipline:
//
//   - The authoritative record (listing, booking) is written before any
//     membership list that references it. A crash between the writes leaves
//     a referenced-but-unlisted record, which reconciliation can repair; the
//     opposite order could leave a list entry naming a record that never
//     existed, which nothing can repair.
//   - List mutations are idempotent (set union and complement), so retried
//     requests converge instead of duplicating entries.
//   - Reads that materialize a membership list drop ids that no longer
//     resolve and schedule their removal, healing stale lists in place.
//   - The Reconciler sweep re-registers orphans and removes stale ids
//     across the whole data set.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables:
//
//	var (
//	    ErrListingNotFound = errors.New("listing not found")
//	    ErrNotListingOwner = errors.New("listing is not owned by this account")
//	)
//
// # Example Usage
//
//	service := NewListingService(ListingServiceConfig{
//	    Listings: listingRepository,
//	    Accounts: accountRepository,
//	})
//	listing, err := service.Create(ctx, ownerExternalID, &model.ListingFields{
//	    Name:  "Plumbing",
//	    Price: 50.00,
//	})
package service
