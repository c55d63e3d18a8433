package tests

/*
FEATURE: Cross-Record Consistency
DOMAIN: Membership Lists, Read Repair, Reconciliation

ACCEPTANCE CRITERIA:
===================

AC-CON-001: Read Repair Drops Stale Listing References
  GIVEN an owned list referencing a deleted listing
  WHEN the owner reads their listings
  THEN the stale reference is omitted from the result
  AND removed from the stored list

AC-CON-002: Read Repair Drops Stale Booking References
  GIVEN a booking list referencing a deleted booking
  WHEN the account reads its bookings
  THEN the stale reference is omitted and repaired

AC-CON-003: Booking Retry Is Idempotent
  GIVEN a booking was created with an idempotency key
  WHEN the same request is retried
  THEN the original booking is returned
  AND no second ledger record is created

AC-CON-004: Reconciler Repairs Orphaned Records
  GIVEN a booking missing from its account lists
  WHEN the reconciliation sweep runs
  THEN the missing booking references are registered
  AND an unlisted listing, whose create was reported as failed,
      is deleted rather than resurrected

AC-CON-005: Reconciler Removes Stale And Misattributed References
  GIVEN list entries pointing at deleted records or records owned elsewhere
  WHEN the reconciliation sweep runs
  THEN the bad references are removed

AC-CON-006: List Mutation Is Idempotent
  GIVEN a reference already present or already absent
  WHEN the same add or remove is applied again
  THEN the list is unchanged
*/

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/handy/api/internal/model"
)

func TestConsistency_ReadRepairDropsStaleListings(t *testing.T) {
	// AC-CON-001: Read Repair Drops Stale Listing References
	e := newEnv()
	ctx := context.Background()

	provider := e.registerProvider(t, "pat")
	keep := e.createListing(t, provider, "Plumbing", 50.00)
	gone := e.createListing(t, provider, "Gardening", 30.00)

	// Remove the record out from under the owned list
	require.NoError(t, e.listings.Delete(ctx, gone.ID))

	owned, err := e.listingSvc.Owned(ctx, provider.ExternalID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, keep.ID, owned[0].ID)

	// The stored list was repaired, not just filtered
	account, err := e.accounts.GetByExternalID(ctx, provider.ExternalID)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, account.ListingsOwned)
}

func TestConsistency_ReadRepairDropsStaleBookings(t *testing.T) {
	// AC-CON-002: Read Repair Drops Stale Booking References
	e := newEnv()
	ctx := context.Background()

	provider := e.registerProvider(t, "pat")
	customer := e.registerCustomer(t, "carol")
	listing := e.createListing(t, provider, "Plumbing", 50.00)

	booking, err := e.bookingSvc.Book(ctx, &model.BookListingRequest{
		ListingID:      listing.ID,
		RequesterEmail: customer.Email,
		ProviderEmail:  provider.Email,
	})
	require.NoError(t, err)

	// Inject a dangling reference alongside the real one
	customerAccount, err := e.accounts.GetByEmail(ctx, customer.Email)
	require.NoError(t, err)
	require.NoError(t, e.accounts.AddToList(ctx, customerAccount.ID, model.ListBookingsRequested, "booking:gone"))

	requested, err := e.bookingSvc.ListForRequester(ctx, customer.ExternalID)
	require.NoError(t, err)
	require.Len(t, requested, 1)
	assert.Equal(t, booking.ID, requested[0].ID)

	repaired, err := e.accounts.GetByID(ctx, customerAccount.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{booking.ID}, repaired.BookingsRequested)
}

func TestConsistency_BookingRetryIdempotent(t *testing.T) {
	// AC-CON-003: Booking Retry Is Idempotent
	e := newEnv()
	ctx := context.Background()

	provider := e.registerProvider(t, "pat")
	customer := e.registerCustomer(t, "carol")
	listing := e.createListing(t, provider, "Plumbing", 50.00)

	req := &model.BookListingRequest{
		ListingID:      listing.ID,
		RequesterEmail: customer.Email,
		ProviderEmail:  provider.Email,
		IdempotencyKey: "retry-key-1",
	}

	first, err := e.bookingSvc.Book(ctx, req)
	require.NoError(t, err)

	second, err := e.bookingSvc.Book(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := e.bookings.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// Lists hold the booking exactly once
	account, err := e.accounts.GetByEmail(ctx, customer.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, account.BookingsRequested)
}

func TestConsistency_ReconcilerRegistersOrphanedBookings(t *testing.T) {
	// AC-CON-004: Reconciler Repairs Orphaned Records
	e := newEnv()
	ctx := context.Background()

	provider := e.registerProvider(t, "pat")
	customer := e.registerCustomer(t, "carol")
	listing := e.createListing(t, provider, "Plumbing", 50.00)

	booking, err := e.bookingSvc.Book(ctx, &model.BookListingRequest{
		ListingID:      listing.ID,
		RequesterEmail: customer.Email,
		ProviderEmail:  provider.Email,
	})
	require.NoError(t, err)

	// Strip the booking references, leaving an orphaned ledger record
	providerAccount, err := e.accounts.GetByEmail(ctx, provider.Email)
	require.NoError(t, err)
	customerAccount, err := e.accounts.GetByEmail(ctx, customer.Email)
	require.NoError(t, err)
	require.NoError(t, e.accounts.RemoveFromList(ctx, providerAccount.ID, model.ListBookingsToFulfill, booking.ID))
	require.NoError(t, e.accounts.RemoveFromList(ctx, customerAccount.ID, model.ListBookingsRequested, booking.ID))

	result, err := e.reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.OrphansRegistered)
	assert.Zero(t, result.OrphansDeleted)

	providerAccount, err = e.accounts.GetByID(ctx, providerAccount.ID)
	require.NoError(t, err)
	assert.Contains(t, providerAccount.BookingsToFulfill, booking.ID)

	customerAccount, err = e.accounts.GetByID(ctx, customerAccount.ID)
	require.NoError(t, err)
	assert.Contains(t, customerAccount.BookingsRequested, booking.ID)
}

func TestConsistency_ReconcilerDeletesUnlistedListings(t *testing.T) {
	// AC-CON-004: Reconciler Repairs Orphaned Records
	//
	// A listing record with no owned-list entry is a create whose failure
	// was already reported to the caller. The sweep must finish the
	// compensation, not revive the listing.
	e := newEnv()
	ctx := context.Background()

	provider := e.registerProvider(t, "pat")
	kept := e.createListing(t, provider, "Plumbing", 50.00)
	failed := e.createListing(t, provider, "Gardening", 30.00)

	providerAccount, err := e.accounts.GetByEmail(ctx, provider.Email)
	require.NoError(t, err)
	require.NoError(t, e.accounts.RemoveFromList(ctx, providerAccount.ID, model.ListListingsOwned, failed.ID))

	result, err := e.reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrphansDeleted)
	assert.Zero(t, result.OrphansRegistered)

	gone, err := e.listings.GetByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	providerAccount, err = e.accounts.GetByID(ctx, providerAccount.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, providerAccount.ListingsOwned)
}

func TestConsistency_ReconcilerRemovesStaleReferences(t *testing.T) {
	// AC-CON-005: Reconciler Removes Stale And Misattributed References
	e := newEnv()
	ctx := context.Background()

	pat := e.registerProvider(t, "pat")
	rival := e.registerProvider(t, "riva")
	listing := e.createListing(t, pat, "Plumbing", 50.00)

	patAccount, err := e.accounts.GetByEmail(ctx, pat.Email)
	require.NoError(t, err)
	rivalAccount, err := e.accounts.GetByEmail(ctx, rival.Email)
	require.NoError(t, err)

	// A reference to a record that no longer exists
	require.NoError(t, e.accounts.AddToList(ctx, patAccount.ID, model.ListListingsOwned, "listing:gone"))
	// A reference to someone else's listing
	require.NoError(t, e.accounts.AddToList(ctx, rivalAccount.ID, model.ListListingsOwned, listing.ID))

	result, err := e.reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.StaleRemoved)

	patAccount, err = e.accounts.GetByID(ctx, patAccount.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{listing.ID}, patAccount.ListingsOwned)

	rivalAccount, err = e.accounts.GetByID(ctx, rivalAccount.ID)
	require.NoError(t, err)
	assert.Empty(t, rivalAccount.ListingsOwned)
}

func TestConsistency_ListMutationIdempotent(t *testing.T) {
	// AC-CON-006: List Mutation Is Idempotent
	e := newEnv()
	ctx := context.Background()

	provider := e.registerProvider(t, "pat")
	account, err := e.accounts.GetByEmail(ctx, provider.Email)
	require.NoError(t, err)

	require.NoError(t, e.accounts.AddToList(ctx, account.ID, model.ListListingsOwned, "listing:a"))
	require.NoError(t, e.accounts.AddToList(ctx, account.ID, model.ListListingsOwned, "listing:a"))

	account, err = e.accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"listing:a"}, account.ListingsOwned)

	require.NoError(t, e.accounts.RemoveFromList(ctx, account.ID, model.ListListingsOwned, "listing:a"))
	require.NoError(t, e.accounts.RemoveFromList(ctx, account.ID, model.ListListingsOwned, "listing:a"))

	account, err = e.accounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, account.ListingsOwned)
}
