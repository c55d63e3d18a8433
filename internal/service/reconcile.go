package service

import (
	"context"
	"log/slog"

	"github.com/forgo/handy/api/internal/model"
)

// Reconciler walks the three stores and repairs membership-list drift left
// behind by partial failures. Two defect classes exist:
//
//   - stale reference: a list id whose target record no longer exists
//     (a delete whose list removal did not land)
//   - orphan: a listing or booking whose owning account list lacks its id
//     (a create whose list registration did not land)
//
// Stale references are removed. Orphans split by entity: a booking is an
// authoritative ledger fact reported to the caller as created, so it is
// re-registered on the missing lists; an unlisted listing means the create
// was reported as failed (registration failed and the compensating delete
// did not land), so the sweep finishes the compensation by deleting the
// record. All corrections are idempotent, so overlapping sweeps or a sweep
// racing a live request converge to the same state.
type Reconciler struct {
	accounts AccountRepository
	listings ListingRepository
	bookings BookingRepository
}

// ReconcilerConfig holds configuration for the reconciler
type ReconcilerConfig struct {
	Accounts AccountRepository
	Listings ListingRepository
	Bookings BookingRepository
}

// NewReconciler creates a new reconciler
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{
		accounts: cfg.Accounts,
		listings: cfg.Listings,
		bookings: cfg.Bookings,
	}
}

// ReconcileResult summarizes one sweep
type ReconcileResult struct {
	AccountsChecked   int
	StaleRemoved      int
	OrphansRegistered int
	OrphansDeleted    int
}

// Run performs one full sweep over all accounts, listings, and bookings
func (r *Reconciler) Run(ctx context.Context) (*ReconcileResult, error) {
	accounts, err := r.accounts.All(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := r.listings.All(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := r.bookings.All(ctx)
	if err != nil {
		return nil, err
	}

	listingOwner := make(map[string]string, len(listings))
	for _, listing := range listings {
		listingOwner[listing.ID] = listing.OwnerID
	}
	bookingByID := make(map[string]*model.Booking, len(bookings))
	for _, booking := range bookings {
		bookingByID[booking.ID] = booking
	}

	result := &ReconcileResult{AccountsChecked: len(accounts)}
	repairs := make(map[string]map[model.MembershipList]*model.ListRepair)

	repair := func(accountID string, list model.MembershipList) *model.ListRepair {
		if repairs[accountID] == nil {
			repairs[accountID] = make(map[model.MembershipList]*model.ListRepair)
		}
		if repairs[accountID][list] == nil {
			repairs[accountID][list] = &model.ListRepair{AccountID: accountID, List: list}
		}
		return repairs[accountID][list]
	}

	// Stale references: list ids whose target is missing, or whose target
	// no longer names this account
	for _, account := range accounts {
		for _, id := range account.ListingsOwned {
			if owner, ok := listingOwner[id]; !ok || owner != account.ID {
				rep := repair(account.ID, model.ListListingsOwned)
				rep.Remove = append(rep.Remove, id)
				result.StaleRemoved++
			}
		}
		for _, id := range account.BookingsRequested {
			if booking, ok := bookingByID[id]; !ok || booking.RequesterID != account.ID {
				rep := repair(account.ID, model.ListBookingsRequested)
				rep.Remove = append(rep.Remove, id)
				result.StaleRemoved++
			}
		}
		for _, id := range account.BookingsToFulfill {
			if booking, ok := bookingByID[id]; !ok || booking.ProviderID != account.ID {
				rep := repair(account.ID, model.ListBookingsToFulfill)
				rep.Remove = append(rep.Remove, id)
				result.StaleRemoved++
			}
		}
	}

	// Orphans: records whose owning account list lacks their id
	accountByID := make(map[string]*model.Account, len(accounts))
	for _, account := range accounts {
		accountByID[account.ID] = account
	}

	// An unlisted listing is a create that was reported as failed after its
	// compensating delete also failed. Re-registering it would resurrect a
	// listing the caller believes does not exist, so the sweep deletes it.
	for _, listing := range listings {
		owner, ok := accountByID[listing.OwnerID]
		if !ok {
			slog.Warn("listing owned by unknown account",
				slog.String("listing_id", listing.ID),
				slog.String("owner_id", listing.OwnerID))
			continue
		}
		if !owner.HasInList(model.ListListingsOwned, listing.ID) {
			if err := r.listings.Delete(ctx, listing.ID); err != nil {
				slog.Error("failed to delete unlisted listing",
					slog.String("listing_id", listing.ID),
					slog.String("error", err.Error()))
				continue
			}
			result.OrphansDeleted++
		}
	}

	for _, booking := range bookings {
		if requester, ok := accountByID[booking.RequesterID]; ok {
			if !requester.HasInList(model.ListBookingsRequested, booking.ID) {
				rep := repair(requester.ID, model.ListBookingsRequested)
				rep.Add = append(rep.Add, booking.ID)
				result.OrphansRegistered++
			}
		} else {
			slog.Warn("booking requested by unknown account",
				slog.String("booking_id", booking.ID),
				slog.String("requester_id", booking.RequesterID))
		}
		if provider, ok := accountByID[booking.ProviderID]; ok {
			if !provider.HasInList(model.ListBookingsToFulfill, booking.ID) {
				rep := repair(provider.ID, model.ListBookingsToFulfill)
				rep.Add = append(rep.Add, booking.ID)
				result.OrphansRegistered++
			}
		} else {
			slog.Warn("booking assigned to unknown account",
				slog.String("booking_id", booking.ID),
				slog.String("provider_id", booking.ProviderID))
		}
	}

	flat := make([]model.ListRepair, 0)
	for _, lists := range repairs {
		for _, rep := range lists {
			flat = append(flat, *rep)
		}
	}

	if len(flat) > 0 {
		if err := r.accounts.RepairLists(ctx, flat); err != nil {
			return nil, err
		}
	}

	if result.StaleRemoved > 0 || result.OrphansRegistered > 0 || result.OrphansDeleted > 0 {
		slog.Info("reconciliation sweep repaired membership lists",
			slog.Int("accounts", result.AccountsChecked),
			slog.Int("stale_removed", result.StaleRemoved),
			slog.Int("orphans_registered", result.OrphansRegistered),
			slog.Int("orphans_deleted", result.OrphansDeleted))
	}

	return result, nil
}
