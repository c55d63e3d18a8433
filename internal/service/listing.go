package service

import (
	"context"
	"log/slog"

	"github.com/forgo/handy/api/internal/model"
)

// ListingRepository defines the interface for listing storage
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context, limit, start int) ([]*model.Listing, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, text string) ([]*model.Listing, error)
	Featured(ctx context.Context, limit int) ([]*model.Listing, error)
	Update(ctx context.Context, id string, fields *model.ListingFields) error
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]*model.Listing, error)
}

// ListingService coordinates listing writes with the owner's membership
// list. The listing record is written first; the list registration follows.
// A listing that exists without a list entry is recoverable, a list entry
// without a listing is not, so the ordering is fixed.
type ListingService struct {
	listings ListingRepository
	accounts AccountRepository
	events   EventPublisher
}

// ListingServiceConfig holds configuration for the listing service
type ListingServiceConfig struct {
	Listings ListingRepository
	Accounts AccountRepository
	Events   EventPublisher
}

// NewListingService creates a new listing service
func NewListingService(cfg ListingServiceConfig) *ListingService {
	return &ListingService{
		listings: cfg.Listings,
		accounts: cfg.Accounts,
		events:   cfg.Events,
	}
}

// Create persists a new listing and registers it in the owner's
// listings_owned list. If registration fails, the listing is deleted again
// so the caller never sees a half-applied create; if that compensating
// delete also fails, the orphan is picked up by the reconciliation sweep.
func (s *ListingService) Create(ctx context.Context, ownerExternalID string, fields *model.ListingFields) (*model.Listing, error) {
	owner, err := s.accounts.GetByExternalID(ctx, ownerExternalID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}

	listing := &model.Listing{
		OwnerID:       owner.ID,
		Name:          fields.Name,
		Description:   fields.Description,
		Area:          fields.Area,
		Price:         fields.Price,
		ImageURL:      fields.ImageURL,
		ProviderName:  owner.Username,
		ProviderEmail: owner.Email,
		ProviderImage: owner.ProfileImage,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	if err := s.accounts.AddToList(ctx, owner.ID, model.ListListingsOwned, listing.ID); err != nil {
		if delErr := s.listings.Delete(ctx, listing.ID); delErr != nil {
			slog.Error("failed to remove listing after registration failure",
				slog.String("listing_id", listing.ID),
				slog.String("owner_id", owner.ID),
				slog.String("error", delErr.Error()))
		}
		return nil, err
	}

	publish(ctx, s.events, SubjectListingCreated, listingEvent(listing))
	return listing, nil
}

// GetByID retrieves a listing by record ID
func (s *ListingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Search returns listings whose name contains the query, case-insensitively.
// Zero matches is an empty result, not an error.
func (s *ListingService) Search(ctx context.Context, query string) ([]*model.Listing, error) {
	if query == "" {
		return nil, ErrSearchQueryRequired
	}

	listings, err := s.listings.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []*model.Listing{}
	}
	return listings, nil
}

// ListPage returns one page of the catalog in a stable order plus the total
// page count. Page and size default when absent or non-positive.
func (s *ListingService) ListPage(ctx context.Context, page, pageSize int) (*model.ListingPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}
	if pageSize > model.MaxPageSize {
		pageSize = model.MaxPageSize
	}

	total, err := s.listings.Count(ctx)
	if err != nil {
		return nil, err
	}

	listings, err := s.listings.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []*model.Listing{}
	}

	totalPages := (total + pageSize - 1) / pageSize

	return &model.ListingPage{
		Listings:   listings,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// Featured returns the newest listings for the landing page
func (s *ListingService) Featured(ctx context.Context) ([]*model.Listing, error) {
	listings, err := s.listings.Featured(ctx, model.FeaturedListings)
	if err != nil {
		return nil, err
	}
	if listings == nil {
		listings = []*model.Listing{}
	}
	return listings, nil
}

// Owned materializes the owner's listings_owned list. Ids that no longer
// resolve are stale references from a failed delete; they are dropped from
// the result and their removal is scheduled, so the list heals on read.
func (s *ListingService) Owned(ctx context.Context, ownerExternalID string) ([]*model.Listing, error) {
	owner, err := s.accounts.GetByExternalID(ctx, ownerExternalID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}

	listings := make([]*model.Listing, 0, len(owner.ListingsOwned))
	var stale []string
	for _, id := range owner.ListingsOwned {
		listing, err := s.listings.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if listing == nil {
			stale = append(stale, id)
			continue
		}
		listings = append(listings, listing)
	}

	if len(stale) > 0 {
		s.repairList(ctx, owner.ID, model.ListListingsOwned, stale)
	}

	return listings, nil
}

// Update overwrites all mutable fields of a listing. The membership check
// runs against the owner's listings_owned list; failing it is Forbidden
// regardless of whether the listing exists.
func (s *ListingService) Update(ctx context.Context, ownerExternalID, listingID string, fields *model.ListingFields) (*model.Listing, error) {
	owner, err := s.accounts.GetByExternalID(ctx, ownerExternalID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}
	if !owner.HasInList(model.ListListingsOwned, listingID) {
		return nil, ErrNotListingOwner
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		// Stale list entry; repair and report the target missing
		s.repairList(ctx, owner.ID, model.ListListingsOwned, []string{listingID})
		return nil, ErrListingNotFound
	}

	if err := s.listings.Update(ctx, listingID, fields); err != nil {
		return nil, err
	}

	updated, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrListingNotFound
	}
	return updated, nil
}

// Delete removes a listing and its entry in the owner's list. The listing
// record goes first; if the list removal then fails, the dangling reference
// is dropped by the next reconciled read instead of being trusted.
func (s *ListingService) Delete(ctx context.Context, ownerExternalID, listingID string) (*model.Listing, error) {
	owner, err := s.accounts.GetByExternalID(ctx, ownerExternalID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrAccountNotFound
	}
	if !owner.HasInList(model.ListListingsOwned, listingID) {
		return nil, ErrNotListingOwner
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		s.repairList(ctx, owner.ID, model.ListListingsOwned, []string{listingID})
		return nil, ErrListingNotFound
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		return nil, err
	}

	if err := s.accounts.RemoveFromList(ctx, owner.ID, model.ListListingsOwned, listingID); err != nil {
		slog.Warn("listing deleted but list removal failed, deferring to reconciliation",
			slog.String("listing_id", listingID),
			slog.String("owner_id", owner.ID),
			slog.String("error", err.Error()))
	}

	publish(ctx, s.events, SubjectListingDeleted, listingEvent(listing))
	return listing, nil
}

// repairList schedules removal of stale ids from an account list. Repair is
// best-effort; a failure leaves the stale ids for the next read or sweep.
func (s *ListingService) repairList(ctx context.Context, accountID string, list model.MembershipList, stale []string) {
	err := s.accounts.RepairLists(ctx, []model.ListRepair{{
		AccountID: accountID,
		List:      list,
		Remove:    stale,
	}})
	if err != nil {
		slog.Warn("membership list repair failed",
			slog.String("account_id", accountID),
			slog.String("list", string(list)),
			slog.String("error", err.Error()))
		return
	}
	slog.Info("repaired stale membership list entries",
		slog.String("account_id", accountID),
		slog.String("list", string(list)),
		slog.Int("removed", len(stale)))
}
