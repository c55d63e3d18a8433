package service

import (
	"context"
	"log/slog"

	"github.com/forgo/handy/api/internal/model"
)

// BookingRepository defines the interface for booking ledger storage
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	All(ctx context.Context) ([]*model.Booking, error)
}

// BookingService coordinates the booking ledger with the requester's and
// provider's membership lists. The ledger insert always runs first: a
// booking with no list entry is recoverable by reconciliation, a list entry
// pointing at a missing booking is not.
type BookingService struct {
	bookings BookingRepository
	listings ListingRepository
	accounts AccountRepository
	events   EventPublisher
}

// BookingServiceConfig holds configuration for the booking service
type BookingServiceConfig struct {
	Bookings BookingRepository
	Listings ListingRepository
	Accounts AccountRepository
	Events   EventPublisher
}

// NewBookingService creates a new booking service
func NewBookingService(cfg BookingServiceConfig) *BookingService {
	return &BookingService{
		bookings: cfg.Bookings,
		listings: cfg.Listings,
		accounts: cfg.Accounts,
		events:   cfg.Events,
	}
}

// Book creates a booking against a listing. Listing fields are snapshotted
// at this instant so later edits do not rewrite history. The three writes
// (ledger insert, two list appends) run in fixed order; the appends are
// idempotent, so a retried call with the same idempotency key cannot
// double-register.
func (s *BookingService) Book(ctx context.Context, req *model.BookListingRequest) (*model.Booking, error) {
	// A retried request returns the booking created on the first attempt
	if req.IdempotencyKey != "" {
		existing, err := s.bookings.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.registerBooking(ctx, existing)
			return existing, nil
		}
	}

	requester, err := s.accounts.GetByEmail(ctx, req.RequesterEmail)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, ErrRequesterNotFound
	}

	provider, err := s.accounts.GetByEmail(ctx, req.ProviderEmail)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	listing, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	booking := &model.Booking{
		ListingID:          listing.ID,
		ListingName:        listing.Name,
		ListingImage:       listing.ImageURL,
		ListingDescription: listing.Description,
		Price:              listing.Price,
		RequesterID:        requester.ID,
		RequesterName:      requester.Username,
		RequesterEmail:     requester.Email,
		ProviderID:         provider.ID,
		ProviderName:       provider.Username,
		ProviderEmail:      provider.Email,
		ServiceDate:        req.ServiceDate,
		Instructions:       req.Instructions,
		Status:             model.BookingStatusPending,
		IdempotencyKey:     req.IdempotencyKey,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.registerBooking(ctx, booking)

	publish(ctx, s.events, SubjectBookingCreated, bookingEvent(booking))
	return booking, nil
}

// registerBooking appends the booking to both membership lists. The ledger
// record is already durable at this point, so a failed append is logged and
// left for the reconciliation sweep rather than failing the request; the
// appends themselves are idempotent and safe to re-run.
func (s *BookingService) registerBooking(ctx context.Context, booking *model.Booking) {
	if err := s.accounts.AddToList(ctx, booking.RequesterID, model.ListBookingsRequested, booking.ID); err != nil {
		slog.Error("failed to register booking with requester, deferring to reconciliation",
			slog.String("booking_id", booking.ID),
			slog.String("requester_id", booking.RequesterID),
			slog.String("error", err.Error()))
	}
	if err := s.accounts.AddToList(ctx, booking.ProviderID, model.ListBookingsToFulfill, booking.ID); err != nil {
		slog.Error("failed to register booking with provider, deferring to reconciliation",
			slog.String("booking_id", booking.ID),
			slog.String("provider_id", booking.ProviderID),
			slog.String("error", err.Error()))
	}
}

// ListForRequester materializes the account's bookings_requested list in
// list order. Stale ids are dropped from the result and scheduled for
// removal.
func (s *BookingService) ListForRequester(ctx context.Context, requesterExternalID string) ([]*model.Booking, error) {
	return s.listForAccount(ctx, requesterExternalID, model.ListBookingsRequested)
}

// ListForProvider materializes the account's bookings_to_fulfill list in
// list order. Stale ids are dropped from the result and scheduled for
// removal.
func (s *BookingService) ListForProvider(ctx context.Context, providerExternalID string) ([]*model.Booking, error) {
	return s.listForAccount(ctx, providerExternalID, model.ListBookingsToFulfill)
}

func (s *BookingService) listForAccount(ctx context.Context, externalID string, list model.MembershipList) ([]*model.Booking, error) {
	account, err := s.accounts.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	ids := account.List(list)
	bookings := make([]*model.Booking, 0, len(ids))
	var stale []string
	for _, id := range ids {
		booking, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			stale = append(stale, id)
			continue
		}
		bookings = append(bookings, booking)
	}

	if len(stale) > 0 {
		s.repairList(ctx, account.ID, list, stale)
	}

	return bookings, nil
}

// UpdateStatus overwrites a booking's status. Only the provider named in
// the booking may change it, checked against the bookings_to_fulfill list.
// Status values are free text chosen by the provider-side workflow; only
// the empty string is rejected.
func (s *BookingService) UpdateStatus(ctx context.Context, providerExternalID, bookingID, status string) (*model.Booking, error) {
	if status == "" {
		return nil, ErrBookingStatusMissing
	}

	provider, err := s.accounts.GetByExternalID(ctx, providerExternalID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrAccountNotFound
	}
	if !provider.HasInList(model.ListBookingsToFulfill, bookingID) {
		return nil, ErrNotBookingProvider
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		s.repairList(ctx, provider.ID, model.ListBookingsToFulfill, []string{bookingID})
		return nil, ErrBookingNotFound
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	publish(ctx, s.events, SubjectBookingStatus, bookingEvent(booking))
	return booking, nil
}

func (s *BookingService) repairList(ctx context.Context, accountID string, list model.MembershipList, stale []string) {
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
