package service

import (
	"context"

	"github.com/forgo/handy/api/internal/model"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockAccountRepo struct {
	createFunc                  func(ctx context.Context, account *model.Account) error
	existsByIdentityOrEmailFunc func(ctx context.Context, externalID, email string) (bool, error)
	getByIDFunc                 func(ctx context.Context, id string) (*model.Account, error)
	getByExternalIDFunc         func(ctx context.Context, externalID string) (*model.Account, error)
	getByEmailFunc              func(ctx context.Context, email string) (*model.Account, error)
	addToListFunc               func(ctx context.Context, accountID string, list model.MembershipList, itemID string) error
	removeFromListFunc          func(ctx context.Context, accountID string, list model.MembershipList, itemID string) error
	repairListsFunc             func(ctx context.Context, repairs []model.ListRepair) error
	allFunc                     func(ctx context.Context) ([]*model.Account, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, account)
	}
	return nil
}

func (m *mockAccountRepo) ExistsByIdentityOrEmail(ctx context.Context, externalID, email string) (bool, error) {
	if m.existsByIdentityOrEmailFunc != nil {
		return m.existsByIdentityOrEmailFunc(ctx, externalID, email)
	}
	return false, nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAccountRepo) GetByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	if m.getByExternalIDFunc != nil {
		return m.getByExternalIDFunc(ctx, externalID)
	}
	return nil, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockAccountRepo) AddToList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error {
	if m.addToListFunc != nil {
		return m.addToListFunc(ctx, accountID, list, itemID)
	}
	return nil
}

func (m *mockAccountRepo) RemoveFromList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error {
	if m.removeFromListFunc != nil {
		return m.removeFromListFunc(ctx, accountID, list, itemID)
	}
	return nil
}

func (m *mockAccountRepo) RepairLists(ctx context.Context, repairs []model.ListRepair) error {
	if m.repairListsFunc != nil {
		return m.repairListsFunc(ctx, repairs)
	}
	return nil
}

func (m *mockAccountRepo) All(ctx context.Context) ([]*model.Account, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, nil
}

type mockListingRepo struct {
	createFunc   func(ctx context.Context, listing *model.Listing) error
	getByIDFunc  func(ctx context.Context, id string) (*model.Listing, error)
	listFunc     func(ctx context.Context, limit, start int) ([]*model.Listing, error)
	countFunc    func(ctx context.Context) (int, error)
	searchFunc   func(ctx context.Context, text string) ([]*model.Listing, error)
	featuredFunc func(ctx context.Context, limit int) ([]*model.Listing, error)
	updateFunc   func(ctx context.Context, id string, fields *model.ListingFields) error
	deleteFunc   func(ctx context.Context, id string) error
	allFunc      func(ctx context.Context) ([]*model.Listing, error)
}

func (m *mockListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, listing)
	}
	return nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockListingRepo) List(ctx context.Context, limit, start int) ([]*model.Listing, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, start)
	}
	return nil, nil
}

func (m *mockListingRepo) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockListingRepo) Search(ctx context.Context, text string) ([]*model.Listing, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, text)
	}
	return nil, nil
}

func (m *mockListingRepo) Featured(ctx context.Context, limit int) ([]*model.Listing, error) {
	if m.featuredFunc != nil {
		return m.featuredFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockListingRepo) Update(ctx context.Context, id string, fields *model.ListingFields) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, fields)
	}
	return nil
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockListingRepo) All(ctx context.Context) ([]*model.Listing, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, nil
}

type mockBookingRepo struct {
	createFunc              func(ctx context.Context, booking *model.Booking) error
	getByIDFunc             func(ctx context.Context, id string) (*model.Booking, error)
	getByIdempotencyKeyFunc func(ctx context.Context, key string) (*model.Booking, error)
	updateStatusFunc        func(ctx context.Context, id, status string) error
	allFunc                 func(ctx context.Context) ([]*model.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	if m.getByIdempotencyKeyFunc != nil {
		return m.getByIdempotencyKeyFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockBookingRepo) All(ctx context.Context) ([]*model.Booking, error) {
	if m.allFunc != nil {
		return m.allFunc(ctx)
	}
	return nil, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, subject string, payload interface{}) error
	published   []string
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	m.published = append(m.published, subject)
	if m.publishFunc != nil {
		return m.publishFunc(ctx, subject, payload)
	}
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func newTestListingService(listings *mockListingRepo, accounts *mockAccountRepo) *ListingService {
	if listings == nil {
		listings = &mockListingRepo{}
	}
	if accounts == nil {
		accounts = &mockAccountRepo{}
	}
	return NewListingService(ListingServiceConfig{
		Listings: listings,
		Accounts: accounts,
	})
}

func newTestBookingService(bookings *mockBookingRepo, listings *mockListingRepo, accounts *mockAccountRepo) *BookingService {
	if bookings == nil {
		bookings = &mockBookingRepo{}
	}
	if listings == nil {
		listings = &mockListingRepo{}
	}
	if accounts == nil {
		accounts = &mockAccountRepo{}
	}
	return NewBookingService(BookingServiceConfig{
		Bookings: bookings,
		Listings: listings,
		Accounts: accounts,
	})
}
