// Package memrepo provides in-memory repository implementations for
// hermetic acceptance tests. The implementations mirror the store-backed
// repositories' contracts: per-record writes, idempotent list mutation,
// and nil results for missing records.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/handy/api/internal/model"
)

// Accounts is an in-memory account repository
type Accounts struct {
	mu      sync.RWMutex
	records map[string]*model.Account
}

// NewAccounts creates an empty in-memory account repository
func NewAccounts() *Accounts {
	return &Accounts{records: map[string]*model.Account{}}
}

func (r *Accounts) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.ID = "account:" + uuid.NewString()
	now := time.Now().UTC()
	account.CreatedOn = now
	account.UpdatedOn = now
	account.ListingsOwned = []string{}
	account.BookingsRequested = []string{}
	account.BookingsToFulfill = []string{}

	r.records[account.ID] = cloneAccount(account)
	return nil
}

func (r *Accounts) ExistsByIdentityOrEmail(ctx context.Context, externalID, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.records {
		if a.ExternalID == externalID || a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *Accounts) GetByID(ctx context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.records[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, nil
}

func (r *Accounts) GetByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.records {
		if a.ExternalID == externalID {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *Accounts) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.records {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, nil
}

func (r *Accounts) AddToList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.records[accountID]
	if !ok {
		return nil
	}
	setList(a, list, union(a.List(list), itemID))
	a.UpdatedOn = time.Now().UTC()
	return nil
}

func (r *Accounts) RemoveFromList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.records[accountID]
	if !ok {
		return nil
	}
	setList(a, list, complement(a.List(list), []string{itemID}))
	a.UpdatedOn = time.Now().UTC()
	return nil
}

func (r *Accounts) RepairLists(ctx context.Context, repairs []model.ListRepair) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, repair := range repairs {
		a, ok := r.records[repair.AccountID]
		if !ok {
			continue
		}
		current := a.List(repair.List)
		for _, add := range repair.Add {
			current = union(current, add)
		}
		setList(a, repair.List, complement(current, repair.Remove))
		a.UpdatedOn = time.Now().UTC()
	}
	return nil
}

func (r *Accounts) All(ctx context.Context) ([]*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Account, 0, len(r.records))
	for _, a := range r.records {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Listings is an in-memory listing repository
type Listings struct {
	mu      sync.RWMutex
	records map[string]*model.Listing
	order   []string
}

// NewListings creates an empty in-memory listing repository
func NewListings() *Listings {
	return &Listings{records: map[string]*model.Listing{}}
}

func (r *Listings) Create(ctx context.Context, listing *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing.ID = "listing:" + uuid.NewString()
	now := time.Now().UTC()
	listing.CreatedOn = now
	listing.UpdatedOn = now

	r.records[listing.ID] = cloneListing(listing)
	r.order = append(r.order, listing.ID)
	return nil
}

func (r *Listings) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if l, ok := r.records[id]; ok {
		return cloneListing(l), nil
	}
	return nil, nil
}

func (r *Listings) List(ctx context.Context, limit, start int) ([]*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Listing
	for i := start; i < len(r.order) && len(out) < limit; i++ {
		if l, ok := r.records[r.order[i]]; ok {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *Listings) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}

func (r *Listings) Search(ctx context.Context, text string) ([]*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(text)
	var out []*model.Listing
	for _, id := range r.order {
		l, ok := r.records[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(l.Name), needle) {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *Listings) Featured(ctx context.Context, limit int) ([]*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Listing
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		if l, ok := r.records[r.order[i]]; ok {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

func (r *Listings) Update(ctx context.Context, id string, fields *model.ListingFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.records[id]
	if !ok {
		return nil
	}
	l.Name = fields.Name
	l.Description = fields.Description
	l.Area = fields.Area
	l.Price = fields.Price
	l.ImageURL = fields.ImageURL
	l.UpdatedOn = time.Now().UTC()
	return nil
}

func (r *Listings) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Listings) All(ctx context.Context) ([]*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Listing, 0, len(r.order))
	for _, id := range r.order {
		if l, ok := r.records[id]; ok {
			out = append(out, cloneListing(l))
		}
	}
	return out, nil
}

// Bookings is an in-memory booking repository
type Bookings struct {
	mu      sync.RWMutex
	records map[string]*model.Booking
	order   []string
}

// NewBookings creates an empty in-memory booking repository
func NewBookings() *Bookings {
	return &Bookings{records: map[string]*model.Booking{}}
}

func (r *Bookings) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking.ID = "booking:" + uuid.NewString()
	now := time.Now().UTC()
	booking.CreatedOn = now
	booking.UpdatedOn = now

	r.records[booking.ID] = cloneBooking(booking)
	r.order = append(r.order, booking.ID)
	return nil
}

func (r *Bookings) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b, ok := r.records[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, nil
}

func (r *Bookings) GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		b := r.records[id]
		if b != nil && b.IdempotencyKey == key {
			return cloneBooking(b), nil
		}
	}
	return nil, nil
}

func (r *Bookings) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.records[id]; ok {
		b.Status = status
		b.UpdatedOn = time.Now().UTC()
	}
	return nil
}

func (r *Bookings) All(ctx context.Context) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Booking, 0, len(r.order))
	for _, id := range r.order {
		if b, ok := r.records[id]; ok {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

// Helpers shared by the in-memory repositories

func cloneAccount(a *model.Account) *model.Account {
	c := *a
	c.ListingsOwned = append([]string{}, a.ListingsOwned...)
	c.BookingsRequested = append([]string{}, a.BookingsRequested...)
	c.BookingsToFulfill = append([]string{}, a.BookingsToFulfill...)
	return &c
}

func cloneListing(l *model.Listing) *model.Listing {
	c := *l
	return &c
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

func union(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}

func complement(items, remove []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		removed := false
		for _, rm := range remove {
			if item == rm {
				removed = true
				break
			}
		}
		if !removed {
			out = append(out, item)
		}
	}
	return out
}

func setList(a *model.Account, list model.MembershipList, items []string) {
	switch list {
	case model.ListListingsOwned:
		a.ListingsOwned = items
	case model.ListBookingsRequested:
		a.BookingsRequested = items
	case model.ListBookingsToFulfill:
		a.BookingsToFulfill = items
	}
}
