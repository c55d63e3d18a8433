package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/forgo/handy/api/internal/database"
	"github.com/forgo/handy/api/internal/model"
)

// BookingRepository handles booking ledger data access
type BookingRepository struct {
	db database.Database
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db database.Database) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking into the ledger. The ledger record is the
// authoritative fact of the booking; membership-list writes follow it.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		CREATE booking CONTENT {
			listing_id: $listing_id,
			listing_name: $listing_name,
			listing_image: $listing_image,
			listing_description: $listing_description,
			price: $price,
			requester_id: $requester_id,
			requester_name: $requester_name,
			requester_email: $requester_email,
			provider_id: $provider_id,
			provider_name: $provider_name,
			provider_email: $provider_email,
			service_date: $service_date,
			instructions: $instructions,
			status: $status,
			idempotency_key: $idempotency_key,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"listing_id":          booking.ListingID,
		"listing_name":        booking.ListingName,
		"listing_image":       booking.ListingImage,
		"listing_description": booking.ListingDescription,
		"price":               booking.Price,
		"requester_id":        booking.RequesterID,
		"requester_name":      booking.RequesterName,
		"requester_email":     booking.RequesterEmail,
		"provider_id":         booking.ProviderID,
		"provider_name":       booking.ProviderName,
		"provider_email":      booking.ProviderEmail,
		"service_date":        booking.ServiceDate,
		"instructions":        booking.Instructions,
		"status":              booking.Status,
		"idempotency_key":     booking.IdempotencyKey,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	booking.ID = created.ID
	booking.CreatedOn = created.CreatedOn
	booking.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a booking by record ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseBookingResult(result)
}

// GetByIdempotencyKey retrieves the booking created under a client retry key
func (r *BookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	query := `SELECT * FROM booking WHERE idempotency_key = $key LIMIT 1`
	vars := map[string]interface{}{"key": key}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseBookingResult(result)
}

// UpdateStatus sets the booking status
func (r *BookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE type::record($id) SET status = $status, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     id,
		"status": status,
	}

	return r.db.Execute(ctx, query, vars)
}

// All retrieves every booking. Used by the reconciliation sweep.
func (r *BookingRepository) All(ctx context.Context) ([]*model.Booking, error) {
	query := `SELECT * FROM booking ORDER BY created_on, id`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Booking{}, nil
	}

	bookings := make([]*model.Booking, 0, len(rows))
	for _, row := range rows {
		booking, err := parseBookingResult(row)
		if err != nil {
			return nil, err
		}
		if booking != nil {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

// Helper functions

func parseBookingResult(result interface{}) (*model.Booking, error) {
	data, err := unwrapRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}
	for _, field := range []string{"listing_id", "requester_id", "provider_id"} {
		if v, ok := data[field]; ok {
			data[field] = convertSurrealID(v)
		}
	}
	normalizeRecordTimes(data, "created_on", "updated_on")

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	if err := json.Unmarshal(jsonBytes, &booking); err != nil {
		return nil, err
	}

	return &booking, nil
}
