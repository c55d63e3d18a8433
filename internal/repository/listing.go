package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/forgo/handy/api/internal/database"
	"github.com/forgo/handy/api/internal/model"
)

// ListingRepository handles listing data access
type ListingRepository struct {
	db database.Database
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db database.Database) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create creates a new listing
func (r *ListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	query := `
		CREATE listing CONTENT {
			owner_id: $owner_id,
			name: $name,
			description: $description,
			area: $area,
			price: $price,
			image_url: $image_url,
			provider_name: $provider_name,
			provider_email: $provider_email,
			provider_image: $provider_image,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"owner_id":       listing.OwnerID,
		"name":           listing.Name,
		"description":    listing.Description,
		"area":           listing.Area,
		"price":          listing.Price,
		"image_url":      listing.ImageURL,
		"provider_name":  listing.ProviderName,
		"provider_email": listing.ProviderEmail,
		"provider_image": listing.ProviderImage,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	listing.ID = created.ID
	listing.CreatedOn = created.CreatedOn
	listing.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a listing by record ID
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseListingResult(result)
}

// List retrieves a deterministic page of the catalog. Ordering is by
// creation time with record id as a tiebreaker so repeated reads of the
// same page agree.
func (r *ListingRepository) List(ctx context.Context, limit, start int) ([]*model.Listing, error) {
	query := `SELECT * FROM listing ORDER BY created_on, id LIMIT $limit START $start`
	vars := map[string]interface{}{
		"limit": limit,
		"start": start,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return parseListingRows(result)
}

// Count returns the total number of listings
func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT count() FROM listing GROUP ALL`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

// Search retrieves listings whose name contains the query, case-insensitively
func (r *ListingRepository) Search(ctx context.Context, text string) ([]*model.Listing, error) {
	query := `
		SELECT * FROM listing
		WHERE string::contains(string::lowercase(name), string::lowercase($text))
		ORDER BY created_on, id
	`
	vars := map[string]interface{}{"text": text}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return parseListingRows(result)
}

// Featured retrieves the newest listings for the landing page
func (r *ListingRepository) Featured(ctx context.Context, limit int) ([]*model.Listing, error) {
	query := `SELECT * FROM listing ORDER BY created_on DESC, id LIMIT $limit`
	vars := map[string]interface{}{"limit": limit}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return parseListingRows(result)
}

// Update replaces the mutable fields of a listing. This is a full replace,
// not a merge; omitted fields are overwritten with the supplied values.
func (r *ListingRepository) Update(ctx context.Context, id string, fields *model.ListingFields) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			description = $description,
			area = $area,
			price = $price,
			image_url = $image_url,
			updated_on = time::now()
	`

	vars := map[string]interface{}{
		"id":          id,
		"name":        fields.Name,
		"description": fields.Description,
		"area":        fields.Area,
		"price":       fields.Price,
		"image_url":   fields.ImageURL,
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete deletes a listing
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE type::record($id)`
	vars := map[string]interface{}{"id": id}

	return r.db.Execute(ctx, query, vars)
}

// All retrieves every listing. Used by the reconciliation sweep.
func (r *ListingRepository) All(ctx context.Context) ([]*model.Listing, error) {
	query := `SELECT * FROM listing ORDER BY created_on, id`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return parseListingRows(result)
}

// Helper functions

func parseListingRows(result []interface{}) ([]*model.Listing, error) {
	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Listing{}, nil
	}

	listings := make([]*model.Listing, 0, len(rows))
	for _, row := range rows {
		listing, err := parseListingResult(row)
		if err != nil {
			return nil, err
		}
		if listing != nil {
			listings = append(listings, listing)
		}
	}
	return listings, nil
}

func parseListingResult(result interface{}) (*model.Listing, error) {
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
	if ownerID, ok := data["owner_id"]; ok {
		data["owner_id"] = convertSurrealID(ownerID)
	}
	normalizeRecordTimes(data, "created_on", "updated_on")

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var listing model.Listing
	if err := json.Unmarshal(jsonBytes, &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}
