package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forgo/handy/api/internal/database"
	"github.com/forgo/handy/api/internal/model"
)

// AccountRepository handles account data access
type AccountRepository struct {
	db database.Database
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db database.Database) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account with empty membership lists
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		CREATE account CONTENT {
			external_id: $external_id,
			username: $username,
			email: $email,
			profile_image: $profile_image,
			listings_owned: [],
			bookings_requested: [],
			bookings_to_fulfill: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"external_id":   account.ExternalID,
		"username":      account.Username,
		"email":         account.Email,
		"profile_image": account.ProfileImage,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: identity or email already registered", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	account.ID = created.ID
	account.CreatedOn = created.CreatedOn
	account.UpdatedOn = created.UpdatedOn
	if account.ListingsOwned == nil {
		account.ListingsOwned = []string{}
	}
	if account.BookingsRequested == nil {
		account.BookingsRequested = []string{}
	}
	if account.BookingsToFulfill == nil {
		account.BookingsToFulfill = []string{}
	}
	return nil
}

// ExistsByIdentityOrEmail reports whether an account is already registered
// under the external identity or the email
func (r *AccountRepository) ExistsByIdentityOrEmail(ctx context.Context, externalID, email string) (bool, error) {
	query := `SELECT count() FROM account WHERE external_id = $external_id OR email = $email GROUP ALL`
	vars := map[string]interface{}{
		"external_id": externalID,
		"email":       email,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return extractCount(result) > 0, nil
}

// GetByID retrieves an account by record ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseAccountResult(result)
}

// GetByExternalID retrieves an account by its external identity
func (r *AccountRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	query := `SELECT * FROM account WHERE external_id = $external_id LIMIT 1`
	vars := map[string]interface{}{"external_id": externalID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseAccountResult(result)
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT * FROM account WHERE email = $email LIMIT 1`
	vars := map[string]interface{}{"email": email}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseAccountResult(result)
}

// AddToList appends an id to one of the account's membership lists.
// array::union makes the write idempotent: re-applying it after a retry
// cannot produce a duplicate entry.
func (r *AccountRepository) AddToList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error {
	field, err := listField(list)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE type::record($id) SET %s = array::union(%s, [$item]), updated_on = time::now()`, field, field)
	vars := map[string]interface{}{
		"id":   accountID,
		"item": itemID,
	}

	return r.db.Execute(ctx, query, vars)
}

// RemoveFromList removes an id from one of the account's membership lists.
// array::complement keeps the write idempotent: removing an id that is not
// present is a no-op, not an error.
func (r *AccountRepository) RemoveFromList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error {
	field, err := listField(list)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE type::record($id) SET %s = array::complement(%s, [$item]), updated_on = time::now()`, field, field)
	vars := map[string]interface{}{
		"id":   accountID,
		"item": itemID,
	}

	return r.db.Execute(ctx, query, vars)
}

// RepairLists applies a set of membership-list corrections in one round
// trip. Every correction is an idempotent single-record write, so a partial
// batch leaves the lists no worse than before and the next sweep finishes
// the job.
func (r *AccountRepository) RepairLists(ctx context.Context, repairs []model.ListRepair) error {
	if len(repairs) == 0 {
		return nil
	}

	batch := database.NewBatch()
	for _, repair := range repairs {
		field, err := listField(repair.List)
		if err != nil {
			return err
		}

		add := repair.Add
		if add == nil {
			add = []string{}
		}
		remove := repair.Remove
		if remove == nil {
			remove = []string{}
		}

		query := fmt.Sprintf(`UPDATE type::record($id) SET %s = array::complement(array::union(%s, $add), $remove), updated_on = time::now()`, field, field)
		batch.Add(query, map[string]interface{}{
			"id":     repair.AccountID,
			"add":    add,
			"remove": remove,
		})
	}

	return batch.Execute(ctx, r.db)
}

// All retrieves every account. Used by the reconciliation sweep.
func (r *AccountRepository) All(ctx context.Context) ([]*model.Account, error) {
	query := `SELECT * FROM account ORDER BY created_on, id`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return []*model.Account{}, nil
	}

	accounts := make([]*model.Account, 0, len(rows))
	for _, row := range rows {
		account, err := parseAccountResult(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// listField maps a membership list name to its account field
func listField(list model.MembershipList) (string, error) {
	switch list {
	case model.ListListingsOwned:
		return "listings_owned", nil
	case model.ListBookingsRequested:
		return "bookings_requested", nil
	case model.ListBookingsToFulfill:
		return "bookings_to_fulfill", nil
	}
	return "", fmt.Errorf("unknown membership list %q", list)
}

// Helper functions

type createdRecord struct {
	ID        string
	CreatedOn time.Time
	UpdatedOn time.Time
}

func extractCreatedRecord(result []interface{}) (*createdRecord, error) {
	if len(result) == 0 {
		return nil, errors.New("no result returned")
	}

	// Navigate through SurrealDB response structure
	first := result[0]
	if resp, ok := first.(map[string]interface{}); ok {
		if resultData, ok := resp["result"].([]interface{}); ok && len(resultData) > 0 {
			first = resultData[0]
		}
	}

	data, ok := first.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	record := &createdRecord{}
	if id, ok := data["id"]; ok {
		record.ID = convertSurrealID(id)
	}
	record.CreatedOn = parseTime(data["created_on"])
	record.UpdatedOn = parseTime(data["updated_on"])

	return record, nil
}

func parseAccountResult(result interface{}) (*model.Account, error) {
	data, err := unwrapRecord(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Handle SurrealDB 3 record ID format
	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}
	normalizeRecordTimes(data, "created_on", "updated_on")

	// Membership lists may reference records by RecordID objects
	for _, field := range []string{"listings_owned", "bookings_requested", "bookings_to_fulfill"} {
		if _, ok := data[field]; ok {
			data[field] = getStringSlice(data, field)
		}
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(jsonBytes, &account); err != nil {
		return nil, err
	}

	if account.ListingsOwned == nil {
		account.ListingsOwned = []string{}
	}
	if account.BookingsRequested == nil {
		account.BookingsRequested = []string{}
	}
	if account.BookingsToFulfill == nil {
		account.BookingsToFulfill = []string{}
	}

	return &account, nil
}

// unwrapRecord peels the SurrealDB response wrappers off a single record
func unwrapRecord(result interface{}) (map[string]interface{}, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok {
				if len(resultData) == 0 {
					return nil, database.ErrNotFound
				}
				result = resultData[0]
			}
		}
	}

	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, database.ErrNotFound
		}
		result = arr[0]
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}
	return data, nil
}
