package service

import (
	"context"

	"github.com/forgo/handy/api/internal/model"
)

// AccountRepository defines the interface for account storage
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	ExistsByIdentityOrEmail(ctx context.Context, externalID, email string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	AddToList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error
	RemoveFromList(ctx context.Context, accountID string, list model.MembershipList, itemID string) error
	RepairLists(ctx context.Context, repairs []model.ListRepair) error
	All(ctx context.Context) ([]*model.Account, error)
}

// AccountService handles account registration and lookup
type AccountService struct {
	accounts AccountRepository
}

// AccountServiceConfig holds configuration for the account service
type AccountServiceConfig struct {
	Accounts AccountRepository
}

// NewAccountService creates a new account service
func NewAccountService(cfg AccountServiceConfig) *AccountService {
	return &AccountService{
		accounts: cfg.Accounts,
	}
}

// Register creates a new account with empty membership lists. The existence
// check covers both the external identity and the email so neither can be
// claimed twice.
func (s *AccountService) Register(ctx context.Context, req *model.RegisterAccountRequest) (*model.Account, error) {
	exists, err := s.accounts.ExistsByIdentityOrEmail(ctx, req.ExternalID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountExists
	}

	account := &model.Account{
		ExternalID:   req.ExternalID,
		Username:     req.Username,
		Email:        req.Email,
		ProfileImage: req.ProfileImage,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// RegisterProvider registers an account on the identity-provider path.
// Unlike Register, re-registering the same external identity returns the
// existing account so the provider flow is safe to repeat. A different
// identity claiming a registered email still conflicts.
func (s *AccountService) RegisterProvider(ctx context.Context, req *model.RegisterAccountRequest) (*model.Account, error) {
	existing, err := s.accounts.GetByExternalID(ctx, req.ExternalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	exists, err := s.accounts.ExistsByIdentityOrEmail(ctx, req.ExternalID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountExists
	}

	account := &model.Account{
		ExternalID:   req.ExternalID,
		Username:     req.Username,
		Email:        req.Email,
		ProfileImage: req.ProfileImage,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetByID retrieves an account by record ID
func (s *AccountService) GetByID(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetByExternalID retrieves an account by its external identity
func (s *AccountService) GetByExternalID(ctx context.Context, externalID string) (*model.Account, error) {
	account, err := s.accounts.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
