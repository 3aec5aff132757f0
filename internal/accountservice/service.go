// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/securebank/bank-api/internal/accountlock"
	"github.com/securebank/bank-api/internal/domain"
	"github.com/securebank/bank-api/pkg/moneypkg"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	GetByNumber(ctx context.Context, number string) (domain.Account, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error)
	Delete(ctx context.Context, id int64) error
}

// Service facilitates account business logic.
type Service struct {
	repo  Repo
	locks *accountlock.Registry
}

// New returns account service struct to manage account business logic.
func New(ar Repo, locks *accountlock.Registry) *Service {
	return &Service{repo: ar, locks: locks}
}

// newAccountNumber generates a unique human-readable account number.
func newAccountNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ACC" + id[:12]
}

// Create opens an account with a generated account number and the given
// opening balance.
func (s *Service) Create(ctx context.Context, holderName, email, accountType string, opening moneypkg.Money) (domain.Account, error) {
	account, err := s.repo.Create(ctx, domain.CreateAccountParams{
		Number:     newAccountNumber(),
		HolderName: holderName,
		Email:      email,
		Balance:    opening,
		Type:       accountType,
	})
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns the account with the given account number.
func (s *Service) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns the requested page of accounts.
func (s *Service) List(ctx context.Context, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.repo.List(ctx, limit, offset)
}

// Count returns the total number of accounts.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Update changes the account's holder details.
func (s *Service) Update(ctx context.Context, arg domain.UpdateAccountParams) (domain.Account, error) {
	return s.repo.Update(ctx, arg)
}

// Delete removes the account with the given id and drops its lock handle.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.locks.Forget(id)

	return nil
}
