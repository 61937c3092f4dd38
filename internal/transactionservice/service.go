// Package transactionservice manages business logic layer of transactions.
package transactionservice

import (
	"context"

	"github.com/go-petr/ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionRepo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type TransactionRepo interface {
	Balance(ctx context.Context) (domain.Balance, error)
	Count(ctx context.Context) (int64, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error)
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	CreateGuarded(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryRepo provides category access interface needed by transaction service layer.
type CategoryRepo interface {
	GetByTitle(ctx context.Context, title string) (domain.Category, error)
	Create(ctx context.Context, title string) (domain.Category, error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo       TransactionRepo
	categories CategoryRepo
}

// New returns transaction service struct to manage transaction bussines logic.
func New(tr TransactionRepo, cr CategoryRepo) *Service {
	return &Service{
		repo:       tr,
		categories: cr,
	}
}

func (s *Service) validRequest(ctx context.Context, kind, value string) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	if !domain.ValidKind(kind) {
		return decimal.Zero, domain.ErrInvalidKind
	}

	valueDecimal, err := decimal.NewFromString(value)
	if err != nil {
		l.Info().Err(err).Send()
		return decimal.Zero, domain.ErrInvalidValue
	}

	if valueDecimal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidValue
	}

	return valueDecimal, nil
}

// resolveCategory looks the category up by exact title and lazily creates
// it on first reference.
func (s *Service) resolveCategory(ctx context.Context, title string) (domain.Category, error) {
	category, err := s.categories.GetByTitle(ctx, title)
	if err == nil {
		return category, nil
	}

	if err != domain.ErrCategoryNotFound {
		return category, err
	}

	return s.categories.Create(ctx, title)
}

// Create validates the request, enforces the solvency invariant for
// outcome transactions and persists the transaction under the resolved
// category.
func (s *Service) Create(ctx context.Context, title, kind, value, categoryTitle string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	valueDecimal, err := s.validRequest(ctx, kind, value)
	if err != nil {
		return domain.Transaction{}, err
	}

	if kind == domain.KindOutcome {
		balance, err := s.repo.Balance(ctx)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.Transaction{}, err
		}

		total, err := decimal.NewFromString(balance.Total)
		if err != nil {
			l.Error().Err(err).Send()
			return domain.Transaction{}, err
		}

		if total.Sub(valueDecimal).IsNegative() {
			return domain.Transaction{}, domain.ErrInsufficientFunds
		}
	}

	category, err := s.resolveCategory(ctx, categoryTitle)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transaction{}, err
	}

	arg := domain.CreateTransactionParams{
		Title:      title,
		Kind:       kind,
		Value:      value,
		CategoryID: category.ID,
	}

	// The pre-check above only gives a friendly rejection without a write
	// attempt; the guarded insert is what actually holds the invariant
	// under concurrent outcome creations.
	if kind == domain.KindOutcome {
		return s.repo.CreateGuarded(ctx, arg)
	}

	return s.repo.Create(ctx, arg)
}

// Delete removes the transaction with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// List returns one page of transactions together with the derived balance
// and the total transaction count.
func (s *Service) List(ctx context.Context, pageID, pageSize int32) (domain.TransactionPage, error) {
	l := zerolog.Ctx(ctx)

	var page domain.TransactionPage

	limit := pageSize
	offset := (pageID - 1) * pageSize

	transactions, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return page, err
	}

	balance, err := s.repo.Balance(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return page, err
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return page, err
	}

	page.Transactions = transactions
	page.Balance = balance
	page.TotalCount = count

	return page, nil
}
