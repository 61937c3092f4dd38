package transactionservice

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/ledger/internal/domain"
	"github.com/go-petr/ledger/pkg/errorspkg"
	"github.com/go-petr/ledger/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func testCategory(id int64, title string) domain.Category {
	return domain.Category{
		ID:        id,
		Title:     title,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
		UpdatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func testTransaction(id int64, title, kind, value string, category domain.Category) domain.Transaction {
	return domain.Transaction{
		ID:         id,
		Title:      title,
		Kind:       kind,
		Value:      value,
		CategoryID: category.ID,
		Category:   category.Title,
		CreatedAt:  time.Now().Truncate(time.Second).UTC(),
		UpdatedAt:  time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	category := testCategory(1, randompkg.Title())
	title := randompkg.Title()

	incomeTransaction := testTransaction(1, title, domain.KindIncome, "5000", category)
	outcomeTransaction := testTransaction(2, title, domain.KindOutcome, "1200", category)

	type input struct {
		title    string
		kind     string
		value    string
		category string
	}

	testCases := []struct {
		name          string
		input         input
		buildStubs    func(repo *MockTransactionRepo, categories *MockCategoryRepo)
		checkResponse func(res domain.Transaction, err error)
	}{
		{
			name:  "InvalidKind",
			input: input{title, "transfer", "100", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Balance(gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().CreateGuarded(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidKind)
			},
		},
		{
			name:  "UnparsableValue",
			input: input{title, domain.KindIncome, "!@#$", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidValue)
			},
		},
		{
			name:  "NegativeValue",
			input: input{title, domain.KindOutcome, "-100", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Balance(gomock.Any()).Times(0)
				repo.EXPECT().CreateGuarded(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInvalidValue)
			},
		},
		{
			name:  "InsufficientFunds",
			input: input{title, domain.KindOutcome, "1200", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Balance(gomock.Any()).
					Times(1).
					Return(domain.Balance{Income: "1000", Outcome: "0", Total: "1000"}, nil)
				categories.EXPECT().GetByTitle(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().CreateGuarded(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			},
		},
		{
			name:  "BalanceError",
			input: input{title, domain.KindOutcome, "1200", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Balance(gomock.Any()).
					Times(1).
					Return(domain.Balance{}, errorspkg.ErrInternal)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
		{
			name:  "IncomeWithExistingCategory",
			input: input{title, domain.KindIncome, "5000", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				// Income never consults the balance.
				repo.EXPECT().Balance(gomock.Any()).Times(0)
				categories.EXPECT().GetByTitle(gomock.Any(), gomock.Eq(category.Title)).
					Times(1).
					Return(category, nil)
				categories.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().Create(gomock.Any(), gomock.Eq(domain.CreateTransactionParams{
					Title:      title,
					Kind:       domain.KindIncome,
					Value:      "5000",
					CategoryID: category.ID,
				})).
					Times(1).
					Return(incomeTransaction, nil)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, incomeTransaction, res)
			},
		},
		{
			name:  "IncomeCreatesMissingCategory",
			input: input{title, domain.KindIncome, "5000", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				categories.EXPECT().GetByTitle(gomock.Any(), gomock.Eq(category.Title)).
					Times(1).
					Return(domain.Category{}, domain.ErrCategoryNotFound)
				categories.EXPECT().Create(gomock.Any(), gomock.Eq(category.Title)).
					Times(1).
					Return(category, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(incomeTransaction, nil)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, incomeTransaction, res)
			},
		},
		{
			name:  "OutcomeUsesGuardedInsert",
			input: input{title, domain.KindOutcome, "1200", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Balance(gomock.Any()).
					Times(1).
					Return(domain.Balance{Income: "5000", Outcome: "0", Total: "5000"}, nil)
				categories.EXPECT().GetByTitle(gomock.Any(), gomock.Eq(category.Title)).
					Times(1).
					Return(category, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				repo.EXPECT().CreateGuarded(gomock.Any(), gomock.Eq(domain.CreateTransactionParams{
					Title:      title,
					Kind:       domain.KindOutcome,
					Value:      "1200",
					CategoryID: category.ID,
				})).
					Times(1).
					Return(outcomeTransaction, nil)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, outcomeTransaction, res)
			},
		},
		{
			name:  "OutcomeExactBalanceAllowed",
			input: input{title, domain.KindOutcome, "1200", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				repo.EXPECT().Balance(gomock.Any()).
					Times(1).
					Return(domain.Balance{Income: "1200", Outcome: "0", Total: "1200"}, nil)
				categories.EXPECT().GetByTitle(gomock.Any(), gomock.Any()).
					Times(1).
					Return(category, nil)
				repo.EXPECT().CreateGuarded(gomock.Any(), gomock.Any()).
					Times(1).
					Return(outcomeTransaction, nil)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.NoError(t, err)
				require.Equal(t, outcomeTransaction, res)
			},
		},
		{
			name:  "CategoryRepoError",
			input: input{title, domain.KindIncome, "5000", category.Title},
			buildStubs: func(repo *MockTransactionRepo, categories *MockCategoryRepo) {
				categories.EXPECT().GetByTitle(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Category{}, errorspkg.ErrInternal)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(res domain.Transaction, err error) {
				require.Empty(t, res)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockTransactionRepo(ctrl)
			categories := NewMockCategoryRepo(ctrl)
			service := New(repo, categories)

			tc.buildStubs(repo, categories)

			res, err := service.Create(context.Background(), tc.input.title, tc.input.kind, tc.input.value, tc.input.category)

			tc.checkResponse(res, err)
		})
	}
}

func TestDelete(t *testing.T) {
	category := testCategory(1, randompkg.Title())
	transaction := testTransaction(1, randompkg.Title(), domain.KindIncome, "100", category)

	testCases := []struct {
		name       string
		id         int64
		buildStubs func(repo *MockTransactionRepo)
		wantErr    error
	}{
		{
			name: "OK",
			id:   transaction.ID,
			buildStubs: func(repo *MockTransactionRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(transaction.ID)).
					Times(1).
					Return(transaction, nil)
				repo.EXPECT().Delete(gomock.Any(), gomock.Eq(transaction.ID)).
					Times(1).
					Return(nil)
			},
		},
		{
			name: "NotFound",
			id:   404,
			buildStubs: func(repo *MockTransactionRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(int64(404))).
					Times(1).
					Return(domain.Transaction{}, domain.ErrTransactionNotFound)
				repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantErr: domain.ErrTransactionNotFound,
		},
		{
			name: "DeleteError",
			id:   transaction.ID,
			buildStubs: func(repo *MockTransactionRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Times(1).
					Return(transaction, nil)
				repo.EXPECT().Delete(gomock.Any(), gomock.Any()).
					Times(1).
					Return(errorspkg.ErrInternal)
			},
			wantErr: errorspkg.ErrInternal,
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockTransactionRepo(ctrl)
			service := New(repo, NewMockCategoryRepo(ctrl))

			tc.buildStubs(repo)

			err := service.Delete(context.Background(), tc.id)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestList(t *testing.T) {
	category := testCategory(1, randompkg.Title())
	transactions := []domain.Transaction{
		testTransaction(1, randompkg.Title(), domain.KindIncome, "5000", category),
		testTransaction(2, randompkg.Title(), domain.KindOutcome, "1200", category),
	}
	balance := domain.Balance{Income: "5000", Outcome: "1200", Total: "3800"}

	testCases := []struct {
		name          string
		pageID        int32
		pageSize      int32
		buildStubs    func(repo *MockTransactionRepo)
		checkResponse func(page domain.TransactionPage, err error)
	}{
		{
			name:     "OK",
			pageID:   2,
			pageSize: 5,
			buildStubs: func(repo *MockTransactionRepo) {
				repo.EXPECT().List(gomock.Any(), gomock.Eq(int32(5)), gomock.Eq(int32(5))).
					Times(1).
					Return(transactions, nil)
				repo.EXPECT().Balance(gomock.Any()).
					Times(1).
					Return(balance, nil)
				repo.EXPECT().Count(gomock.Any()).
					Times(1).
					Return(int64(12), nil)
			},
			checkResponse: func(page domain.TransactionPage, err error) {
				require.NoError(t, err)
				require.Equal(t, transactions, page.Transactions)
				require.Equal(t, balance, page.Balance)
				require.Equal(t, int64(12), page.TotalCount)
			},
		},
		{
			name:     "ListError",
			pageID:   1,
			pageSize: 10,
			buildStubs: func(repo *MockTransactionRepo) {
				repo.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(nil, errorspkg.ErrInternal)
				repo.EXPECT().Balance(gomock.Any()).Times(0)
			},
			checkResponse: func(page domain.TransactionPage, err error) {
				require.Empty(t, page)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
		{
			name:     "CountError",
			pageID:   1,
			pageSize: 10,
			buildStubs: func(repo *MockTransactionRepo) {
				repo.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(transactions, nil)
				repo.EXPECT().Balance(gomock.Any()).
					Times(1).
					Return(balance, nil)
				repo.EXPECT().Count(gomock.Any()).
					Times(1).
					Return(int64(0), errorspkg.ErrInternal)
			},
			checkResponse: func(page domain.TransactionPage, err error) {
				require.Empty(t, page)
				require.ErrorIs(t, err, errorspkg.ErrInternal)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockTransactionRepo(ctrl)
			service := New(repo, NewMockCategoryRepo(ctrl))

			tc.buildStubs(repo)

			page, err := service.List(context.Background(), tc.pageID, tc.pageSize)

			tc.checkResponse(page, err)
		})
	}
}
