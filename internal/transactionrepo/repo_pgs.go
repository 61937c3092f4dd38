// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-petr/ledger/internal/domain"
	"github.com/go-petr/ledger/pkg/dbpkg"
	"github.com/go-petr/ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const balanceQuery = `
SELECT
	COALESCE(SUM(value) FILTER (WHERE kind = 'income'), 0),
	COALESCE(SUM(value) FILTER (WHERE kind = 'outcome'), 0)
FROM transactions
`

// Balance aggregates all transactions grouped by kind.
// Zero stored transactions yields the all-zero balance.
func (r *RepoPGS) Balance(ctx context.Context) (domain.Balance, error) {
	l := zerolog.Ctx(ctx)

	var b domain.Balance

	row := r.db.QueryRowContext(ctx, balanceQuery)

	if err := row.Scan(&b.Income, &b.Outcome); err != nil {
		l.Error().Err(err).Send()
		return b, errorspkg.ErrInternal
	}

	income, err := decimal.NewFromString(b.Income)
	if err != nil {
		l.Error().Err(err).Send()
		return b, errorspkg.ErrInternal
	}

	outcome, err := decimal.NewFromString(b.Outcome)
	if err != nil {
		l.Error().Err(err).Send()
		return b, errorspkg.ErrInternal
	}

	b.Total = income.Sub(outcome).String()

	return b, nil
}

const countQuery = `
SELECT COUNT(*) FROM transactions
`

// Count returns the total number of stored transactions.
func (r *RepoPGS) Count(ctx context.Context) (int64, error) {
	l := zerolog.Ctx(ctx)

	var count int64

	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return count, nil
}

const transactionColumns = `t.id, t.title, t.kind, t.value, t.category_id, c.title, t.created_at, t.updated_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Kind,
		&t.Value,
		&t.CategoryID,
		&t.Category,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	return t, err
}

const getQuery = `
SELECT ` + transactionColumns + `
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.id = $1 LIMIT 1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT ` + transactionColumns + `
FROM transactions t
JOIN categories c ON c.id = t.category_id
ORDER BY t.id
LIMIT $1 OFFSET $2
`

// List returns the specified page of transactions in insertion order.
func (r *RepoPGS) List(ctx context.Context, limit, offset int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const createQuery = `
WITH inserted AS (
	INSERT INTO
	    transactions (title, kind, value, category_id)
	VALUES
	    ($1, $2, $3, $4)
	RETURNING id, title, kind, value, category_id, created_at, updated_at
)
SELECT t.id, t.title, t.kind, t.value, t.category_id, c.title, t.created_at, t.updated_at
FROM inserted t
JOIN categories c ON c.id = t.category_id
`

// Create creates the transaction and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.Title, arg.Kind, arg.Value, arg.CategoryID)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_category_id_fkey":
				return t, domain.ErrCategoryNotFound
			case "transactions_kind_check":
				return t, domain.ErrInvalidKind
			case "transactions_value_check":
				return t, domain.ErrInvalidValue
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const createGuardedQuery = `
WITH inserted AS (
	INSERT INTO
	    transactions (title, kind, value, category_id)
	SELECT $1, $2, $3::numeric, $4
	WHERE (
		SELECT COALESCE(SUM(CASE WHEN kind = 'income' THEN value ELSE -value END), 0)
		FROM transactions
	) >= $3::numeric
	RETURNING id, title, kind, value, category_id, created_at, updated_at
)
SELECT t.id, t.title, t.kind, t.value, t.category_id, c.title, t.created_at, t.updated_at
FROM inserted t
JOIN categories c ON c.id = t.category_id
`

// CreateGuarded inserts an outcome transaction only if the resulting total
// balance stays non negative. The check and the write run as one statement
// so concurrent outcome creations cannot overdraw the ledger.
func (r *RepoPGS) CreateGuarded(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createGuardedQuery, arg.Title, arg.Kind, arg.Value, arg.CategoryID)

	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, domain.ErrInsufficientFunds
		}

		l.Error().Err(err).Send()

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

// CreateBatch inserts all given transactions in a single round-trip and
// returns the stored rows with assigned identifiers.
func (r *RepoPGS) CreateBatch(ctx context.Context, args []domain.CreateTransactionParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if len(args) == 0 {
		return []domain.Transaction{}, nil
	}

	var sb strings.Builder

	sb.WriteString("WITH inserted AS (INSERT INTO transactions (title, kind, value, category_id) VALUES ")

	queryArgs := make([]interface{}, 0, len(args)*4)

	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}

		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
		queryArgs = append(queryArgs, arg.Title, arg.Kind, arg.Value, arg.CategoryID)
	}

	sb.WriteString(" RETURNING id, title, kind, value, category_id, created_at, updated_at) ")
	sb.WriteString("SELECT t.id, t.title, t.kind, t.value, t.category_id, c.title, t.created_at, t.updated_at ")
	sb.WriteString("FROM inserted t JOIN categories c ON c.id = t.category_id ORDER BY t.id")

	rows, err := r.db.QueryContext(ctx, sb.String(), queryArgs...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const deleteQuery = `
DELETE FROM transactions
WHERE id = $1
`

// Delete removes the transaction with the given id.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}
