// Package categoryrepo manages repository layer of categories.
package categoryrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-petr/ledger/internal/domain"
	"github.com/go-petr/ledger/pkg/dbpkg"
	"github.com/go-petr/ledger/pkg/errorspkg"

	"github.com/rs/zerolog"
)

// RepoPGS facilitates category repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns category RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const getByTitleQuery = `
SELECT id, title, created_at, updated_at FROM categories
WHERE title = $1 LIMIT 1
`

// GetByTitle returns the category with the given title.
func (r *RepoPGS) GetByTitle(ctx context.Context, title string) (domain.Category, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getByTitleQuery, title)

	var c domain.Category

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return c, domain.ErrCategoryNotFound
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const listQuery = `
SELECT id, title, created_at, updated_at FROM categories
ORDER BY id
`

// List returns all categories.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Category, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Category{}

	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const createQuery = `
INSERT INTO
    categories (title)
VALUES
    ($1)
ON CONFLICT (title) DO NOTHING
RETURNING id, title, created_at, updated_at
`

// Create creates the category with the given title and then returns it.
// If a concurrent creator wins the title race the existing category is
// read back and returned instead.
func (r *RepoPGS) Create(ctx context.Context, title string) (domain.Category, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, title)

	var c domain.Category

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return r.GetByTitle(ctx, title)
		}

		l.Error().Err(err).Send()

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

// CreateBatch creates all given categories in a single round-trip and
// returns the created rows. Titles already present are left untouched and
// are not returned.
func (r *RepoPGS) CreateBatch(ctx context.Context, titles []string) ([]domain.Category, error) {
	l := zerolog.Ctx(ctx)

	if len(titles) == 0 {
		return []domain.Category{}, nil
	}

	var sb strings.Builder

	sb.WriteString("INSERT INTO categories (title) VALUES ")

	args := make([]interface{}, 0, len(titles))

	for i, title := range titles {
		if i > 0 {
			sb.WriteString(", ")
		}

		fmt.Fprintf(&sb, "($%d)", i+1)
		args = append(args, title)
	}

	sb.WriteString(" ON CONFLICT (title) DO NOTHING RETURNING id, title, created_at, updated_at")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Category{}

	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
