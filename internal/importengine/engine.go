// Package importengine ingests batches of transactions from CSV feeds.
package importengine

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/go-petr/ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionRepo provides batch persistence interface needed by the import engine.
//
//go:generate mockgen -source engine.go -destination engine_mock.go -package importengine
type TransactionRepo interface {
	CreateBatch(ctx context.Context, args []domain.CreateTransactionParams) ([]domain.Transaction, error)
}

// CategoryRepo provides category access interface needed by the import engine.
type CategoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
	CreateBatch(ctx context.Context, titles []string) ([]domain.Category, error)
}

// Engine facilitates bulk import of transactions from uploaded CSV files.
type Engine struct {
	repo       TransactionRepo
	categories CategoryRepo
}

// New returns an import engine backed by the given repositories.
func New(tr TransactionRepo, cr CategoryRepo) *Engine {
	return &Engine{
		repo:       tr,
		categories: cr,
	}
}

// Row is one surviving CSV record.
type Row struct {
	Title    string
	Kind     string
	Value    string
	Category string
}

// Parse reads the whole CSV source with columns title, kind, value,
// category. The header row is skipped, fields are trimmed, and rows with a
// missing title, kind or value, an unknown kind or an unparsable value are
// silently dropped. It returns the surviving rows and the raw sequence of
// referenced category titles, duplicates retained.
func Parse(r io.Reader) ([]Row, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := []Row{}
	categories := []string{}
	header := true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, nil, err
		}

		if header {
			header = false
			continue
		}

		if len(record) < 4 {
			continue
		}

		row := Row{
			Title:    strings.TrimSpace(record[0]),
			Kind:     strings.TrimSpace(record[1]),
			Value:    strings.TrimSpace(record[2]),
			Category: strings.TrimSpace(record[3]),
		}

		if row.Title == "" || row.Kind == "" || row.Value == "" {
			continue
		}

		if !domain.ValidKind(row.Kind) {
			continue
		}

		value, err := decimal.NewFromString(row.Value)
		if err != nil || value.IsNegative() {
			continue
		}

		categories = append(categories, row.Category)
		rows = append(rows, row)
	}

	return rows, categories, nil
}

// newTitles reduces the raw title sequence to its distinct values and
// subtracts the titles already present in the store, preserving first
// occurrence order.
func newTitles(titles []string, existing []domain.Category) []string {
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.Title] = true
	}

	distinct := []string{}

	for _, title := range titles {
		if known[title] {
			continue
		}

		known[title] = true
		distinct = append(distinct, title)
	}

	return distinct
}

// Import ingests the CSV file at filePath: it parses all rows, persists
// the newly referenced categories in one batch, persists all surviving
// rows in one batch insert and removes the source file. On any failure the
// source file is kept for manual intervention.
func (e *Engine) Import(ctx context.Context, filePath string) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	f, err := os.Open(filePath)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, err
	}

	rows, titles, err := Parse(f)
	f.Close()

	if err != nil {
		l.Error().Err(err).Send()
		return nil, err
	}

	existing, err := e.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	created, err := e.categories.CreateBatch(ctx, newTitles(titles, existing))
	if err != nil {
		return nil, err
	}

	// Candidate pool: newly created categories first, then the
	// previously existing ones. First title match wins.
	byTitle := make(map[string]int64, len(created)+len(existing))

	for _, c := range append(created, existing...) {
		if _, ok := byTitle[c.Title]; !ok {
			byTitle[c.Title] = c.ID
		}
	}

	args := make([]domain.CreateTransactionParams, 0, len(rows))

	for _, row := range rows {
		args = append(args, domain.CreateTransactionParams{
			Title:      row.Title,
			Kind:       row.Kind,
			Value:      row.Value,
			CategoryID: byTitle[row.Category],
		})
	}

	transactions, err := e.repo.CreateBatch(ctx, args)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(filePath); err != nil {
		l.Warn().Err(err).Str("file", filePath).Msg("cannot remove import source")
	}

	return transactions, nil
}
