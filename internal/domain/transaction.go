// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

// Transaction kinds.
const (
	KindIncome  = "income"
	KindOutcome = "outcome"
)

var (
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInsufficientFunds indicates that an outcome transaction would drive the total balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds for this transaction")
	// ErrInvalidKind indicates a kind other than income or outcome.
	ErrInvalidKind = errors.New("invalid transaction kind")
	// ErrInvalidValue indicates a value that is not a positive number.
	ErrInvalidValue = errors.New("invalid transaction value")
)

// Transaction holds a single ledger record of income or outcome.
type Transaction struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Kind       string    `json:"kind"`
	Value      string    `json:"value"` // non-negative decimal string
	CategoryID int64     `json:"category_id"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateTransactionParams is the input data for creating a transaction.
type CreateTransactionParams struct {
	Title      string
	Kind       string
	Value      string
	CategoryID int64
}

// TransactionPage holds one page of transactions together with the
// derived balance and the total transaction count.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Balance      Balance       `json:"balance"`
	TotalCount   int64         `json:"-"`
}

// ValidKind returns true if kind is income or outcome.
func ValidKind(kind string) bool {
	return kind == KindIncome || kind == KindOutcome
}
