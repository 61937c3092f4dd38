package domain

import (
	"errors"
	"time"
)

// ErrCategoryNotFound indicates that the category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// Category holds a named grouping of transactions, created on demand.
type Category struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
