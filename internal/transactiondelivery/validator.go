package transactiondelivery

import (
	"github.com/go-petr/ledger/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidKind validates whether the transaction kind is income or outcome.
var ValidKind validator.Func = func(fl validator.FieldLevel) bool {
	if k, ok := fl.Field().Interface().(string); ok {
		return domain.ValidKind(k)
	}
	return false
}
