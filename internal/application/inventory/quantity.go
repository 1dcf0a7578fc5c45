package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// QuantityScale son los decimales admitidos en una cantidad (NUMERIC(14,2)).
const QuantityScale = 2

// ValidateQuantity exige cantidad > 0 con a lo sumo dos decimales.
func ValidateQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return domain.New(domain.KindInvalidInput, "la cantidad debe ser mayor que cero")
	}
	if !q.Equal(q.Round(QuantityScale)) {
		return domain.New(domain.KindInvalidInput, "la cantidad admite como máximo dos decimales")
	}
	return nil
}
