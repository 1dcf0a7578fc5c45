package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance es la existencia actual de un producto en una bodega (una fila por par).
// Solo el motor de movimientos la modifica.
type Balance struct {
	ProductID   int64
	WarehouseID int64
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
