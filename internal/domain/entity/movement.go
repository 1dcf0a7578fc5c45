package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType es el sentido de un movimiento.
type MovementType string

// Tipos de movimiento.
const (
	MovementEntry MovementType = "ENTRY"
	MovementExit  MovementType = "EXIT"
)

// Valid indica si t es un tipo conocido.
func (t MovementType) Valid() bool {
	return t == MovementEntry || t == MovementExit
}

// Movement es el registro inmutable de un cambio de existencia.
// Quantity siempre es positiva; el sentido lo da Type.
type Movement struct {
	ID               int64
	BatchID          string
	ProductID        int64
	WarehouseID      int64
	UserID           *int64
	Type             MovementType
	Quantity         decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Description      string
	CreatedAt        time.Time
}

// Consistent verifica que los saldos antes/después cuadren con el tipo y la cantidad.
func (m *Movement) Consistent() bool {
	if !m.Quantity.IsPositive() {
		return false
	}
	switch m.Type {
	case MovementEntry:
		return m.NewQuantity.Equal(m.PreviousQuantity.Add(m.Quantity))
	case MovementExit:
		return m.NewQuantity.Equal(m.PreviousQuantity.Sub(m.Quantity)) && !m.NewQuantity.IsNegative()
	}
	return false
}

// MovementDetail es un movimiento enriquecido con los nombres vigentes al leerlo.
type MovementDetail struct {
	Movement
	ProductName   string
	ProductUnit   string
	WarehouseName string
	UserName      string
}
