package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BalanceRepository define el puerto del Balance Store (existencia por producto+bodega).
// Se usa dentro de transacciones para garantizar consistencia.
type BalanceRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Devuelve nil si el par no tiene fila.
	GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error)
	// EnsureForUpdate crea la fila en cero si no existe y la devuelve bloqueada.
	EnsureForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error)
	// Update escribe la nueva cantidad de una fila existente.
	Update(ctx context.Context, balance *entity.Balance) error
	Get(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error)
}
