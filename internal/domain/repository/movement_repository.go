package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementRepository define el puerto del Movement Log. Solo admite inserciones.
type MovementRepository interface {
	// Append persiste el movimiento y completa ID y CreatedAt.
	Append(ctx context.Context, movement *entity.Movement) error
	// GetDetails devuelve los movimientos indicados con nombres resueltos, en el orden de ids.
	GetDetails(ctx context.Context, ids []int64) ([]entity.MovementDetail, error)
	ListByPair(ctx context.Context, productID, warehouseID int64) ([]*entity.Movement, error)
}
