package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ExitOrderRepository define el puerto de persistencia de órdenes de salida.
type ExitOrderRepository interface {
	// Create persiste la orden y completa ID y CreatedAt.
	Create(ctx context.Context, order *entity.ExitOrder) error
	// GetByID devuelve nil, nil si la orden no existe.
	GetByID(ctx context.Context, id int64) (*entity.ExitOrder, error)
	// GetByIDForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.ExitOrder, error)
	// List devuelve las órdenes visibles en el alcance, más recientes primero.
	List(ctx context.Context, scope entity.Scope) ([]*entity.ExitOrder, error)
	// SaveSignature sobrescribe firma y documento firmado. domain.ErrNotFound si no existe.
	SaveSignature(ctx context.Context, id int64, signature []byte, signedDocumentRef string) error
}
