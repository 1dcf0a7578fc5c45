package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
}

// WriteAuthorizer es el contrato del Permission Gate que necesita el motor.
type WriteAuthorizer interface {
	AuthorizeWrite(ctx context.Context, p entity.Principal, warehouseID int64) error
}

// Observer recibe los resultados del motor (métricas). Puede ser nil.
type Observer interface {
	MovementsRecorded(t entity.MovementType, n int)
	OperationRejected(op string, err error)
}

type nopObserver struct{}

func (nopObserver) MovementsRecorded(entity.MovementType, int) {}
func (nopObserver) OperationRejected(string, error)            {}
