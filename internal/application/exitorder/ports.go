package exitorder

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ExitDocument datos que se imprimen en la orden de salida.
type ExitDocument struct {
	Number         int64 // número de OS (ID del primer movimiento)
	ClientName     string
	ClientDocument string
	Declaration    string
	OperatorName   string
	Items          entity.ItemsSnapshot
	IssuedAt       time.Time
}

// DocumentFromOrder reconstruye el documento a partir de la orden persistida (snapshot, no datos vivos).
func DocumentFromOrder(o *entity.ExitOrder) ExitDocument {
	return ExitDocument{
		Number:         o.MovementID,
		ClientName:     o.ClientName,
		ClientDocument: o.ClientDocument,
		Declaration:    o.Declaration,
		OperatorName:   o.OperatorName,
		Items:          o.Items,
		IssuedAt:       o.CreatedAt,
	}
}

// DocumentRenderer genera y guarda el documento de una orden. Devuelve la referencia almacenada.
type DocumentRenderer interface {
	Render(ctx context.Context, doc ExitDocument) (string, error)
	// RenderSigned vuelve a generar el documento con la firma embebida.
	// Llamarlo dos veces sobre la misma orden sobrescribe el documento firmado.
	RenderSigned(ctx context.Context, order *entity.ExitOrder, sig Signature) (string, error)
}

// DocumentStore resuelve referencias de documento a URL y contenido.
type DocumentStore interface {
	URL(ctx context.Context, ref string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

// BatchApplier es la parte del motor de movimientos que usa el despacho.
type BatchApplier interface {
	CheckBatch(ctx context.Context, p entity.Principal, in inventory.BatchInput) error
	ApplyExitBatchInTx(ctx context.Context, uow repository.UnitOfWork, p entity.Principal, in inventory.BatchInput, batchID string) ([]*entity.Movement, error)
}

// Authorizer contrato del Permission Gate.
type Authorizer interface {
	AuthorizeWrite(ctx context.Context, p entity.Principal, warehouseID int64) error
	AuthorizeRead(ctx context.Context, p entity.Principal, warehouseID int64) error
}
