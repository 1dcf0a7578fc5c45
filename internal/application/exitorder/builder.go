// Package exitorder emite la orden de salida (OS) de cada lote de salidas confirmado,
// con snapshot de ítems y documento PDF, y gestiona su firma posterior.
package exitorder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// DispatchInput salida en lote con los datos del receptor.
type DispatchInput struct {
	WarehouseID    int64
	Items          []inventory.BatchItem
	Description    string
	ClientName     string
	ClientDocument string
	Declaration    string // vacío = entity.DefaultDeclaration
}

// DispatchResult resultado de un despacho confirmado.
type DispatchResult struct {
	OrderID     int64   `json:"order_id"`
	MovementID  int64   `json:"movement_id"` // número de OS
	MovementIDs []int64 `json:"movement_ids"`
	DocumentURL string  `json:"document_url"`
}

// CreateInput datos para persistir una orden dentro de la transacción del lote.
type CreateInput struct {
	Movements      []entity.MovementDetail // en el orden del lote; el primero es el ancla
	WarehouseID    int64
	ClientName     string
	ClientDocument string
	Declaration    string
	OperatorName   string
}

// View representación de lectura de una orden.
type View struct {
	ID             int64                 `json:"id"`
	MovementID     int64                 `json:"movement_id"`
	WarehouseID    int64                 `json:"warehouse_id"`
	ClientName     string                `json:"client_name"`
	ClientDocument string                `json:"client_document,omitempty"`
	Declaration    string                `json:"declaration"`
	OperatorName   string                `json:"operator_name"`
	Items          []entity.SnapshotItem `json:"items"`
	IsSigned       bool                  `json:"is_signed"`
	DocumentURL    string                `json:"document_url"`
	CreatedAt      time.Time             `json:"created_at"`
}

// Download documento listo para enviar al cliente.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Builder es el Exit Order Builder.
type Builder struct {
	txRunner inventory.TxRunner
	engine   BatchApplier
	gate     Authorizer
	orders   repository.ExitOrderRepository
	renderer DocumentRenderer
	docs     DocumentStore
	log      *logger.Logger
	obs      inventory.Observer
}

// NewBuilder construye el builder. orders es el repositorio fuera de transacción.
func NewBuilder(
	txRunner inventory.TxRunner,
	engine BatchApplier,
	gate Authorizer,
	orders repository.ExitOrderRepository,
	renderer DocumentRenderer,
	docs DocumentStore,
	log *logger.Logger,
	obs inventory.Observer,
) *Builder {
	return &Builder{
		txRunner: txRunner,
		engine:   engine,
		gate:     gate,
		orders:   orders,
		renderer: renderer,
		docs:     docs,
		log:      log,
		obs:      obs,
	}
}

// Dispatch aplica el lote de salidas y crea su orden en una sola transacción.
// Si falla la generación del documento o la inserción de la orden, no se descuenta stock.
func (b *Builder) Dispatch(ctx context.Context, p entity.Principal, in DispatchInput) (*DispatchResult, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	batch := inventory.BatchInput{WarehouseID: in.WarehouseID, Items: in.Items, Description: in.Description}
	if err := b.engine.CheckBatch(ctx, p, batch); err != nil {
		b.rejected(in, err)
		return nil, err
	}
	if in.ClientName == "" {
		err := domain.New(domain.KindInvalidInput, "client_name es requerido")
		b.rejected(in, err)
		return nil, err
	}

	batchID := uuid.New().String()
	var (
		order *entity.ExitOrder
		ids   []int64
	)
	err := b.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		movs, err := b.engine.ApplyExitBatchInTx(ctx, uow, p, batch, batchID)
		if err != nil {
			return err
		}
		ids = make([]int64, 0, len(movs))
		for _, m := range movs {
			ids = append(ids, m.ID)
		}
		details, err := uow.Movements.GetDetails(ctx, ids)
		if err != nil {
			return fmt.Errorf("cargar movimientos del lote: %w", err)
		}
		order, err = b.CreateExitOrder(ctx, uow, CreateInput{
			Movements:      details,
			WarehouseID:    in.WarehouseID,
			ClientName:     in.ClientName,
			ClientDocument: strings.TrimSpace(in.ClientDocument),
			Declaration:    in.Declaration,
			OperatorName:   p.Name,
		})
		return err
	})
	if err != nil {
		b.rejected(in, err)
		return nil, err
	}

	if b.obs != nil {
		b.obs.MovementsRecorded(entity.MovementExit, len(ids))
	}
	b.log.Info().
		Int64("order_id", order.ID).
		Int64("os", order.MovementID).
		Str("batch_id", batchID).
		Int64("warehouse_id", in.WarehouseID).
		Int("items", len(ids)).
		Msg("orden de salida emitida")

	url, err := b.docs.URL(ctx, order.DocumentRef)
	if err != nil {
		// la salida ya está confirmada; la URL se puede resolver luego desde el listado
		b.log.Warn().Err(err).Int64("order_id", order.ID).Msg("no se pudo resolver la URL del documento")
	}
	return &DispatchResult{
		OrderID:     order.ID,
		MovementID:  order.MovementID,
		MovementIDs: ids,
		DocumentURL: url,
	}, nil
}

// CreateExitOrder materializa el snapshot, genera el documento y persiste la orden con uow.
func (b *Builder) CreateExitOrder(ctx context.Context, uow repository.UnitOfWork, in CreateInput) (*entity.ExitOrder, error) {
	if len(in.Movements) == 0 {
		return nil, domain.New(domain.KindInvalidInput, "no hay movimientos para la orden de salida")
	}
	snapshot := entity.NewItemsSnapshot(in.Movements)
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("orden de salida: %w", err)
	}
	declaration := strings.TrimSpace(in.Declaration)
	if declaration == "" {
		declaration = entity.DefaultDeclaration
	}
	anchor := in.Movements[0]

	ref, err := b.renderer.Render(ctx, ExitDocument{
		Number:         anchor.ID,
		ClientName:     in.ClientName,
		ClientDocument: in.ClientDocument,
		Declaration:    declaration,
		OperatorName:   in.OperatorName,
		Items:          snapshot,
		IssuedAt:       anchor.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("generar documento: %w", err)
	}

	order := &entity.ExitOrder{
		MovementID:     anchor.ID,
		WarehouseID:    in.WarehouseID,
		ClientName:     in.ClientName,
		ClientDocument: in.ClientDocument,
		Declaration:    declaration,
		OperatorName:   in.OperatorName,
		Items:          snapshot,
		DocumentRef:    ref,
	}
	if err := uow.ExitOrders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("crear orden de salida: %w", err)
	}
	return order, nil
}

// AttachSignature guarda la firma y el documento firmado. Repetirlo sobrescribe ambos.
// La fila de la orden queda bloqueada mientras se genera el documento: dos firmas
// simultáneas se aplican una tras otra y la imagen guardada siempre es la del PDF vigente.
func (b *Builder) AttachSignature(ctx context.Context, p entity.Principal, orderID int64, signatureDataURL string) (*View, error) {
	sig, err := ParseSignatureDataURL(signatureDataURL)
	if err != nil {
		return nil, err
	}
	order, err := b.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if order == nil {
		return nil, domain.New(domain.KindNotFound, "orden de salida no encontrada")
	}
	// la bodega de una orden no cambia: el permiso se valida fuera de la transacción
	if err := b.gate.AuthorizeWrite(ctx, p, order.WarehouseID); err != nil {
		return nil, err
	}

	err = b.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		locked, err := uow.ExitOrders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("bloquear orden: %w", err)
		}
		if locked == nil {
			return domain.New(domain.KindNotFound, "orden de salida no encontrada")
		}
		ref, err := b.renderer.RenderSigned(ctx, locked, sig)
		if err != nil {
			return fmt.Errorf("generar documento firmado: %w", err)
		}
		if err := uow.ExitOrders.SaveSignature(ctx, locked.ID, sig.Image, ref); err != nil {
			return err
		}
		locked.SignatureImage = sig.Image
		locked.SignedDocumentRef = ref
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Info().Int64("order_id", order.ID).Int64("user_id", p.UserID).Msg("orden de salida firmada")
	return b.view(ctx, order), nil
}

// List devuelve las órdenes visibles para p, más recientes primero.
func (b *Builder) List(ctx context.Context, p entity.Principal) ([]View, error) {
	scope, err := access.ResolveScope(p)
	if err != nil {
		return nil, err
	}
	orders, err := b.orders.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("listar órdenes: %w", err)
	}
	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, *b.view(ctx, o))
	}
	return out, nil
}

// Document abre el documento vigente (firmado si existe) de una orden.
func (b *Builder) Document(ctx context.Context, p entity.Principal, orderID int64) (*Download, error) {
	order, err := b.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("obtener orden: %w", err)
	}
	if order == nil {
		return nil, domain.New(domain.KindNotFound, "orden de salida no encontrada")
	}
	if err := b.gate.AuthorizeRead(ctx, p, order.WarehouseID); err != nil {
		return nil, err
	}
	body, contentType, err := b.docs.Open(ctx, order.CurrentDocumentRef())
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("OS-SALIDA-%d.pdf", order.MovementID)
	if order.IsSigned() {
		name = fmt.Sprintf("OS-SALIDA-%d-firmada.pdf", order.MovementID)
	}
	return &Download{Filename: name, ContentType: contentType, Body: body}, nil
}

func (b *Builder) view(ctx context.Context, o *entity.ExitOrder) *View {
	v := &View{
		ID:             o.ID,
		MovementID:     o.MovementID,
		WarehouseID:    o.WarehouseID,
		ClientName:     o.ClientName,
		ClientDocument: o.ClientDocument,
		Declaration:    o.Declaration,
		OperatorName:   o.OperatorName,
		Items:          o.Items.Items,
		IsSigned:       o.IsSigned(),
		CreatedAt:      o.CreatedAt,
	}
	if ref := o.CurrentDocumentRef(); ref != "" {
		url, err := b.docs.URL(ctx, ref)
		if err != nil {
			b.log.Warn().Err(err).Int64("order_id", o.ID).Msg("no se pudo resolver la URL del documento")
		}
		v.DocumentURL = url
	}
	return v
}

func (b *Builder) rejected(in DispatchInput, err error) {
	if b.obs != nil {
		b.obs.OperationRejected("dispatch", err)
	}
	ev := b.log.Warn()
	if domain.KindOf(err) == domain.KindInternal {
		ev = b.log.Error()
	}
	ev.Err(err).
		Int64("warehouse_id", in.WarehouseID).
		Int("items", len(in.Items)).
		Int("item_index", domain.IndexOf(err)).
		Msg("despacho rechazado")
}
