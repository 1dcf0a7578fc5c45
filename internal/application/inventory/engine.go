package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// DefaultBatchEntryDescription se usa cuando una entrada en lote llega sin descripción.
const DefaultBatchEntryDescription = "Entrada vía caja rápida"

// MovementInput entrada para una entrada o salida individual.
type MovementInput struct {
	ProductID   int64
	WarehouseID int64
	Quantity    decimal.Decimal
	Description string
}

// BatchItem un ítem (producto, cantidad) de un lote.
type BatchItem struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// BatchInput lote de ítems sobre una misma bodega. Se aplica en el orden recibido.
type BatchInput struct {
	WarehouseID int64
	Items       []BatchItem
	Description string
}

// MovementEngine registra entradas y salidas de forma transaccional: bloqueo de fila
// del saldo (SELECT FOR UPDATE), escritura del saldo y del movimiento, Commit o Rollback.
type MovementEngine struct {
	txRunner TxRunner
	gate     WriteAuthorizer
	log      *logger.Logger
	obs      Observer
}

// NewMovementEngine construye el motor. obs puede ser nil.
func NewMovementEngine(txRunner TxRunner, gate WriteAuthorizer, log *logger.Logger, obs Observer) *MovementEngine {
	if obs == nil {
		obs = nopObserver{}
	}
	return &MovementEngine{txRunner: txRunner, gate: gate, log: log, obs: obs}
}

// RecordEntry suma quantity al saldo del par (creándolo si no existe) y registra un movimiento ENTRY.
func (e *MovementEngine) RecordEntry(ctx context.Context, p entity.Principal, in MovementInput) (int64, error) {
	ids, err := e.run(ctx, p, "entry", entity.MovementEntry, BatchInput{
		WarehouseID: in.WarehouseID,
		Items:       []BatchItem{{ProductID: in.ProductID, Quantity: in.Quantity}},
		Description: in.Description,
	}, false)
	if err != nil {
		return 0, stripIndex(err)
	}
	return ids[0], nil
}

// RecordExit resta quantity del saldo del par y registra un movimiento EXIT.
// Falla con ErrNoStockRecord si el par nunca tuvo stock y con ErrInsufficientStock si no alcanza.
func (e *MovementEngine) RecordExit(ctx context.Context, p entity.Principal, in MovementInput) (int64, error) {
	ids, err := e.run(ctx, p, "exit", entity.MovementExit, BatchInput{
		WarehouseID: in.WarehouseID,
		Items:       []BatchItem{{ProductID: in.ProductID, Quantity: in.Quantity}},
		Description: in.Description,
	}, false)
	if err != nil {
		return 0, stripIndex(err)
	}
	return ids[0], nil
}

// RecordEntryBatch aplica todas las entradas del lote en una sola transacción.
// Devuelve los IDs de movimiento en el orden de los ítems.
func (e *MovementEngine) RecordEntryBatch(ctx context.Context, p entity.Principal, in BatchInput) ([]int64, error) {
	if strings.TrimSpace(in.Description) == "" {
		in.Description = DefaultBatchEntryDescription
	}
	return e.run(ctx, p, "entry_batch", entity.MovementEntry, in, true)
}

// RecordExitBatch aplica todas las salidas del lote en una sola transacción (todo o nada).
// El primer ID devuelto es el número de OS del lote.
func (e *MovementEngine) RecordExitBatch(ctx context.Context, p entity.Principal, in BatchInput) ([]int64, error) {
	return e.run(ctx, p, "exit_batch", entity.MovementExit, in, true)
}

// OpenBalance asocia un producto a una bodega con saldo cero. Idempotente: no toca un saldo existente.
func (e *MovementEngine) OpenBalance(ctx context.Context, p entity.Principal, productID, warehouseID int64) (*entity.Balance, error) {
	if productID <= 0 || warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := e.gate.AuthorizeWrite(ctx, p, warehouseID); err != nil {
		return nil, err
	}
	var out *entity.Balance
	err := e.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if err := checkRefs(ctx, uow, productID, warehouseID); err != nil {
			return err
		}
		b, err := uow.Balances.EnsureForUpdate(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckBatch es la fase previa a la transacción: permiso y validación del lote.
// Los errores de permiso nunca abren transacción.
func (e *MovementEngine) CheckBatch(ctx context.Context, p entity.Principal, in BatchInput) error {
	if in.WarehouseID <= 0 {
		return domain.New(domain.KindInvalidInput, "warehouse_id es requerido")
	}
	if err := e.gate.AuthorizeWrite(ctx, p, in.WarehouseID); err != nil {
		return err
	}
	if len(in.Items) == 0 {
		return domain.New(domain.KindInvalidInput, "no se informó ningún ítem")
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			return domain.AtItem(domain.New(domain.KindInvalidInput, "ítem inválido: product_id requerido"), i)
		}
		if err := ValidateQuantity(it.Quantity); err != nil {
			return domain.AtItem(err, i)
		}
	}
	return nil
}

// ApplyExitBatchInTx ejecuta las salidas del lote con los repositorios del caller (misma transacción).
// El lote debe haber pasado CheckBatch. Si retorna error, el caller debe hacer rollback.
func (e *MovementEngine) ApplyExitBatchInTx(ctx context.Context, uow repository.UnitOfWork, p entity.Principal, in BatchInput, batchID string) ([]*entity.Movement, error) {
	return e.apply(ctx, uow, p, entity.MovementExit, in, batchID)
}

func (e *MovementEngine) run(ctx context.Context, p entity.Principal, op string, t entity.MovementType, in BatchInput, batch bool) ([]int64, error) {
	if err := e.CheckBatch(ctx, p, in); err != nil {
		e.reject(op, in, "", err)
		return nil, err
	}

	batchID := uuid.New().String()
	var ids []int64
	err := e.txRunner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		movs, err := e.apply(ctx, uow, p, t, in, batchID)
		if err != nil {
			return err
		}
		ids = make([]int64, 0, len(movs))
		for _, m := range movs {
			ids = append(ids, m.ID)
		}
		return nil
	})
	if err != nil {
		e.reject(op, in, batchID, err)
		return nil, err
	}

	e.obs.MovementsRecorded(t, len(ids))
	e.log.Info().
		Str("op", op).
		Str("batch_id", batchID).
		Int64("warehouse_id", in.WarehouseID).
		Int64("user_id", p.UserID).
		Int("items", len(ids)).
		Bool("batch", batch).
		Msg("movimientos registrados")
	return ids, nil
}

// apply recorre los ítems en orden. Un fallo en el ítem i devuelve el error con índice i.
func (e *MovementEngine) apply(ctx context.Context, uow repository.UnitOfWork, p entity.Principal, t entity.MovementType, in BatchInput, batchID string) ([]*entity.Movement, error) {
	wh, err := uow.Warehouses.GetByID(ctx, in.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("obtener bodega: %w", err)
	}
	if wh == nil {
		return nil, domain.New(domain.KindNotFound, "bodega no encontrada")
	}

	var userID *int64
	if p.UserID > 0 {
		uid := p.UserID
		userID = &uid
	}

	movs := make([]*entity.Movement, 0, len(in.Items))
	for i, it := range in.Items {
		var (
			m   *entity.Movement
			err error
		)
		switch t {
		case entity.MovementEntry:
			m, err = doEntry(ctx, uow, it, in.WarehouseID, userID, in.Description, batchID)
		case entity.MovementExit:
			m, err = doExit(ctx, uow, it, in.WarehouseID, userID, in.Description, batchID)
		default:
			err = domain.ErrInvalidInput
		}
		if err != nil {
			return nil, domain.AtItem(err, i)
		}
		movs = append(movs, m)
	}
	return movs, nil
}

// doEntry: crea la fila en cero si falta, la bloquea, suma la cantidad y guarda el movimiento.
func doEntry(ctx context.Context, uow repository.UnitOfWork, it BatchItem, warehouseID int64, userID *int64, desc, batchID string) (*entity.Movement, error) {
	product, err := uow.Products.GetByID(ctx, it.ProductID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil {
		return nil, domain.New(domain.KindNotFound, "producto no encontrado")
	}
	bal, err := uow.Balances.EnsureForUpdate(ctx, it.ProductID, warehouseID)
	if err != nil {
		return nil, err
	}
	prev := bal.Quantity
	bal.Quantity = prev.Add(it.Quantity)
	if err := uow.Balances.Update(ctx, bal); err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		BatchID:          batchID,
		ProductID:        it.ProductID,
		WarehouseID:      warehouseID,
		UserID:           userID,
		Type:             entity.MovementEntry,
		Quantity:         it.Quantity,
		PreviousQuantity: prev,
		NewQuantity:      bal.Quantity,
		Description:      desc,
	}
	if err := uow.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// doExit: bloquea la fila, verifica saldo >= cantidad, resta y guarda el movimiento.
func doExit(ctx context.Context, uow repository.UnitOfWork, it BatchItem, warehouseID int64, userID *int64, desc, batchID string) (*entity.Movement, error) {
	bal, err := uow.Balances.GetForUpdate(ctx, it.ProductID, warehouseID)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return nil, domain.ErrNoStockRecord
	}
	if bal.Quantity.LessThan(it.Quantity) {
		return nil, domain.New(domain.KindInsufficientStock,
			fmt.Sprintf("cantidad mayor que el stock disponible (%s)", bal.Quantity.StringFixed(2)))
	}
	prev := bal.Quantity
	bal.Quantity = prev.Sub(it.Quantity)
	if err := uow.Balances.Update(ctx, bal); err != nil {
		return nil, err
	}
	mov := &entity.Movement{
		BatchID:          batchID,
		ProductID:        it.ProductID,
		WarehouseID:      warehouseID,
		UserID:           userID,
		Type:             entity.MovementExit,
		Quantity:         it.Quantity,
		PreviousQuantity: prev,
		NewQuantity:      bal.Quantity,
		Description:      desc,
	}
	if err := uow.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func checkRefs(ctx context.Context, uow repository.UnitOfWork, productID, warehouseID int64) error {
	product, err := uow.Products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil {
		return domain.New(domain.KindNotFound, "producto no encontrado")
	}
	wh, err := uow.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("obtener bodega: %w", err)
	}
	if wh == nil {
		return domain.New(domain.KindNotFound, "bodega no encontrada")
	}
	return nil
}

func (e *MovementEngine) reject(op string, in BatchInput, batchID string, err error) {
	e.obs.OperationRejected(op, err)
	ev := e.log.Warn()
	if domain.KindOf(err) == domain.KindInternal {
		ev = e.log.Error()
	}
	ev.Err(err).
		Str("op", op).
		Str("batch_id", batchID).
		Int64("warehouse_id", in.WarehouseID).
		Int("items", len(in.Items)).
		Int("item_index", domain.IndexOf(err)).
		Msg("operación de stock rechazada")
}

// stripIndex quita el índice de ítem en operaciones individuales.
func stripIndex(err error) error {
	if domain.IndexOf(err) == domain.NoIndex {
		return err
	}
	return domain.AtItem(err, domain.NoIndex)
}
