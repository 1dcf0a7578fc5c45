package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// InventoryHandler maneja entradas, salidas y despachos de stock (protegido).
type InventoryHandler struct {
	engine  *inventory.MovementEngine
	builder *exitorder.Builder
	log     *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.MovementEngine, builder *exitorder.Builder, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{engine: engine, builder: builder, log: log}
}

func toBatchItems(in []dto.BatchItemRequest) []inventory.BatchItem {
	items := make([]inventory.BatchItem, 0, len(in))
	for _, it := range in {
		items = append(items, inventory.BatchItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

// RecordEntry godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *InventoryHandler) RecordEntry(c *fiber.Ctx) error {
	return h.single(c, h.engine.RecordEntry, "entrada registrada")
}

// RecordExit godoc
// @Summary      Registrar salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/exits [post]
func (h *InventoryHandler) RecordExit(c *fiber.Ctx) error {
	return h.single(c, h.engine.RecordExit, "salida registrada")
}

type recordFunc = func(ctx context.Context, p entity.Principal, in inventory.MovementInput) (int64, error)

func (h *InventoryHandler) single(c *fiber.Ctx, record recordFunc, msg string) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	id, err := record(c.UserContext(), p, inventory.MovementInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{Message: msg, MovementID: id})
}

// RecordEntryBatch godoc
// @Summary      Entrada en lote (caja rápida)
// @Description  Todos los ítems o ninguno. Ante un error, index indica el ítem culpable.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchEntryRequest  true  "warehouse_id, items[]"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/entries/batch [post]
func (h *InventoryHandler) RecordEntryBatch(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.BatchEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ids, err := h.engine.RecordEntryBatch(c.UserContext(), p, inventory.BatchInput{
		WarehouseID: in.WarehouseID,
		Items:       toBatchItems(in.Items),
		Description: in.Description,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BatchResponse{Message: "entradas registradas", MovementIDs: ids})
}

// Dispatch godoc
// @Summary      Salida en lote con orden de salida
// @Description  Descuenta stock y emite la OS (PDF) en una sola transacción.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DispatchRequest  true  "warehouse_id, items[], client_name"
// @Success      201   {object}  exitorder.DispatchResult
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/dispatch [post]
func (h *InventoryHandler) Dispatch(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.DispatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.builder.Dispatch(c.UserContext(), p, exitorder.DispatchInput{
		WarehouseID:    in.WarehouseID,
		Items:          toBatchItems(in.Items),
		Description:    in.Description,
		ClientName:     in.ClientName,
		ClientDocument: in.ClientDocument,
		Declaration:    in.Declaration,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// OpenBalance godoc
// @Summary      Vincular producto a bodega con saldo cero
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenBalanceRequest  true  "product_id, warehouse_id"
// @Success      200   {object}  dto.BalanceResponse
// @Router       /api/stock/balances [post]
func (h *InventoryHandler) OpenBalance(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.OpenBalanceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	b, err := h.engine.OpenBalance(c.UserContext(), p, in.ProductID, in.WarehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.BalanceResponse{ProductID: b.ProductID, WarehouseID: b.WarehouseID, Quantity: b.Quantity})
}
