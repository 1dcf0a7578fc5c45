package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReportHandler reportes de existencias y de movimientos.
type ReportHandler struct {
	uc  *analytics.ReportUseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *analytics.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Stock godoc
// @Summary      Reporte de existencias
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int  false  "Filtrar por bodega"
// @Success      200  {array}   repository.StockReportRow
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/stock [get]
func (h *ReportHandler) Stock(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	warehouseID, err := queryInt64(c, "warehouse_id")
	if err != nil {
		return invalidQuery(c, "warehouse_id")
	}
	rows, err := h.uc.StockReport(c.UserContext(), p, warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rows)
}

// Movements godoc
// @Summary      Historial de movimientos
// @Description  El rol user solo ve los movimientos que registró. Fechas YYYY-MM-DD (to inclusivo) o RFC3339.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int     false  "Filtrar por bodega"
// @Param        type          query  string  false  "ENTRY | EXIT"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Success      200  {array}   repository.MovementReportRow
// @Router       /api/reports/movements [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	var f repository.MovementFilter
	var err error
	if f.WarehouseID, err = queryInt64(c, "warehouse_id"); err != nil {
		return invalidQuery(c, "warehouse_id")
	}
	f.Type = entity.MovementType(strings.ToUpper(c.Query("type")))
	if f.From, err = queryTime(c, "from", false); err != nil {
		return invalidQuery(c, "from")
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return invalidQuery(c, "to")
	}
	rows, err := h.uc.MovementReport(c.UserContext(), p, f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(rows)
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// queryTime acepta YYYY-MM-DD o RFC3339. Con endOfDay, una fecha sola cubre el día completo.
func queryTime(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

func invalidQuery(c *fiber.Ctx, key string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro inválido: " + key})
}
