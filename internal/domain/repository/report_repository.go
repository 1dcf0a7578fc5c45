package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockReportRow es una fila del reporte de existencias (bodega, producto).
type StockReportRow struct {
	WarehouseID     int64           `db:"warehouse_id" json:"warehouse_id"`
	Warehouse       string          `db:"warehouse" json:"warehouse"`
	ProductID       int64           `db:"product_id" json:"product_id"`
	Product         string          `db:"product" json:"product"`
	ProductUnit     string          `db:"product_unit" json:"product_unit"`
	CurrentQuantity decimal.Decimal `db:"current_quantity" json:"current_quantity"`
	TotalEntries    decimal.Decimal `db:"total_entries" json:"total_entries"`
}

// MovementReportRow es una fila del historial de movimientos con nombres resueltos.
type MovementReportRow struct {
	ID               int64           `db:"id" json:"id"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	Type             string          `db:"type" json:"type"`
	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`
	PreviousQuantity decimal.Decimal `db:"previous_qty" json:"previous_qty"`
	NewQuantity      decimal.Decimal `db:"new_qty" json:"new_qty"`
	Description      string          `db:"description" json:"description"`
	Product          string          `db:"product" json:"product"`
	ProductUnit      string          `db:"product_unit" json:"product_unit"`
	WarehouseID      int64           `db:"warehouse_id" json:"warehouse_id"`
	Warehouse        string          `db:"warehouse" json:"warehouse"`
	UserID           *int64          `db:"user_id" json:"user_id"`
	UserName         *string         `db:"user_name" json:"user_name"`
}

// MovementFilter filtros opcionales del reporte de movimientos.
type MovementFilter struct {
	WarehouseID *int64
	Type        entity.MovementType
	From        *time.Time
	To          *time.Time
}

// StockTotals tarjetas de existencias del dashboard.
type StockTotals struct {
	TotalQuantity     decimal.Decimal `db:"total_stock_quantity"`
	ProductsWithStock int             `db:"products_with_stock"`
	TotalProducts     int             `db:"total_products"`
	TotalWarehouses   int             `db:"total_warehouses"`
}

// MovementCounts conteo de movimientos de un período.
type MovementCounts struct {
	Period  string `db:"period" json:"month,omitempty"`
	Total   int    `db:"total" json:"total"`
	Entries int    `db:"entries" json:"entries"`
	Exits   int    `db:"exits" json:"exits"`
}

// Add cuenta un movimiento del tipo indicado.
func (c *MovementCounts) Add(t entity.MovementType) {
	c.Total++
	switch t {
	case entity.MovementEntry:
		c.Entries++
	case entity.MovementExit:
		c.Exits++
	}
}

// WarehouseActivity total de movimientos por bodega.
type WarehouseActivity struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Total int    `db:"total" json:"total"`
}

// ReportRepository consultas de solo lectura de las vistas de reporte.
// El alcance siempre llega resuelto por el Permission Gate.
type ReportRepository interface {
	StockReport(ctx context.Context, scope entity.Scope, warehouseID *int64) ([]StockReportRow, error)
	MovementReport(ctx context.Context, scope entity.MovementScope, filter MovementFilter) ([]MovementReportRow, error)
	StockTotals(ctx context.Context, scope entity.Scope) (StockTotals, error)
	MovementCountsBetween(ctx context.Context, scope entity.Scope, from, to time.Time) (MovementCounts, error)
	// MovementsByMonth agrupa por mes (YYYY-MM) los movimientos desde since, en orden ascendente.
	MovementsByMonth(ctx context.Context, scope entity.Scope, since time.Time) ([]MovementCounts, error)
	MovementsByWarehouse(ctx context.Context, scope entity.Scope) ([]WarehouseActivity, error)
}
