package dto

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
type DashboardSummaryDTO struct {
	Cards  DashboardCardsDTO  `json:"cards"`
	Charts DashboardChartsDTO `json:"charts"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// DashboardCardsDTO KPIs del alcance del solicitante.
type DashboardCardsDTO struct {
	TotalStockQuantity  decimal.Decimal `json:"total_stock_quantity"`
	ProductsWithStock   int             `json:"products_with_stock"`
	TotalProducts       int             `json:"total_products"`
	TotalWarehouses     int             `json:"total_warehouses"`
	TotalMovementsMonth int             `json:"total_movements_month"`
	EntriesMonth        int             `json:"entries_month"`
	ExitsMonth          int             `json:"exits_month"`
}

// DashboardChartsDTO series para los gráficos.
type DashboardChartsDTO struct {
	MovementsByMonth     []repository.MovementCounts    `json:"movements_by_month"`     // ascendente, últimos 6 meses
	MovementsByWarehouse []repository.WarehouseActivity `json:"movements_by_warehouse"` // mayor a menor
}
