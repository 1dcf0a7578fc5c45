// Package analytics contiene las vistas de solo lectura: reporte de existencias,
// historial de movimientos y resumen del dashboard. Todas se acotan con el mismo
// resolvedor de alcance que usan las escrituras.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const dashboardMonths = 6 // meses en el gráfico de movimientos

// DashboardUseCase genera el resumen de existencias y movimientos.
//
// Fuente de datos: ReportRepository (consultas read-only).
type DashboardUseCase struct {
	reportRepo repository.ReportRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo}
}

// GetSummary construye el DashboardSummaryDTO para el alcance del solicitante.
//
// Cuatro llamadas en paralelo:
//  1. StockTotals                  → tarjetas de existencias
//  2. MovementCountsBetween(mes)   → movimientos del mes en curso
//  3. MovementsByMonth(6 meses)    → gráfico mensual
//  4. MovementsByWarehouse         → gráfico por bodega
func (uc *DashboardUseCase) GetSummary(ctx context.Context, p entity.Principal) (*dto.DashboardSummaryDTO, error) {
	scope, err := access.ResolveScope(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	chartStart := monthStart.AddDate(0, -(dashboardMonths - 1), 0)

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type totalsResult struct {
		totals repository.StockTotals
		err    error
	}
	type countsResult struct {
		counts repository.MovementCounts
		err    error
	}
	type byMonthResult struct {
		rows []repository.MovementCounts
		err  error
	}
	type byWarehouseResult struct {
		rows []repository.WarehouseActivity
		err  error
	}

	totalsCh := make(chan totalsResult, 1)
	monthCh := make(chan countsResult, 1)
	byMonthCh := make(chan byMonthResult, 1)
	byWarehouseCh := make(chan byWarehouseResult, 1)

	go func() {
		t, err := uc.reportRepo.StockTotals(ctx, scope)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		c, err := uc.reportRepo.MovementCountsBetween(ctx, scope, monthStart, nextMonth)
		monthCh <- countsResult{c, err}
	}()
	go func() {
		rows, err := uc.reportRepo.MovementsByMonth(ctx, scope, chartStart)
		byMonthCh <- byMonthResult{rows, err}
	}()
	go func() {
		rows, err := uc.reportRepo.MovementsByWarehouse(ctx, scope)
		byWarehouseCh <- byWarehouseResult{rows, err}
	}()

	totals := <-totalsCh
	month := <-monthCh
	byMonth := <-byMonthCh
	byWarehouse := <-byWarehouseCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales de stock: %w", totals.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos del mes: %w", month.err)
	}
	if byMonth.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos por mes: %w", byMonth.err)
	}
	if byWarehouse.err != nil {
		return nil, fmt.Errorf("dashboard: movimientos por bodega: %w", byWarehouse.err)
	}

	warehouses := byWarehouse.rows
	if warehouses == nil {
		warehouses = []repository.WarehouseActivity{}
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.DashboardSummaryDTO{
		Cards: dto.DashboardCardsDTO{
			TotalStockQuantity:  totals.totals.TotalQuantity.Round(2),
			ProductsWithStock:   totals.totals.ProductsWithStock,
			TotalProducts:       totals.totals.TotalProducts,
			TotalWarehouses:     totals.totals.TotalWarehouses,
			TotalMovementsMonth: month.counts.Total,
			EntriesMonth:        month.counts.Entries,
			ExitsMonth:          month.counts.Exits,
		},
		Charts: dto.DashboardChartsDTO{
			MovementsByMonth:     fillMonths(byMonth.rows, chartStart, dashboardMonths),
			MovementsByWarehouse: warehouses,
		},
		DateLabel: monthLabel(now),
	}, nil
}

// fillMonths devuelve exactamente n meses desde start, con ceros donde no hubo movimientos.
func fillMonths(rows []repository.MovementCounts, start time.Time, n int) []repository.MovementCounts {
	byPeriod := make(map[string]repository.MovementCounts, len(rows))
	for _, r := range rows {
		byPeriod[r.Period] = r
	}
	out := make([]repository.MovementCounts, 0, n)
	for i := 0; i < n; i++ {
		period := start.AddDate(0, i, 0).Format("2006-01")
		c, ok := byPeriod[period]
		if !ok {
			c = repository.MovementCounts{Period: period}
		}
		out = append(out, c)
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
