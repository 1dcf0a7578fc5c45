package analytics

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReadAuthorizer contrato del Permission Gate para filtros por bodega.
type ReadAuthorizer interface {
	AuthorizeRead(ctx context.Context, p entity.Principal, warehouseID int64) error
}

// ReportUseCase reporte de existencias e historial de movimientos.
type ReportUseCase struct {
	reportRepo repository.ReportRepository
	gate       ReadAuthorizer
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(reportRepo repository.ReportRepository, gate ReadAuthorizer) *ReportUseCase {
	return &ReportUseCase{reportRepo: reportRepo, gate: gate}
}

// StockReport existencia actual y entradas acumuladas por (bodega, producto).
// Orden: nombre de bodega, nombre de producto.
func (uc *ReportUseCase) StockReport(ctx context.Context, p entity.Principal, warehouseID *int64) ([]repository.StockReportRow, error) {
	scope, err := access.ResolveScope(p)
	if err != nil {
		return nil, err
	}
	if warehouseID != nil {
		if err := uc.gate.AuthorizeRead(ctx, p, *warehouseID); err != nil {
			return nil, err
		}
	}
	rows, err := uc.reportRepo.StockReport(ctx, scope, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("reporte de stock: %w", err)
	}
	if rows == nil {
		rows = []repository.StockReportRow{}
	}
	return rows, nil
}

// MovementReport historial de movimientos, más recientes primero.
// El rol user solo ve los movimientos que registró, sin importar la unidad.
func (uc *ReportUseCase) MovementReport(ctx context.Context, p entity.Principal, filter repository.MovementFilter) ([]repository.MovementReportRow, error) {
	scope, err := access.ResolveMovementScope(p)
	if err != nil {
		return nil, err
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.New(domain.KindInvalidInput, "tipo de movimiento inválido")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.New(domain.KindInvalidInput, "rango de fechas inválido")
	}
	// con OnlyUserID el filtro por bodega solo acota los movimientos propios
	if filter.WarehouseID != nil && scope.OnlyUserID == nil {
		if err := uc.gate.AuthorizeRead(ctx, p, *filter.WarehouseID); err != nil {
			return nil, err
		}
	}
	rows, err := uc.reportRepo.MovementReport(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("reporte de movimientos: %w", err)
	}
	if rows == nil {
		rows = []repository.MovementReportRow{}
	}
	return rows, nil
}
