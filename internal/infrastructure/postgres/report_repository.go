package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y dashboard.
// Toda consulta une warehouses (alias w) para aplicar el alcance.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

const countsColumns = `COUNT(*) AS total,
	COUNT(*) FILTER (WHERE m.type = 'ENTRY') AS entries,
	COUNT(*) FILTER (WHERE m.type = 'EXIT') AS exits`

func withScope(q squirrel.SelectBuilder, scope entity.Scope) squirrel.SelectBuilder {
	if scope.All {
		return q
	}
	return q.Where(squirrel.Eq{"w.unit_id": scope.UnitID})
}

// StockReport existencia actual y entradas acumuladas por (bodega, producto).
func (r *ReportRepo) StockReport(ctx context.Context, scope entity.Scope, warehouseID *int64) ([]repository.StockReportRow, error) {
	q := psql.Select(
		"w.id AS warehouse_id", "w.name AS warehouse",
		"p.id AS product_id", "p.name AS product", "p.unit AS product_unit",
		"b.quantity AS current_quantity",
		"COALESCE(e.total, 0) AS total_entries",
	).
		From("balances b").
		Join("warehouses w ON w.id = b.warehouse_id").
		Join("products p ON p.id = b.product_id").
		LeftJoin(`(SELECT product_id, warehouse_id, SUM(quantity) AS total
			FROM movements WHERE type = 'ENTRY'
			GROUP BY product_id, warehouse_id) e
			ON e.product_id = b.product_id AND e.warehouse_id = b.warehouse_id`).
		OrderBy("w.name", "p.name")
	q = withScope(q, scope)
	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"b.warehouse_id": *warehouseID})
	}

	var rows []repository.StockReportRow
	if err := r.selectAll(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("reports.StockReport: %w", err)
	}
	return rows, nil
}

// MovementReport historial con nombres resueltos, más recientes primero.
func (r *ReportRepo) MovementReport(ctx context.Context, scope entity.MovementScope, f repository.MovementFilter) ([]repository.MovementReportRow, error) {
	q := psql.Select(
		"m.id", "m.created_at", "m.type", "m.quantity", "m.previous_qty", "m.new_qty", "m.description",
		"p.name AS product", "p.unit AS product_unit",
		"w.id AS warehouse_id", "w.name AS warehouse",
		"m.user_id", "u.name AS user_name",
	).
		From("movements m").
		Join("warehouses w ON w.id = m.warehouse_id").
		Join("products p ON p.id = m.product_id").
		LeftJoin("users u ON u.id = m.user_id").
		OrderBy("m.created_at DESC", "m.id DESC")
	q = withScope(q, scope.Scope)
	if scope.OnlyUserID != nil {
		q = q.Where(squirrel.Eq{"m.user_id": *scope.OnlyUserID})
	}
	if f.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"m.warehouse_id": *f.WarehouseID})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"m.type": string(f.Type)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"m.created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"m.created_at": *f.To})
	}

	var rows []repository.MovementReportRow
	if err := r.selectAll(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("reports.MovementReport: %w", err)
	}
	return rows, nil
}

// StockTotals tarjetas de existencias. TotalProducts es el catálogo completo.
func (r *ReportRepo) StockTotals(ctx context.Context, scope entity.Scope) (repository.StockTotals, error) {
	var t repository.StockTotals

	stock := withScope(psql.Select(
		"COALESCE(SUM(b.quantity), 0) AS total_stock_quantity",
		"COUNT(DISTINCT b.product_id) FILTER (WHERE b.quantity > 0) AS products_with_stock",
	).
		From("balances b").
		Join("warehouses w ON w.id = b.warehouse_id"), scope)
	if err := r.getOne(ctx, stock, &t); err != nil {
		return t, fmt.Errorf("reports.StockTotals: %w", err)
	}

	var counts struct {
		TotalProducts   int `db:"total_products"`
		TotalWarehouses int `db:"total_warehouses"`
	}
	catalog := withScope(psql.Select(
		"(SELECT COUNT(*) FROM products) AS total_products",
		"COUNT(*) AS total_warehouses",
	).From("warehouses w"), scope)
	if err := r.getOne(ctx, catalog, &counts); err != nil {
		return t, fmt.Errorf("reports.StockTotals: %w", err)
	}
	t.TotalProducts = counts.TotalProducts
	t.TotalWarehouses = counts.TotalWarehouses
	return t, nil
}

// MovementCountsBetween cuenta movimientos en [from, to).
func (r *ReportRepo) MovementCountsBetween(ctx context.Context, scope entity.Scope, from, to time.Time) (repository.MovementCounts, error) {
	var c repository.MovementCounts
	q := withScope(psql.Select(countsColumns).
		From("movements m").
		Join("warehouses w ON w.id = m.warehouse_id").
		Where(squirrel.GtOrEq{"m.created_at": from}).
		Where(squirrel.Lt{"m.created_at": to}), scope)
	if err := r.getOne(ctx, q, &c); err != nil {
		return c, fmt.Errorf("reports.MovementCountsBetween: %w", err)
	}
	return c, nil
}

// MovementsByMonth agrupa por mes (YYYY-MM) desde since, ascendente.
func (r *ReportRepo) MovementsByMonth(ctx context.Context, scope entity.Scope, since time.Time) ([]repository.MovementCounts, error) {
	q := withScope(psql.Select(
		"to_char(date_trunc('month', m.created_at), 'YYYY-MM') AS period",
		countsColumns,
	).
		From("movements m").
		Join("warehouses w ON w.id = m.warehouse_id").
		Where(squirrel.GtOrEq{"m.created_at": since}).
		GroupBy("period").
		OrderBy("period"), scope)

	var rows []repository.MovementCounts
	if err := r.selectAll(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("reports.MovementsByMonth: %w", err)
	}
	return rows, nil
}

// MovementsByWarehouse total de movimientos por bodega, de mayor a menor.
func (r *ReportRepo) MovementsByWarehouse(ctx context.Context, scope entity.Scope) ([]repository.WarehouseActivity, error) {
	q := withScope(psql.Select("w.id", "w.name", "COUNT(*) AS total").
		From("movements m").
		Join("warehouses w ON w.id = m.warehouse_id").
		GroupBy("w.id", "w.name").
		OrderBy("total DESC", "w.id"), scope)

	var rows []repository.WarehouseActivity
	if err := r.selectAll(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("reports.MovementsByWarehouse: %w", err)
	}
	return rows, nil
}

func (r *ReportRepo) selectAll(ctx context.Context, q squirrel.SelectBuilder, dst any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, r.pool, dst, sql, args...)
}

func (r *ReportRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, dst any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, r.pool, dst, sql, args...)
}
