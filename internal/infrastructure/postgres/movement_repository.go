package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del Movement Log sobre PostgreSQL (usable con pool o tx).
// Solo inserta: la tabla rechaza UPDATE y DELETE por trigger.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// movementRow fila de movements con nombres resueltos.
type movementRow struct {
	ID               int64           `db:"id"`
	BatchID          string          `db:"batch_id"`
	ProductID        int64           `db:"product_id"`
	WarehouseID      int64           `db:"warehouse_id"`
	UserID           *int64          `db:"user_id"`
	Type             string          `db:"type"`
	Quantity         decimal.Decimal `db:"quantity"`
	PreviousQuantity decimal.Decimal `db:"previous_qty"`
	NewQuantity      decimal.Decimal `db:"new_qty"`
	Description      string          `db:"description"`
	CreatedAt        time.Time       `db:"created_at"`
	ProductName      string          `db:"product_name"`
	ProductUnit      string          `db:"product_unit"`
	WarehouseName    string          `db:"warehouse_name"`
	UserName         *string         `db:"user_name"`
}

func (r movementRow) movement() entity.Movement {
	return entity.Movement{
		ID:               r.ID,
		BatchID:          r.BatchID,
		ProductID:        r.ProductID,
		WarehouseID:      r.WarehouseID,
		UserID:           r.UserID,
		Type:             entity.MovementType(r.Type),
		Quantity:         r.Quantity,
		PreviousQuantity: r.PreviousQuantity,
		NewQuantity:      r.NewQuantity,
		Description:      r.Description,
		CreatedAt:        r.CreatedAt,
	}
}

const selectMovementDetail = `
	SELECT m.id, m.batch_id::text AS batch_id, m.product_id, m.warehouse_id, m.user_id, m.type,
	       m.quantity, m.previous_qty, m.new_qty, m.description, m.created_at,
	       p.name AS product_name, p.unit AS product_unit,
	       w.name AS warehouse_name, u.name AS user_name
	FROM movements m
	JOIN products   p ON p.id = m.product_id
	JOIN warehouses w ON w.id = m.warehouse_id
	LEFT JOIN users u ON u.id = m.user_id`

// Append persiste el movimiento y completa ID y CreatedAt.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if m.BatchID == "" {
		m.BatchID = uuid.NewString()
	}
	const query = `
		INSERT INTO movements (batch_id, product_id, warehouse_id, user_id, type, quantity, previous_qty, new_qty, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		m.BatchID, m.ProductID, m.WarehouseID, m.UserID, string(m.Type),
		m.Quantity, m.PreviousQuantity, m.NewQuantity, m.Description,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetDetails devuelve los movimientos con nombres vigentes, en el orden de ids.
func (r *MovementRepo) GetDetails(ctx context.Context, ids []int64) ([]entity.MovementDetail, error) {
	if len(ids) == 0 {
		return []entity.MovementDetail{}, nil
	}
	query := selectMovementDetail + `
	WHERE m.id = ANY($1)
	ORDER BY array_position($1, m.id)`
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, ids); err != nil {
		return nil, fmt.Errorf("movement details: %w", err)
	}
	out := make([]entity.MovementDetail, 0, len(rows))
	for _, row := range rows {
		d := entity.MovementDetail{
			Movement:      row.movement(),
			ProductName:   row.ProductName,
			ProductUnit:   row.ProductUnit,
			WarehouseName: row.WarehouseName,
		}
		if row.UserName != nil {
			d.UserName = *row.UserName
		}
		out = append(out, d)
	}
	return out, nil
}

// ListByPair historial de un par producto/bodega en orden de inserción.
func (r *MovementRepo) ListByPair(ctx context.Context, productID, warehouseID int64) ([]*entity.Movement, error) {
	query := selectMovementDetail + `
	WHERE m.product_id = $1 AND m.warehouse_id = $2
	ORDER BY m.id`
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		m := row.movement()
		out = append(out, &m)
	}
	return out, nil
}
