package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación del Balance Store sobre PostgreSQL (usable con pool o tx).
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const selectBalance = `
	SELECT product_id, warehouse_id, quantity, updated_at
	FROM balances WHERE product_id = $1 AND warehouse_id = $2`

// Get obtiene el saldo sin bloquear. nil si el par no tiene fila.
func (r *BalanceRepo) Get(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error) {
	return r.get(ctx, selectBalance, productID, warehouseID)
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *BalanceRepo) GetForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error) {
	return r.get(ctx, selectBalance+" FOR UPDATE", productID, warehouseID)
}

// EnsureForUpdate inserta la fila en cero si falta y la devuelve bloqueada.
func (r *BalanceRepo) EnsureForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error) {
	const insert = `
		INSERT INTO balances (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure balance: %w", err)
	}
	b, err := r.GetForUpdate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("ensure balance: fila (%d, %d) no visible tras insertar", productID, warehouseID)
	}
	return b, nil
}

// Update escribe la nueva cantidad. La fila debe existir.
func (r *BalanceRepo) Update(ctx context.Context, b *entity.Balance) error {
	const query = `
		UPDATE balances SET quantity = $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query, b.ProductID, b.WarehouseID, b.Quantity).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.New(domain.KindNotFound, "saldo no encontrado")
		}
		if isCheckViolation(err) {
			return domain.New(domain.KindInsufficientStock, "el saldo no puede quedar negativo")
		}
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func (r *BalanceRepo) get(ctx context.Context, query string, productID, warehouseID int64) (*entity.Balance, error) {
	var b entity.Balance
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&b.ProductID, &b.WarehouseID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}
