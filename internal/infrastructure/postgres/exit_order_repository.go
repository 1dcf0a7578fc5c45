package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ExitOrderRepository = (*ExitOrderRepo)(nil)

// ExitOrderRepo persistencia de órdenes de salida. Los ítems se guardan como snapshot JSONB.
type ExitOrderRepo struct {
	q Querier
}

// NewExitOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExitOrderRepository(q Querier) *ExitOrderRepo {
	return &ExitOrderRepo{q: q}
}

type exitOrderRow struct {
	ID                int64     `db:"id"`
	MovementID        int64     `db:"movement_id"`
	WarehouseID       int64     `db:"warehouse_id"`
	ClientName        string    `db:"client_name"`
	ClientDocument    string    `db:"client_document"`
	Declaration       string    `db:"declaration"`
	OperatorName      string    `db:"operator_name"`
	Items             []byte    `db:"items"`
	DocumentRef       string    `db:"document_ref"`
	SignatureImage    []byte    `db:"signature_image"`
	SignedDocumentRef string    `db:"signed_document_ref"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r exitOrderRow) order() (*entity.ExitOrder, error) {
	items, err := entity.ParseItemsSnapshot(r.Items)
	if err != nil {
		return nil, fmt.Errorf("orden %d: %w", r.ID, err)
	}
	return &entity.ExitOrder{
		ID:                r.ID,
		MovementID:        r.MovementID,
		WarehouseID:       r.WarehouseID,
		ClientName:        r.ClientName,
		ClientDocument:    r.ClientDocument,
		Declaration:       r.Declaration,
		OperatorName:      r.OperatorName,
		Items:             items,
		DocumentRef:       r.DocumentRef,
		SignatureImage:    r.SignatureImage,
		SignedDocumentRef: r.SignedDocumentRef,
		CreatedAt:         r.CreatedAt,
	}, nil
}

var exitOrderColumns = []string{
	"o.id", "o.movement_id", "o.warehouse_id", "o.client_name", "o.client_document",
	"o.declaration", "o.operator_name", "o.items", "o.document_ref",
	"o.signature_image", "o.signed_document_ref", "o.created_at",
}

// Create persiste la orden y completa ID y CreatedAt.
func (r *ExitOrderRepo) Create(ctx context.Context, o *entity.ExitOrder) error {
	items, err := o.Items.Marshal()
	if err != nil {
		return fmt.Errorf("create exit order: %w", err)
	}
	const query = `
		INSERT INTO exit_orders (movement_id, warehouse_id, client_name, client_document, declaration,
		                         operator_name, items, document_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
		RETURNING id, created_at`
	err = r.q.QueryRow(ctx, query,
		o.MovementID, o.WarehouseID, o.ClientName, o.ClientDocument, o.Declaration,
		o.OperatorName, items, o.DocumentRef,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.New(domain.KindInvalidInput, "ya existe una orden de salida para ese movimiento")
		}
		return fmt.Errorf("create exit order: %w", err)
	}
	return nil
}

// GetByID obtiene la orden. nil, nil si no existe.
func (r *ExitOrderRepo) GetByID(ctx context.Context, id int64) (*entity.ExitOrder, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate obtiene la orden con SELECT ... FOR UPDATE (requiere transacción).
func (r *ExitOrderRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.ExitOrder, error) {
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *ExitOrderRepo) get(ctx context.Context, id int64, lock string) (*entity.ExitOrder, error) {
	q := psql.Select(exitOrderColumns...).
		From("exit_orders o").
		Where(squirrel.Eq{"o.id": id})
	if lock != "" {
		q = q.Suffix(lock)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var row exitOrderRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exit order: %w", err)
	}
	return row.order()
}

// List órdenes visibles en el alcance, más recientes primero.
func (r *ExitOrderRepo) List(ctx context.Context, scope entity.Scope) ([]*entity.ExitOrder, error) {
	q := psql.Select(exitOrderColumns...).
		From("exit_orders o").
		OrderBy("o.created_at DESC", "o.id DESC")
	if !scope.All {
		q = q.Join("warehouses w ON w.id = o.warehouse_id").
			Where(squirrel.Eq{"w.unit_id": scope.UnitID})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var rows []exitOrderRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list exit orders: %w", err)
	}
	out := make([]*entity.ExitOrder, 0, len(rows))
	for _, row := range rows {
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// SaveSignature sobrescribe la firma y el documento firmado.
func (r *ExitOrderRepo) SaveSignature(ctx context.Context, id int64, signature []byte, signedDocumentRef string) error {
	const query = `
		UPDATE exit_orders SET signature_image = $2, signed_document_ref = $3
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, signature, signedDocumentRef)
	if err != nil {
		return fmt.Errorf("save signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.New(domain.KindNotFound, "orden de salida no encontrada")
	}
	return nil
}
