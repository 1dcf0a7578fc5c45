package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.BalanceRepository   = (*view)(nil)
	_ repository.MovementRepository  = (*view)(nil)
	_ repository.ExitOrderRepository = (*view)(nil)
)

// view opera sobre el estado sin bloquear: el caller ya tiene el mutex.
type view struct {
	st  *state
	now func() time.Time
}

func (v *view) unitOfWork() repository.UnitOfWork {
	return repository.UnitOfWork{
		Balances:   v,
		Movements:  v,
		Products:   productView{v},
		Warehouses: warehouseView{v},
		ExitOrders: v,
	}
}

// ── Balance Store ──

func (v *view) GetForUpdate(_ context.Context, productID, warehouseID int64) (*entity.Balance, error) {
	b, ok := v.st.balances[pairKey{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (v *view) EnsureForUpdate(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error) {
	k := pairKey{productID, warehouseID}
	if _, ok := v.st.balances[k]; !ok {
		v.st.balances[k] = entity.Balance{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.Zero,
			UpdatedAt:   v.now(),
		}
	}
	return v.GetForUpdate(ctx, productID, warehouseID)
}

func (v *view) Update(_ context.Context, b *entity.Balance) error {
	k := pairKey{b.ProductID, b.WarehouseID}
	if _, ok := v.st.balances[k]; !ok {
		return domain.New(domain.KindNotFound, "saldo no encontrado")
	}
	if b.Quantity.IsNegative() {
		return domain.New(domain.KindInsufficientStock, "el saldo no puede quedar negativo")
	}
	b.UpdatedAt = v.now()
	v.st.balances[k] = *b
	return nil
}

func (v *view) Get(ctx context.Context, productID, warehouseID int64) (*entity.Balance, error) {
	return v.GetForUpdate(ctx, productID, warehouseID)
}

// ── Movement Log ──

func (v *view) Append(_ context.Context, m *entity.Movement) error {
	m.ID = int64(len(v.st.movements)) + 1
	m.CreatedAt = v.now()
	v.st.movements = append(v.st.movements, *m)
	return nil
}

func (v *view) GetDetails(_ context.Context, ids []int64) ([]entity.MovementDetail, error) {
	out := make([]entity.MovementDetail, 0, len(ids))
	for _, id := range ids {
		if id < 1 || id > int64(len(v.st.movements)) {
			continue
		}
		out = append(out, v.detail(v.st.movements[id-1]))
	}
	return out, nil
}

func (v *view) detail(m entity.Movement) entity.MovementDetail {
	d := entity.MovementDetail{Movement: m}
	if p, ok := v.st.products[m.ProductID]; ok {
		d.ProductName = p.Name
		d.ProductUnit = p.Unit
	}
	if w, ok := v.st.warehouses[m.WarehouseID]; ok {
		d.WarehouseName = w.Name
	}
	if m.UserID != nil {
		if u, ok := v.st.users[*m.UserID]; ok {
			d.UserName = u.Name
		}
	}
	return d
}

func (v *view) ListByPair(_ context.Context, productID, warehouseID int64) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := range v.st.movements {
		m := v.st.movements[i]
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			out = append(out, &m)
		}
	}
	return out, nil
}

// ── Exit orders ──

func (v *view) Create(_ context.Context, o *entity.ExitOrder) error {
	o.ID = int64(len(v.st.orders)) + 1
	o.CreatedAt = v.now()
	v.st.orders = append(v.st.orders, *o)
	return nil
}

func (v *view) GetByID(_ context.Context, id int64) (*entity.ExitOrder, error) {
	if id < 1 || id > int64(len(v.st.orders)) {
		return nil, nil
	}
	o := v.st.orders[id-1]
	return &o, nil
}

// GetByIDForUpdate: el mutex del store ya serializa la transacción.
func (v *view) GetByIDForUpdate(ctx context.Context, id int64) (*entity.ExitOrder, error) {
	return v.GetByID(ctx, id)
}

func (v *view) List(_ context.Context, scope entity.Scope) ([]*entity.ExitOrder, error) {
	out := make([]*entity.ExitOrder, 0, len(v.st.orders))
	for i := len(v.st.orders) - 1; i >= 0; i-- {
		o := v.st.orders[i]
		if !v.inScope(scope, o.WarehouseID) {
			continue
		}
		out = append(out, &o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v *view) SaveSignature(_ context.Context, id int64, signature []byte, signedDocumentRef string) error {
	if id < 1 || id > int64(len(v.st.orders)) {
		return domain.New(domain.KindNotFound, "orden de salida no encontrada")
	}
	o := v.st.orders[id-1]
	o.SignatureImage = append([]byte(nil), signature...)
	o.SignedDocumentRef = signedDocumentRef
	v.st.orders[id-1] = o
	return nil
}

func (v *view) inScope(scope entity.Scope, warehouseID int64) bool {
	if scope.All {
		return true
	}
	w, ok := v.st.warehouses[warehouseID]
	if !ok {
		return false
	}
	return w.BelongsTo(&scope.UnitID)
}

// ── Catálogo ──

type productView struct{ v *view }

func (p productView) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	prod, ok := p.v.st.products[id]
	if !ok {
		return nil, nil
	}
	return &prod, nil
}

type warehouseView struct{ v *view }

func (w warehouseView) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	wh, ok := w.v.st.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &wh, nil
}

// ── Lectores fuera de transacción ──

type warehouseReader struct{ s *Store }

func (r warehouseReader) GetByID(ctx context.Context, id int64) (wh *entity.Warehouse, err error) {
	err = r.s.locked(func(v *view) error {
		wh, err = warehouseView{v}.GetByID(ctx, id)
		return err
	})
	return wh, err
}

type productReader struct{ s *Store }

func (r productReader) GetByID(ctx context.Context, id int64) (p *entity.Product, err error) {
	err = r.s.locked(func(v *view) error {
		p, err = productView{v}.GetByID(ctx, id)
		return err
	})
	return p, err
}

type exitOrderReader struct{ s *Store }

func (r exitOrderReader) Create(ctx context.Context, o *entity.ExitOrder) error {
	return r.s.locked(func(v *view) error { return v.Create(ctx, o) })
}

func (r exitOrderReader) GetByID(ctx context.Context, id int64) (o *entity.ExitOrder, err error) {
	err = r.s.locked(func(v *view) error {
		o, err = v.GetByID(ctx, id)
		return err
	})
	return o, err
}

func (r exitOrderReader) GetByIDForUpdate(ctx context.Context, id int64) (*entity.ExitOrder, error) {
	return r.GetByID(ctx, id)
}

func (r exitOrderReader) List(ctx context.Context, scope entity.Scope) (out []*entity.ExitOrder, err error) {
	err = r.s.locked(func(v *view) error {
		out, err = v.List(ctx, scope)
		return err
	})
	return out, err
}

func (r exitOrderReader) SaveSignature(ctx context.Context, id int64, signature []byte, ref string) error {
	return r.s.locked(func(v *view) error { return v.SaveSignature(ctx, id, signature, ref) })
}

type userReader struct{ s *Store }

func (r userReader) GetByID(_ context.Context, id int64) (u *entity.User, err error) {
	err = r.s.locked(func(v *view) error {
		if found, ok := v.st.users[id]; ok {
			u = &found
		}
		return nil
	})
	return u, err
}
