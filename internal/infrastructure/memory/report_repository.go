package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = reportRepo{}

type reportRepo struct{ s *Store }

func (r reportRepo) StockReport(_ context.Context, scope entity.Scope, warehouseID *int64) (rows []repository.StockReportRow, err error) {
	err = r.s.locked(func(v *view) error {
		entries := map[pairKey]decimal.Decimal{}
		for _, m := range v.st.movements {
			if m.Type == entity.MovementEntry {
				k := pairKey{m.ProductID, m.WarehouseID}
				entries[k] = entries[k].Add(m.Quantity)
			}
		}
		for k, b := range v.st.balances {
			if warehouseID != nil && k.warehouseID != *warehouseID {
				continue
			}
			if !v.inScope(scope, k.warehouseID) {
				continue
			}
			w := v.st.warehouses[k.warehouseID]
			p := v.st.products[k.productID]
			rows = append(rows, repository.StockReportRow{
				WarehouseID:     w.ID,
				Warehouse:       w.Name,
				ProductID:       p.ID,
				Product:         p.Name,
				ProductUnit:     p.Unit,
				CurrentQuantity: b.Quantity,
				TotalEntries:    entries[k],
			})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Warehouse != rows[j].Warehouse {
				return rows[i].Warehouse < rows[j].Warehouse
			}
			if rows[i].Product != rows[j].Product {
				return rows[i].Product < rows[j].Product
			}
			return rows[i].ProductID < rows[j].ProductID
		})
		return nil
	})
	return rows, err
}

func (r reportRepo) MovementReport(_ context.Context, scope entity.MovementScope, f repository.MovementFilter) (rows []repository.MovementReportRow, err error) {
	err = r.s.locked(func(v *view) error {
		for i := len(v.st.movements) - 1; i >= 0; i-- {
			m := v.st.movements[i]
			if !v.inScope(scope.Scope, m.WarehouseID) {
				continue
			}
			if scope.OnlyUserID != nil && (m.UserID == nil || *m.UserID != *scope.OnlyUserID) {
				continue
			}
			if f.WarehouseID != nil && m.WarehouseID != *f.WarehouseID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.CreatedAt.Before(*f.To) {
				continue
			}
			d := v.detail(m)
			row := repository.MovementReportRow{
				ID:               m.ID,
				CreatedAt:        m.CreatedAt,
				Type:             string(m.Type),
				Quantity:         m.Quantity,
				PreviousQuantity: m.PreviousQuantity,
				NewQuantity:      m.NewQuantity,
				Description:      m.Description,
				Product:          d.ProductName,
				ProductUnit:      d.ProductUnit,
				WarehouseID:      m.WarehouseID,
				Warehouse:        d.WarehouseName,
				UserID:           m.UserID,
			}
			if m.UserID != nil {
				name := d.UserName
				row.UserName = &name
			}
			rows = append(rows, row)
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
		return nil
	})
	return rows, err
}

func (r reportRepo) StockTotals(_ context.Context, scope entity.Scope) (t repository.StockTotals, err error) {
	err = r.s.locked(func(v *view) error {
		t.TotalQuantity = decimal.Zero
		withStock := map[int64]struct{}{}
		for k, b := range v.st.balances {
			if !v.inScope(scope, k.warehouseID) {
				continue
			}
			t.TotalQuantity = t.TotalQuantity.Add(b.Quantity)
			if b.Quantity.IsPositive() {
				withStock[k.productID] = struct{}{}
			}
		}
		t.ProductsWithStock = len(withStock)
		t.TotalProducts = len(v.st.products)
		for id := range v.st.warehouses {
			if v.inScope(scope, id) {
				t.TotalWarehouses++
			}
		}
		return nil
	})
	return t, err
}

func (r reportRepo) MovementCountsBetween(_ context.Context, scope entity.Scope, from, to time.Time) (c repository.MovementCounts, err error) {
	err = r.s.locked(func(v *view) error {
		for _, m := range v.st.movements {
			if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) || !v.inScope(scope, m.WarehouseID) {
				continue
			}
			c.Add(m.Type)
		}
		return nil
	})
	return c, err
}

func (r reportRepo) MovementsByMonth(_ context.Context, scope entity.Scope, since time.Time) (out []repository.MovementCounts, err error) {
	err = r.s.locked(func(v *view) error {
		byMonth := map[string]*repository.MovementCounts{}
		for _, m := range v.st.movements {
			if m.CreatedAt.Before(since) || !v.inScope(scope, m.WarehouseID) {
				continue
			}
			period := m.CreatedAt.Format("2006-01")
			c, ok := byMonth[period]
			if !ok {
				c = &repository.MovementCounts{Period: period}
				byMonth[period] = c
			}
			c.Add(m.Type)
		}
		for _, c := range byMonth {
			out = append(out, *c)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
		return nil
	})
	return out, err
}

func (r reportRepo) MovementsByWarehouse(_ context.Context, scope entity.Scope) (out []repository.WarehouseActivity, err error) {
	err = r.s.locked(func(v *view) error {
		totals := map[int64]int{}
		for _, m := range v.st.movements {
			if v.inScope(scope, m.WarehouseID) {
				totals[m.WarehouseID]++
			}
		}
		for id, n := range totals {
			out = append(out, repository.WarehouseActivity{ID: id, Name: v.st.warehouses[id].Name, Total: n})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Total != out[j].Total {
				return out[i].Total > out[j].Total
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
