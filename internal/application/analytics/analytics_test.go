package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type fixture struct {
	store     *memory.Store
	reports   *analytics.ReportUseCase
	dashboard *analytics.DashboardUseCase
	unit1     int64
	unit2     int64
	wh1       int64
	wh2       int64
	sup1      entity.Principal
	sup2      entity.Principal
	root      entity.Principal
	user1     entity.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{store: s}
	f.unit1 = s.AddUnit(entity.Unit{Name: "Unidad 1"})
	f.unit2 = s.AddUnit(entity.Unit{Name: "Unidad 2"})
	f.wh1 = s.AddWarehouse(entity.Warehouse{Name: "Bodega Norte", UnitID: &f.unit1})
	f.wh2 = s.AddWarehouse(entity.Warehouse{Name: "Bodega Sur", UnitID: &f.unit2})
	pA := s.AddProduct(entity.Product{Name: "Arroz", Unit: "KG"})
	pB := s.AddProduct(entity.Product{Name: "Bolsas", Unit: "UN"})
	s.AddProduct(entity.Product{Name: "Cajas", Unit: "UN"})

	f.sup1 = entity.Principal{UserID: 1, Name: "Ana", Role: entity.RoleSupervisor, UnitID: &f.unit1}
	f.sup2 = entity.Principal{UserID: 2, Name: "Luis", Role: entity.RoleSupervisor, UnitID: &f.unit2}
	f.root = entity.Principal{UserID: 3, Name: "Root", Role: entity.RoleSuperAdmin}
	f.user1 = entity.Principal{UserID: 4, Name: "Pedro", Role: entity.RoleUser, UnitID: &f.unit1}

	gate := access.NewGate(s.Warehouses())
	engine := inventory.NewMovementEngine(s, gate, logger.Nop(), nil)
	ctx := context.Background()
	in := func(p entity.Principal, prod, wh int64, q string) {
		_, err := engine.RecordEntry(ctx, p, inventory.MovementInput{ProductID: prod, WarehouseID: wh, Quantity: decimal.RequireFromString(q)})
		require.NoError(t, err)
	}
	in(f.sup1, pA, f.wh1, "10")
	in(f.sup1, pB, f.wh1, "4")
	in(f.sup2, pA, f.wh2, "7")
	_, err := engine.RecordExit(ctx, f.sup1, inventory.MovementInput{ProductID: pB, WarehouseID: f.wh1, Quantity: decimal.RequireFromString("4")})
	require.NoError(t, err)

	f.reports = analytics.NewReportUseCase(s.Reports(), gate)
	f.dashboard = analytics.NewDashboardUseCase(s.Reports())
	return f
}

func TestStockReport_AcotadoPorUnidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows, err := f.reports.StockReport(ctx, f.sup1, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Arroz", rows[0].Product)
	assert.Equal(t, "Bolsas", rows[1].Product)
	assert.True(t, rows[1].CurrentQuantity.IsZero())
	assert.True(t, rows[1].TotalEntries.Equal(decimal.NewFromInt(4)))

	all, err := f.reports.StockReport(ctx, f.root, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStockReport_FiltroDeBodegaAjena(t *testing.T) {
	f := newFixture(t)

	_, err := f.reports.StockReport(context.Background(), f.sup1, &f.wh2)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	rows, err := f.reports.StockReport(context.Background(), f.root, &f.wh2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bodega Sur", rows[0].Warehouse)
}

func TestStockReport_SinUnidad(t *testing.T) {
	f := newFixture(t)
	orphan := entity.Principal{UserID: 9, Role: entity.RoleAdmin}

	_, err := f.reports.StockReport(context.Background(), orphan, nil)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestMovementReport_RolUsuarioSoloVeLosSuyos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows, err := f.reports.MovementReport(ctx, f.user1, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)

	rows, err = f.reports.MovementReport(ctx, f.sup1, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, string(entity.MovementExit), rows[0].Type, "más reciente primero")
	for _, r := range rows {
		assert.Equal(t, f.wh1, r.WarehouseID)
	}
}

func TestMovementReport_RolUsuarioVeSusMovimientosEnCualquierUnidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// sup1 (UserID 1) registró 3 movimientos en la Bodega Norte; luego pasa a rol user.
	sinUnidad := entity.Principal{UserID: f.sup1.UserID, Role: entity.RoleUser}
	rows, err := f.reports.MovementReport(ctx, sinUnidad, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		require.NotNil(t, r.UserID)
		assert.Equal(t, f.sup1.UserID, *r.UserID)
		assert.Equal(t, f.wh1, r.WarehouseID)
	}

	otraUnidad := entity.Principal{UserID: f.sup1.UserID, Role: entity.RoleUser, UnitID: &f.unit2}
	rows, err = f.reports.MovementReport(ctx, otraUnidad, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = f.reports.MovementReport(ctx, otraUnidad, repository.MovementFilter{WarehouseID: &f.wh1, Type: entity.MovementExit})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, string(entity.MovementExit), rows[0].Type)

	rows, err = f.reports.MovementReport(ctx, otraUnidad, repository.MovementFilter{WarehouseID: &f.wh2})
	require.NoError(t, err)
	assert.Empty(t, rows, "sup2 movió la Bodega Sur, no este usuario")
}

func TestMovementReport_Filtros(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows, err := f.reports.MovementReport(ctx, f.root, repository.MovementFilter{Type: entity.MovementEntry})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = f.reports.MovementReport(ctx, f.root, repository.MovementFilter{WarehouseID: &f.wh2})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.reports.MovementReport(ctx, f.root, repository.MovementFilter{Type: "TRANSFER"})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = f.reports.MovementReport(ctx, f.root, repository.MovementFilter{From: &from, To: &to})
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	_, err = f.reports.MovementReport(ctx, f.sup2, repository.MovementFilter{WarehouseID: &f.wh1})
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestDashboard_ResumenPorAlcance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sum, err := f.dashboard.GetSummary(ctx, f.sup1)
	require.NoError(t, err)
	assert.True(t, sum.Cards.TotalStockQuantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, sum.Cards.ProductsWithStock)
	assert.Equal(t, 3, sum.Cards.TotalProducts)
	assert.Equal(t, 1, sum.Cards.TotalWarehouses)
	assert.Equal(t, 3, sum.Cards.TotalMovementsMonth)
	assert.Equal(t, 2, sum.Cards.EntriesMonth)
	assert.Equal(t, 1, sum.Cards.ExitsMonth)

	require.Len(t, sum.Charts.MovementsByMonth, 6)
	last := sum.Charts.MovementsByMonth[5]
	assert.Equal(t, time.Now().Format("2006-01"), last.Period)
	assert.Equal(t, 3, last.Total)
	assert.Zero(t, sum.Charts.MovementsByMonth[0].Total)

	require.Len(t, sum.Charts.MovementsByWarehouse, 1)
	assert.Equal(t, "Bodega Norte", sum.Charts.MovementsByWarehouse[0].Name)
	assert.NotEmpty(t, sum.DateLabel)
}

func TestDashboard_SuperAdminVeTodo(t *testing.T) {
	f := newFixture(t)

	sum, err := f.dashboard.GetSummary(context.Background(), f.root)
	require.NoError(t, err)
	assert.True(t, sum.Cards.TotalStockQuantity.Equal(decimal.NewFromInt(17)))
	assert.Equal(t, 2, sum.Cards.TotalWarehouses)
	assert.Equal(t, 4, sum.Cards.TotalMovementsMonth)
	require.Len(t, sum.Charts.MovementsByWarehouse, 2)
	assert.Equal(t, "Bodega Norte", sum.Charts.MovementsByWarehouse[0].Name)
}

func TestDashboard_SinMovimientos(t *testing.T) {
	s := memory.NewStore()
	unit := s.AddUnit(entity.Unit{Name: "Vacía"})
	uc := analytics.NewDashboardUseCase(s.Reports())

	sum, err := uc.GetSummary(context.Background(), entity.Principal{UserID: 1, Role: entity.RoleAdmin, UnitID: &unit})
	require.NoError(t, err)
	assert.True(t, sum.Cards.TotalStockQuantity.IsZero())
	assert.Len(t, sum.Charts.MovementsByMonth, 6)
	assert.NotNil(t, sum.Charts.MovementsByWarehouse)
}
