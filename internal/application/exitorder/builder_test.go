package exitorder_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// fakeRenderer guarda los documentos en un mapa; fail fuerza error en Render.
type fakeRenderer struct {
	mu          sync.Mutex
	docs        map[string]string
	fail        bool
	renders     int
	signedCalls int
}

func (f *fakeRenderer) Render(_ context.Context, doc exitorder.ExitDocument) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("disco lleno")
	}
	f.renders++
	ref := fmt.Sprintf("os-%d.pdf", doc.Number)
	f.docs[ref] = fmt.Sprintf("%s|%d ítems", doc.ClientName, len(doc.Items.Items))
	return ref, nil
}

func (f *fakeRenderer) RenderSigned(_ context.Context, o *entity.ExitOrder, sig exitorder.Signature) (string, error) {
	f.mu.Lock()
	f.signedCalls++
	f.mu.Unlock()
	ref := fmt.Sprintf("os-%d-firmada.pdf", o.MovementID)
	// ventana entre generar y guardar: sin bloqueo de la orden otra firma se intercala aquí
	time.Sleep(time.Millisecond)
	f.mu.Lock()
	f.docs[ref] = "firmada " + base64.StdEncoding.EncodeToString(sig.Image)
	f.mu.Unlock()
	return ref, nil
}

func (f *fakeRenderer) URL(_ context.Context, ref string) (string, error) {
	return "/files/" + ref, nil
}

func (f *fakeRenderer) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.docs[ref]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), "application/pdf", nil
}

type fixture struct {
	store    *memory.Store
	engine   *inventory.MovementEngine
	builder  *exitorder.Builder
	renderer *fakeRenderer
	unit1    int64
	unit2    int64
	wh1      int64
	wh2      int64
	productA int64
	productB int64
	sup      entity.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{store: s, renderer: &fakeRenderer{docs: map[string]string{}}}
	f.unit1 = s.AddUnit(entity.Unit{Name: "Unidad 1"})
	f.unit2 = s.AddUnit(entity.Unit{Name: "Unidad 2"})
	f.wh1 = s.AddWarehouse(entity.Warehouse{Name: "Bodega 1", UnitID: &f.unit1})
	f.wh2 = s.AddWarehouse(entity.Warehouse{Name: "Bodega 2", UnitID: &f.unit2})
	f.productA = s.AddProduct(entity.Product{Name: "Guantes", Unit: "CX"})
	f.productB = s.AddProduct(entity.Product{Name: "Papel A4", Unit: "UN"})
	uid := s.AddUser(entity.User{Name: "Sofía", Role: entity.RoleSupervisor, UnitID: &f.unit1})
	f.sup = entity.Principal{UserID: uid, Name: "Sofía", Role: entity.RoleSupervisor, UnitID: &f.unit1}

	gate := access.NewGate(s.Warehouses())
	f.engine = inventory.NewMovementEngine(s, gate, logger.Nop(), nil)
	f.builder = exitorder.NewBuilder(s, f.engine, gate, s.ExitOrders(), f.renderer, f.renderer, logger.Nop(), nil)

	root := entity.Principal{UserID: 1, Role: entity.RoleSuperAdmin}
	for _, wh := range []int64{f.wh1, f.wh2} {
		_, err := f.engine.RecordEntryBatch(context.Background(), root, inventory.BatchInput{
			WarehouseID: wh,
			Items: []inventory.BatchItem{
				{ProductID: f.productA, Quantity: decimal.NewFromInt(10)},
				{ProductID: f.productB, Quantity: decimal.NewFromInt(5)},
			},
		})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) dispatch(t *testing.T) *exitorder.DispatchResult {
	t.Helper()
	res, err := f.builder.Dispatch(context.Background(), f.sup, exitorder.DispatchInput{
		WarehouseID: f.wh1,
		Items: []inventory.BatchItem{
			{ProductID: f.productA, Quantity: decimal.RequireFromString("2.5")},
			{ProductID: f.productB, Quantity: decimal.NewFromInt(1)},
		},
		ClientName:     "Laura Gómez",
		ClientDocument: "CC 1020",
	})
	require.NoError(t, err)
	return res
}

const pngDataURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func TestDispatch_CreaOrdenConSnapshot(t *testing.T) {
	f := newFixture(t)
	before := len(f.store.Movements())

	res := f.dispatch(t)
	require.Len(t, res.MovementIDs, 2)
	assert.Equal(t, res.MovementIDs[0], res.MovementID)
	assert.Equal(t, fmt.Sprintf("/files/os-%d.pdf", res.MovementID), res.DocumentURL)
	assert.Len(t, f.store.Movements(), before+2)

	views, err := f.builder.List(context.Background(), f.sup)
	require.NoError(t, err)
	require.Len(t, views, 1)
	v := views[0]
	assert.Equal(t, res.OrderID, v.ID)
	assert.Equal(t, "Sofía", v.OperatorName)
	assert.Equal(t, entity.DefaultDeclaration, v.Declaration)
	assert.False(t, v.IsSigned)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Guantes", v.Items[0].Product)
	assert.True(t, v.Items[0].Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "Bodega 1", v.Items[0].Warehouse)
}

func TestDispatch_SnapshotSobreviveRenombrado(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t)

	f.store.RenameProduct(f.productA, "Guantes de látex")

	views, err := f.builder.List(context.Background(), f.sup)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Guantes", views[0].Items[0].Product)
}

func TestDispatch_StockInsuficienteNoCreaOrden(t *testing.T) {
	f := newFixture(t)
	before := len(f.store.Movements())

	_, err := f.builder.Dispatch(context.Background(), f.sup, exitorder.DispatchInput{
		WarehouseID: f.wh1,
		Items: []inventory.BatchItem{
			{ProductID: f.productA, Quantity: decimal.NewFromInt(1)},
			{ProductID: f.productB, Quantity: decimal.NewFromInt(6)},
		},
		ClientName: "Laura",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, domain.IndexOf(err))
	assert.Len(t, f.store.Movements(), before)

	views, err := f.builder.List(context.Background(), f.sup)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestDispatch_FalloDeDocumentoRevierteLasSalidas(t *testing.T) {
	f := newFixture(t)
	f.renderer.fail = true
	before := len(f.store.Movements())

	_, err := f.builder.Dispatch(context.Background(), f.sup, exitorder.DispatchInput{
		WarehouseID: f.wh1,
		Items:       []inventory.BatchItem{{ProductID: f.productA, Quantity: decimal.NewFromInt(1)}},
		ClientName:  "Laura",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Len(t, f.store.Movements(), before)
	for _, b := range f.store.Balances() {
		if b.ProductID == f.productA && b.WarehouseID == f.wh1 {
			assert.True(t, b.Quantity.Equal(decimal.NewFromInt(10)))
		}
	}
}

func TestDispatch_Validaciones(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.Dispatch(context.Background(), f.sup, exitorder.DispatchInput{
		WarehouseID: f.wh1,
		Items:       []inventory.BatchItem{{ProductID: f.productA, Quantity: decimal.NewFromInt(1)}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = f.builder.Dispatch(context.Background(), f.sup, exitorder.DispatchInput{
		WarehouseID: f.wh2,
		Items:       []inventory.BatchItem{{ProductID: f.productA, Quantity: decimal.NewFromInt(1)}},
		ClientName:  "Laura",
	})
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAttachSignature_Idempotente(t *testing.T) {
	f := newFixture(t)
	res := f.dispatch(t)

	v1, err := f.builder.AttachSignature(context.Background(), f.sup, res.OrderID, pngDataURL)
	require.NoError(t, err)
	assert.True(t, v1.IsSigned)
	assert.Equal(t, fmt.Sprintf("/files/os-%d-firmada.pdf", res.MovementID), v1.DocumentURL)

	v2, err := f.builder.AttachSignature(context.Background(), f.sup, res.OrderID, pngDataURL)
	require.NoError(t, err)
	assert.Equal(t, v1.DocumentURL, v2.DocumentURL)
	assert.Equal(t, 2, f.renderer.signedCalls)

	views, err := f.builder.List(context.Background(), f.sup)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsSigned)
	assert.Equal(t, v1.DocumentURL, views[0].DocumentURL)

	dl, err := f.builder.Document(context.Background(), f.sup, res.OrderID)
	require.NoError(t, err)
	defer dl.Body.Close()
	assert.Equal(t, fmt.Sprintf("OS-SALIDA-%d-firmada.pdf", res.MovementID), dl.Filename)
}

func TestAttachSignature_ConcurrentesQuedanConsistentes(t *testing.T) {
	f := newFixture(t)
	res := f.dispatch(t)

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(pngDataURL, "data:image/png;base64,"))
	require.NoError(t, err)

	const firmas = 8
	var wg sync.WaitGroup
	errs := make(chan error, firmas)
	for i := 0; i < firmas; i++ {
		img := append(append([]byte(nil), png...), byte(i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.builder.AttachSignature(context.Background(), f.sup, res.OrderID,
				"data:image/png;base64,"+base64.StdEncoding.EncodeToString(img))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	order, err := f.store.ExitOrders().GetByID(context.Background(), res.OrderID)
	require.NoError(t, err)
	require.True(t, order.IsSigned())

	dl, err := f.builder.Document(context.Background(), f.sup, res.OrderID)
	require.NoError(t, err)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "firmada "+base64.StdEncoding.EncodeToString(order.SignatureImage), string(body),
		"la firma guardada debe ser la del documento firmado vigente")
	assert.Equal(t, firmas, f.renderer.signedCalls)
}

func TestAttachSignature_Errores(t *testing.T) {
	f := newFixture(t)
	res := f.dispatch(t)

	_, err := f.builder.AttachSignature(context.Background(), f.sup, 999, pngDataURL)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.builder.AttachSignature(context.Background(), f.sup, res.OrderID, "no-es-data-url")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	other := entity.Principal{UserID: 50, Role: entity.RoleAdmin, UnitID: &f.unit2}
	_, err = f.builder.AttachSignature(context.Background(), other, res.OrderID, pngDataURL)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	user := entity.Principal{UserID: 51, Role: entity.RoleUser, UnitID: &f.unit1}
	_, err = f.builder.AttachSignature(context.Background(), user, res.OrderID, pngDataURL)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, 0, f.renderer.signedCalls)
}

func TestList_AlcancePorUnidad(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t)
	root := entity.Principal{UserID: 1, Role: entity.RoleSuperAdmin}
	_, err := f.builder.Dispatch(context.Background(), root, exitorder.DispatchInput{
		WarehouseID: f.wh2,
		Items:       []inventory.BatchItem{{ProductID: f.productA, Quantity: decimal.NewFromInt(1)}},
		ClientName:  "Pedro",
	})
	require.NoError(t, err)

	all, err := f.builder.List(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Pedro", all[0].ClientName)

	mine, err := f.builder.List(context.Background(), f.sup)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Laura Gómez", mine[0].ClientName)

	noUnit := entity.Principal{UserID: 9, Role: entity.RoleAdmin}
	_, err = f.builder.List(context.Background(), noUnit)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDocument_LecturaPorUnidad(t *testing.T) {
	f := newFixture(t)
	res := f.dispatch(t)

	reader := entity.Principal{UserID: 60, Role: entity.RoleUser, UnitID: &f.unit1}
	dl, err := f.builder.Document(context.Background(), reader, res.OrderID)
	require.NoError(t, err)
	body, _ := io.ReadAll(dl.Body)
	_ = dl.Body.Close()
	assert.Equal(t, "Laura Gómez|2 ítems", string(body))
	assert.Equal(t, fmt.Sprintf("OS-SALIDA-%d.pdf", res.MovementID), dl.Filename)

	stranger := entity.Principal{UserID: 61, Role: entity.RoleUser, UnitID: &f.unit2}
	_, err = f.builder.Document(context.Background(), stranger, res.OrderID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.builder.Document(context.Background(), reader, 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestParseSignatureDataURL(t *testing.T) {
	sig, err := exitorder.ParseSignatureDataURL(pngDataURL)
	require.NoError(t, err)
	assert.Equal(t, exitorder.FormatPNG, sig.Format)

	jpeg := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0, 1, 2})
	sig, err = exitorder.ParseSignatureDataURL(jpeg)
	require.NoError(t, err)
	assert.Equal(t, exitorder.FormatJPEG, sig.Format)

	bad := []string{
		"",
		"data:image/gif;base64,R0lGOD",
		"data:image/png;base64,@@@",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("no es png")),
		"image/png;base64,abc",
	}
	for _, raw := range bad {
		_, err := exitorder.ParseSignatureDataURL(raw)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), raw)
	}
}
