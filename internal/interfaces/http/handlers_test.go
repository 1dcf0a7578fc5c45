package http_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/access"
	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type apiFixture struct {
	app      *fiber.App
	unit1    int64
	unit2    int64
	wh1      int64
	wh2      int64
	product  int64
	sup      string
	user     string
	outsider string
	root     string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := memory.NewStore()
	f := &apiFixture{}
	f.unit1 = s.AddUnit(entity.Unit{Name: "Unidad 1"})
	f.unit2 = s.AddUnit(entity.Unit{Name: "Unidad 2"})
	f.wh1 = s.AddWarehouse(entity.Warehouse{Name: "Bodega 1", UnitID: &f.unit1})
	f.wh2 = s.AddWarehouse(entity.Warehouse{Name: "Bodega 2", UnitID: &f.unit2})
	f.product = s.AddProduct(entity.Product{Name: "Cemento", Unit: "UN"})
	supID := s.AddUser(entity.User{Name: "Sofía", Role: entity.RoleSupervisor, UnitID: &f.unit1})
	userID := s.AddUser(entity.User{Name: "Pedro", Role: entity.RoleUser, UnitID: &f.unit1})
	outID := s.AddUser(entity.User{Name: "Luis", Role: entity.RoleSupervisor, UnitID: &f.unit2})

	log := logger.Nop()
	rec := metrics.NewRecorder()
	gate := access.NewGate(s.Warehouses())
	engine := inventory.NewMovementEngine(s, gate, log, rec)
	renderer := pdf.NewDocumentRenderer(pdf.NewMarotoPDFGenerator("Orden de Salida", "es-CO"), storage.NewMemory())
	builder := exitorder.NewBuilder(s, engine, gate, s.ExitOrders(), renderer, renderer, log, rec)

	f.app = fiber.New()
	apphttp.Router(f.app, apphttp.RouterDeps{
		Engine:      engine,
		ExitOrders:  builder,
		Reports:     analytics.NewReportUseCase(s.Reports(), gate),
		DashboardUC: analytics.NewDashboardUseCase(s.Reports()),
		Metrics:     rec.Handler(),
		JWTSecret:   testJWTSecret,
		Log:         log,
	})

	f.sup = bearer(t, pkgjwt.Subject{UserID: supID, Name: "Sofía", Role: "supervisor", UnitID: &f.unit1})
	f.user = bearer(t, pkgjwt.Subject{UserID: userID, Name: "Pedro", Role: "user", UnitID: &f.unit1})
	f.outsider = bearer(t, pkgjwt.Subject{UserID: outID, Name: "Luis", Role: "supervisor", UnitID: &f.unit2})
	f.root = bearer(t, pkgjwt.Subject{UserID: 99, Name: "Root", Role: "super_admin"})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) entry(t *testing.T, qty string) {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/stock/entries", f.sup, map[string]any{
		"product_id": f.product, "warehouse_id": f.wh1, "quantity": qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func signatureDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	for x := 0; x < 30; x++ {
		img.Set(x, 5, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestAPI_EntradaYSalida(t *testing.T) {
	f := newAPI(t)
	f.entry(t, "10")

	resp := f.do(t, http.MethodPost, "/api/stock/exits", f.sup, map[string]any{
		"product_id": f.product, "warehouse_id": f.wh1, "quantity": 4,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, int64(2), out.MovementID)
}

func TestAPI_StockInsuficienteEs409(t *testing.T) {
	f := newAPI(t)
	f.entry(t, "5")

	resp := f.do(t, http.MethodPost, "/api/stock/exits", f.sup, map[string]any{
		"product_id": f.product, "warehouse_id": f.wh1, "quantity": "8",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Nil(t, body.Index)
}

func TestAPI_SinRegistroDeStockEs409(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/stock/exits", f.sup, map[string]any{
		"product_id": f.product, "warehouse_id": f.wh1, "quantity": "1",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_STOCK_RECORD", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_LoteReportaIndice(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/stock/entries/batch", f.sup, map[string]any{
		"warehouse_id": f.wh1,
		"items": []map[string]any{
			{"product_id": f.product, "quantity": "2"},
			{"product_id": f.product, "quantity": "0"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	require.NotNil(t, body.Index)
	assert.Equal(t, 1, *body.Index)
}

func TestAPI_Permisos(t *testing.T) {
	f := newAPI(t)
	payload := map[string]any{"product_id": f.product, "warehouse_id": f.wh1, "quantity": "1"}

	resp := f.do(t, http.MethodPost, "/api/stock/entries", f.user, payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/stock/entries", f.outsider, payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/stock/entries", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	missing := map[string]any{"product_id": f.product, "warehouse_id": 999, "quantity": "1"}
	resp = f.do(t, http.MethodPost, "/api/stock/entries", f.root, missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_CuerpoInvalido(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/stock/entries", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.sup)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestAPI_DespachoFirmaYDescarga(t *testing.T) {
	f := newAPI(t)
	f.entry(t, "10")

	resp := f.do(t, http.MethodPost, "/api/stock/dispatch", f.sup, map[string]any{
		"warehouse_id": f.wh1,
		"client_name":  "Constructora Andina",
		"items":        []map[string]any{{"product_id": f.product, "quantity": "3"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[exitorder.DispatchResult](t, resp)
	assert.Equal(t, int64(2), res.MovementID)
	assert.Equal(t, "memory://exit-orders/OS-SALIDA-2.pdf", res.DocumentURL)

	resp = f.do(t, http.MethodGet, "/api/exit-orders", f.sup, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]exitorder.View](t, resp)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsSigned)

	resp = f.do(t, http.MethodGet, "/api/exit-orders", f.outsider, nil)
	assert.Empty(t, decode[[]exitorder.View](t, resp))

	sign := map[string]any{"signatureDataUrl": signatureDataURL(t)}
	path := "/api/exit-orders/" + jsonInt(res.OrderID) + "/sign"
	for i := 0; i < 2; i++ {
		resp = f.do(t, http.MethodPost, path, f.sup, sign)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		v := decode[exitorder.View](t, resp)
		assert.True(t, v.IsSigned)
		assert.Equal(t, "memory://exit-orders/OS-SALIDA-2-firmada.pdf", v.DocumentURL)
	}

	resp = f.do(t, http.MethodGet, "/api/exit-orders/"+jsonInt(res.OrderID)+"/document", f.sup, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "OS-SALIDA-2-firmada.pdf")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = f.do(t, http.MethodGet, "/api/exit-orders/"+jsonInt(res.OrderID)+"/document", f.outsider, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/exit-orders/999/sign", f.sup, sign)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ReportesYDashboard(t *testing.T) {
	f := newAPI(t)
	f.entry(t, "6.5")

	resp := f.do(t, http.MethodGet, "/api/reports/stock", f.sup, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := decode[[]map[string]any](t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cemento", rows[0]["product"])

	resp = f.do(t, http.MethodGet, "/api/reports/stock?warehouse_id="+jsonInt(f.wh2), f.sup, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/reports/movements", f.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]map[string]any](t, resp), "user solo ve sus movimientos")

	resp = f.do(t, http.MethodGet, "/api/reports/movements?type=entry&from=2000-01-01", f.sup, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = f.do(t, http.MethodGet, "/api/reports/movements?from=ayer", f.sup, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/dashboard/summary", f.sup, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decode[dto.DashboardSummaryDTO](t, resp)
	assert.Equal(t, 1, sum.Cards.EntriesMonth)
	assert.Len(t, sum.Charts.MovementsByMonth, 6)
}

func TestAPI_Metrics(t *testing.T) {
	f := newAPI(t)
	f.entry(t, "1")

	resp := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(raw), `stock_ledger_movements_total{type="ENTRY"} 1`)
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
