package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *inventory.MovementEngine
	ExitOrders  *exitorder.Builder
	Reports     *appanalytics.ReportUseCase
	DashboardUC *appanalytics.DashboardUseCase
	Metrics     nethttp.Handler // nil = sin /metrics
	FilesPrefix string          // prefijo público de documentos (driver fs)
	FilesRoot   string          // vacío = no se sirven archivos estáticos
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}
	if deps.FilesRoot != "" && deps.FilesPrefix != "" {
		app.Static(deps.FilesPrefix, deps.FilesRoot, fiber.Static{Download: true})
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Stock: solo supervisor o superior; el gate valida además la unidad de la bodega.
	stock := api.Group("/stock", RequireRole(entity.RoleSupervisor))
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.ExitOrders, deps.Log)
	stock.Post("/entries", inventoryHandler.RecordEntry)
	stock.Post("/entries/batch", inventoryHandler.RecordEntryBatch)
	stock.Post("/exits", inventoryHandler.RecordExit)
	stock.Post("/dispatch", inventoryHandler.Dispatch)
	stock.Post("/balances", inventoryHandler.OpenBalance)

	// Órdenes de salida
	orders := api.Group("/exit-orders")
	orderHandler := NewExitOrderHandler(deps.ExitOrders, deps.Log)
	orders.Get("/", orderHandler.List)
	orders.Post("/:id/sign", orderHandler.Sign)
	orders.Get("/:id/document", orderHandler.Document)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.Reports, deps.Log)
	reports.Get("/stock", reportHandler.Stock)
	reports.Get("/movements", reportHandler.Movements)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Log)
	api.Get("/dashboard/summary", dashboardHandler.GetSummary)
}
