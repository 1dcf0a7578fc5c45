package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/exitorder"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ExitOrderHandler listado, firma y descarga de órdenes de salida.
type ExitOrderHandler struct {
	builder *exitorder.Builder
	log     *logger.Logger
}

// NewExitOrderHandler construye el handler.
func NewExitOrderHandler(builder *exitorder.Builder, log *logger.Logger) *ExitOrderHandler {
	return &ExitOrderHandler{builder: builder, log: log}
}

// List godoc
// @Summary      Listar órdenes de salida
// @Tags         exit-orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   exitorder.View
// @Router       /api/exit-orders [get]
func (h *ExitOrderHandler) List(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	orders, err := h.builder.List(c.UserContext(), p)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(orders)
}

// Sign godoc
// @Summary      Firmar orden de salida
// @Description  Reemplaza la firma y el documento firmado si ya existían.
// @Tags         exit-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int              true  "ID de la orden"
// @Param        body  body  dto.SignRequest  true  "signatureDataUrl (data:image/png;base64,...)"
// @Success      200   {object}  exitorder.View
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id}/sign [post]
func (h *ExitOrderHandler) Sign(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	var in dto.SignRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	view, err := h.builder.AttachSignature(c.UserContext(), p, int64(id), in.SignatureDataURL)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(view)
}

// Document godoc
// @Summary      Descargar el PDF vigente de la orden
// @Tags         exit-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  int  true  "ID de la orden"
// @Success      200
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exit-orders/{id}/document [get]
func (h *ExitOrderHandler) Document(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido"})
	}
	dl, err := h.builder.Document(c.UserContext(), p, int64(id))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, dl.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dl.Filename))
	return c.SendStream(dl.Body)
}
