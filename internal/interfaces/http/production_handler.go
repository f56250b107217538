package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Concreto-api/internal/application/dto"
	"github.com/jhoicas/Concreto-api/internal/application/production"
)

// ProductionHandler expone la vista previa, la ejecución y la consulta de producciones.
type ProductionHandler struct {
	uc       *production.UseCase
	receipts production.ReceiptGenerator
	exporter production.LedgerExporter
}

// NewProductionHandler construye el handler. receipts y exporter pueden ser nil:
// en ese caso las rutas correspondientes responden 501.
func NewProductionHandler(uc *production.UseCase, receipts production.ReceiptGenerator, exporter production.LedgerExporter) *ProductionHandler {
	return &ProductionHandler{uc: uc, receipts: receipts, exporter: exporter}
}

// Preview godoc
// @Summary      Vista previa de requerimientos
// @Description  Calcula por ingrediente lo requerido contra la existencia actual. No bloquea ni descuenta.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PreviewRequest  true  "recipe_id, volume (m³), silo_id opcional"
// @Success      200   {object}  dto.PreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/production/preview [post]
func (h *ProductionHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.PreviewRequirements(c.Context(), ActorFrom(c), in.RecipeID, in.Volume, in.SiloID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Execute godoc
// @Summary      Registrar producción
// @Description  Valida, descuenta materiales y registra la producción en una sola transacción.
// @Description  Si se envía order_line_item_id, actualiza la entrega de la línea de pedido después de confirmar.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ExecuteRunRequest  true  "recipe_id, silo_id, volume y vinculación opcional"
// @Success      201   {object}  dto.RunSummaryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/production/runs [post]
func (h *ProductionHandler) Execute(c *fiber.Ctx) error {
	var in dto.ExecuteRunRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input := production.ExecuteInput{
		Actor:    ActorFrom(c),
		RecipeID: in.RecipeID,
		SiloID:   in.SiloID,
		Volume:   in.Volume,
	}
	if in.OrderLineItemID != "" || in.OrderID != "" || in.ClientID != "" {
		input.Linkage = &production.Linkage{
			ClientID:        in.ClientID,
			OrderID:         in.OrderID,
			OrderLineItemID: in.OrderLineItemID,
		}
	}
	out, err := h.uc.ExecuteProductionRun(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar producciones
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        limit   query     int  false  "máximo de resultados (1-100)"
// @Param        offset  query     int  false  "desplazamiento"
// @Success      200     {object}  dto.RunListResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/production/runs [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	page := pageFrom(c)
	out, err := h.uc.ListRuns(c.Context(), ActorFrom(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producción
// @Tags         production
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la producción"
// @Success      200  {object}  dto.RunSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/runs/{id} [get]
func (h *ProductionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetRun(c.Context(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la producción
// @Tags         production
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la producción"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/production/runs/{id}/receipt [get]
func (h *ProductionHandler) Receipt(c *fiber.Ctx) error {
	if h.receipts == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "comprobantes PDF no habilitados"})
	}
	id := c.Params("id")
	pdf, err := h.uc.RunReceipt(c.Context(), ActorFrom(c), id, h.receipts)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="produccion-%s.pdf"`, id))
	return c.Send(pdf)
}

// Export godoc
// @Summary      Exportar libro de producciones (XLSX)
// @Tags         production
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        limit  query  int  false  "máximo de producciones (por defecto 1000)"
// @Success      200    {file}    binary
// @Failure      403    {object}  dto.ErrorResponse
// @Failure      501    {object}  dto.ErrorResponse
// @Router       /api/production/runs/export [get]
func (h *ProductionHandler) Export(c *fiber.Ctx) error {
	if h.exporter == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_CONFIGURED", Message: "exportación no habilitada"})
	}
	data, err := h.uc.ExportRuns(c.Context(), ActorFrom(c), c.QueryInt("limit", 1000), h.exporter)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="producciones.xlsx"`)
	return c.Send(data)
}
