package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmaplus/farmacia-api/internal/application/dto"
	"github.com/farmaplus/farmacia-api/internal/application/pos"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// SaleHandler maneja las peticiones HTTP del punto de venta (protegido).
type SaleHandler struct {
	uc *pos.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *pos.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create procesa una venta completa. O todas las líneas se asignan y
// descuentan, o la venta entera falla sin cambios de stock.
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items es requerido"})
	}
	items := make([]pos.SaleItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, pos.SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	sale, err := h.uc.ProcessSale(c.UserContext(), GetUserID(c), pos.SaleInput{
		Items:         items,
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
}

// Cancel anula una venta y restituye el stock a los mismos lotes.
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	sale, err := h.uc.CancelSale(c.UserContext(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// GetByID obtiene una venta por ID con sus líneas.
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	sale, err := h.uc.GetSale(c.UserContext(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toSaleResponse(sale))
}

// List lista ventas paginadas.
func (h *SaleHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	sales, err := h.uc.ListSales(c.UserContext(), limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, *toSaleResponse(s))
	}
	return c.JSON(out)
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			LotID:     l.LotID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			TaxRate:   l.TaxRate,
			Subtotal:  l.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		PaymentMethod: s.PaymentMethod,
		Status:        s.Status,
		NetTotal:      s.NetTotal,
		TaxTotal:      s.TaxTotal,
		GrandTotal:    s.GrandTotal,
		Date:          s.Date,
		CancelledAt:   s.CancelledAt,
		Lines:         lines,
	}
}
