package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmaplus/farmacia-api/internal/application/catalog"
	"github.com/farmaplus/farmacia-api/internal/application/dto"
	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/expiration"
)

// ReportHandler maneja los reportes operativos (protegido).
type ReportHandler struct {
	uc *ledger.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *ledger.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// ExpiringLots agrupa los lotes activos por riesgo de vencimiento. Acepta
// ?as_of=2026-01-31 (o RFC3339) para evaluar contra otra fecha; por defecto hoy.
func (h *ReportHandler) ExpiringLots(c *fiber.Ctx) error {
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of inválido: use YYYY-MM-DD o RFC3339"})
		}
		asOf = t
	}
	report, err := h.uc.ExpiringLots(c.UserContext(), asOf)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.ExpiringLotsResponse{
		AsOf:    asOf,
		Expired: toLotResponses(report.Expired, expiration.CategoryExpired),
		Red:     toLotResponses(report.Red, expiration.CategoryRed),
		Yellow:  toLotResponses(report.Yellow, expiration.CategoryYellow),
		Orange:  toLotResponses(report.Orange, expiration.CategoryOrange),
	})
}

// LowStock lista los productos en o por debajo de su stock mínimo.
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.uc.LowStockProducts(c.UserContext())
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, *catalog.ToProductResponse(p))
	}
	return c.JSON(out)
}

func toLotResponses(lots []*entity.Lot, cat expiration.Category) []dto.LotResponse {
	out := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.LotResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			LotNumber:    l.LotNumber,
			Expiration:   l.Expiration,
			Initial:      l.Initial,
			Available:    l.Available,
			PurchaseCost: l.PurchaseCost,
			SalePrice:    l.SalePrice,
			Category:     string(cat),
		})
	}
	return out
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
