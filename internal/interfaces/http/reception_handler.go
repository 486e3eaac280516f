package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmaplus/farmacia-api/internal/application/dto"
	"github.com/farmaplus/farmacia-api/internal/application/reception"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// ReceptionHandler maneja las peticiones HTTP de actas de recepción (protegido).
type ReceptionHandler struct {
	uc *reception.ReceptionUseCase
}

// NewReceptionHandler construye el handler.
func NewReceptionHandler(uc *reception.ReceptionUseCase) *ReceptionHandler {
	return &ReceptionHandler{uc: uc}
}

// Submit registra un acta de recepción en PENDING_APPROVAL. Ningún lote ni
// stock cambia hasta la aprobación.
func (h *ReceptionHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitReceptionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.SupplierID == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "supplier_id y lines son requeridos"})
	}
	lines := make([]reception.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, reception.LineInput{
			ProductID:  l.ProductID,
			LotNumber:  l.LotNumber,
			Expiration: l.Expiration,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
		})
	}
	act, err := h.uc.Submit(c.UserContext(), GetUserID(c), GetCapabilities(c), reception.SubmitInput{
		SupplierID: in.SupplierID,
		Lines:      lines,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReceptionResponse(act))
}

// Approve aprueba un acta: materializa un lote por línea e incrementa el stock,
// todo en una sola transacción.
func (h *ReceptionHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ResolveRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	act, err := h.uc.Approve(c.UserContext(), GetUserID(c), GetCapabilities(c), id, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toReceptionResponse(act))
}

// Reject rechaza un acta. No toca lotes ni stock.
func (h *ReceptionHandler) Reject(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ResolveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason es requerido"})
	}
	act, err := h.uc.Reject(c.UserContext(), GetUserID(c), GetCapabilities(c), id, in.Reason, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toReceptionResponse(act))
}

// GetByID obtiene un acta por ID con sus líneas.
func (h *ReceptionHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	act, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toReceptionResponse(act))
}

// List lista actas, con filtro opcional ?status=.
func (h *ReceptionHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	status := entity.ReceptionStatus(c.Query("status"))
	acts, err := h.uc.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.ReceptionResponse, 0, len(acts))
	for _, a := range acts {
		out = append(out, *toReceptionResponse(a))
	}
	return c.JSON(out)
}

func toReceptionResponse(a *entity.ReceptionAct) *dto.ReceptionResponse {
	lines := make([]dto.ReceptionLineResponse, 0, len(a.Lines))
	for _, l := range a.Lines {
		lines = append(lines, dto.ReceptionLineResponse{
			ID:         l.ID,
			ProductID:  l.ProductID,
			LotNumber:  l.LotNumber,
			Expiration: l.Expiration,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			LotID:      l.LotID,
		})
	}
	return &dto.ReceptionResponse{
		ID:           a.ID,
		SupplierID:   a.SupplierID,
		ReceiverID:   a.ReceiverID,
		Status:       string(a.Status),
		ApproverID:   a.ApproverID,
		Notes:        a.Notes,
		RejectReason: a.RejectReason,
		ResolvedAt:   a.ResolvedAt,
		CreatedAt:    a.CreatedAt,
		Lines:        lines,
	}
}
