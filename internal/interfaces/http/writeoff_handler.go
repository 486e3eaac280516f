package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farmaplus/farmacia-api/internal/application/dto"
	"github.com/farmaplus/farmacia-api/internal/application/writeoff"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// WriteOffHandler maneja las peticiones HTTP de bajas de inventario (protegido).
type WriteOffHandler struct {
	uc *writeoff.BajaUseCase
}

// NewWriteOffHandler construye el handler.
func NewWriteOffHandler(uc *writeoff.BajaUseCase) *WriteOffHandler {
	return &WriteOffHandler{uc: uc}
}

// Submit registra una baja. Con require_approval en false y capacidad de
// aprobación, la baja se aplica de inmediato y nace en APPROVED.
func (h *WriteOffHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitWriteOffRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.LotID == "" || in.Quantity <= 0 || in.Motive == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lot_id, quantity y motive son requeridos"})
	}
	w, err := h.uc.Submit(c.UserContext(), GetUserID(c), GetCapabilities(c), writeoff.SubmitInput{
		LotID:           in.LotID,
		Quantity:        in.Quantity,
		Motive:          entity.WriteOffMotive(in.Motive),
		Notes:           in.Notes,
		RequireApproval: in.RequireApproval,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toWriteOffResponse(w))
}

// Approve aprueba una baja pendiente, re-validando el disponible del lote.
func (h *WriteOffHandler) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ResolveRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	w, err := h.uc.Approve(c.UserContext(), GetUserID(c), GetCapabilities(c), id, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toWriteOffResponse(w))
}

// Reject rechaza una baja pendiente. No toca el lote.
func (h *WriteOffHandler) Reject(c *fiber.Ctx) error {
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
	w, err := h.uc.Reject(c.UserContext(), GetUserID(c), GetCapabilities(c), id, in.Reason, in.Notes)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toWriteOffResponse(w))
}

// GetByID obtiene una baja por ID.
func (h *WriteOffHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	w, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(toWriteOffResponse(w))
}

// List lista bajas, con filtro opcional ?status=.
func (h *WriteOffHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	status := entity.WriteOffStatus(c.Query("status"))
	ws, err := h.uc.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.WriteOffResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, *toWriteOffResponse(w))
	}
	return c.JSON(out)
}

func toWriteOffResponse(w *entity.WriteOff) *dto.WriteOffResponse {
	return &dto.WriteOffResponse{
		ID:           w.ID,
		LotID:        w.LotID,
		RequesterID:  w.RequesterID,
		Quantity:     w.Quantity,
		Motive:       string(w.Motive),
		Notes:        w.Notes,
		Status:       string(w.Status),
		ApproverID:   w.ApproverID,
		RejectReason: w.RejectReason,
		ResolvedAt:   w.ResolvedAt,
		CreatedAt:    w.CreatedAt,
	}
}
