package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceptionLineRequest línea propuesta: lote/vencimiento/cantidad/costo.
// No crea ningún lote hasta la aprobación.
type ReceptionLineRequest struct {
	ProductID  string          `json:"product_id" validate:"required,uuid"`
	LotNumber  string          `json:"lot_number" validate:"required,min=1,max=100"`
	Expiration time.Time       `json:"expiration" validate:"required"`
	Quantity   int64           `json:"quantity" validate:"required,min=1"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
}

// SubmitReceptionRequest entrada para registrar un acta de recepción.
type SubmitReceptionRequest struct {
	SupplierID string                 `json:"supplier_id" validate:"required,uuid"`
	Lines      []ReceptionLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ResolveRequest entrada para aprobar o rechazar (recepción o baja).
type ResolveRequest struct {
	Notes  string `json:"notes"`
	Reason string `json:"reason"` // solo rechazo
}

// ReceptionLineResponse línea del acta; lot_id vacío hasta aprobar.
type ReceptionLineResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	LotNumber  string          `json:"lot_number"`
	Expiration time.Time       `json:"expiration"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	LotID      string          `json:"lot_id,omitempty"`
}

// ReceptionResponse salida de un acta de recepción.
type ReceptionResponse struct {
	ID           string                  `json:"id"`
	SupplierID   string                  `json:"supplier_id"`
	ReceiverID   string                  `json:"receiver_id"`
	Status       string                  `json:"status"`
	ApproverID   string                  `json:"approver_id,omitempty"`
	Notes        string                  `json:"notes,omitempty"`
	RejectReason string                  `json:"reject_reason,omitempty"`
	ResolvedAt   *time.Time              `json:"resolved_at,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	Lines        []ReceptionLineResponse `json:"lines"`
}
