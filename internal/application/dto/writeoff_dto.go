package dto

import "time"

// SubmitWriteOffRequest entrada para registrar una baja. Con require_approval
// en false y capacidad de aprobación, la baja se aplica de inmediato.
type SubmitWriteOffRequest struct {
	LotID           string `json:"lot_id" validate:"required,uuid"`
	Quantity        int64  `json:"quantity" validate:"required,min=1"`
	Motive          string `json:"motive" validate:"required"`
	Notes           string `json:"notes"`
	RequireApproval bool   `json:"require_approval"`
}

// WriteOffResponse salida de una baja.
type WriteOffResponse struct {
	ID           string     `json:"id"`
	LotID        string     `json:"lot_id"`
	RequesterID  string     `json:"requester_id"`
	Quantity     int64      `json:"quantity"`
	Motive       string     `json:"motive"`
	Notes        string     `json:"notes,omitempty"`
	Status       string     `json:"status"`
	ApproverID   string     `json:"approver_id,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
