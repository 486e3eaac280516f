package entity

import (
	"time"

	"github.com/farmaplus/farmacia-api/internal/domain"
)

// WriteOffStatus estado de la baja. Transiciones válidas:
// PENDING -> APPROVED o PENDING -> REJECTED. La vía inmediata crea el registro
// directamente en APPROVED (solicitante con capacidad de aprobación que renuncia
// explícitamente a la aprobación).
type WriteOffStatus string

const (
	WriteOffPending  WriteOffStatus = "PENDING"
	WriteOffApproved WriteOffStatus = "APPROVED"
	WriteOffRejected WriteOffStatus = "REJECTED"
)

// Motivos de baja permitidos.
type WriteOffMotive string

const (
	MotiveExpiration       WriteOffMotive = "VENCIMIENTO"
	MotiveDamage           WriteOffMotive = "DETERIORO"
	MotiveDataEntryError   WriteOffMotive = "ERROR_DIGITACION"
	MotiveReturnToSupplier WriteOffMotive = "DEVOLUCION_PROVEEDOR"
	MotiveMarketWithdrawal WriteOffMotive = "RETIRO_MERCADO"
	MotiveOther            WriteOffMotive = "OTRO"
)

// ValidMotive indica si el motivo pertenece a la enumeración.
func ValidMotive(m WriteOffMotive) bool {
	switch m {
	case MotiveExpiration, MotiveDamage, MotiveDataEntryError,
		MotiveReturnToSupplier, MotiveMarketWithdrawal, MotiveOther:
		return true
	}
	return false
}

// WriteOff (baja) es una reducción deliberada de stock por un motivo distinto a
// la venta: vencimiento, deterioro, error de digitación, devolución o retiro.
type WriteOff struct {
	ID           string
	LotID        string
	RequesterID  string
	Quantity     int64
	Motive       WriteOffMotive
	Notes        string
	Status       WriteOffStatus
	ApproverID   string
	RejectReason string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}

// Approve transiciona la baja a APPROVED. Solo acepta PENDING como estado
// origen; cualquier otro retorna ErrAlreadyProcessed.
func (w *WriteOff) Approve(approverID, notes string, now time.Time) error {
	if w.Status != WriteOffPending {
		return domain.ErrAlreadyProcessed
	}
	w.Status = WriteOffApproved
	w.ApproverID = approverID
	if notes != "" {
		w.Notes = notes
	}
	w.ResolvedAt = &now
	return nil
}

// Reject transiciona la baja a REJECTED sin tocar el ledger.
func (w *WriteOff) Reject(approverID, reason, notes string, now time.Time) error {
	if w.Status != WriteOffPending {
		return domain.ErrAlreadyProcessed
	}
	w.Status = WriteOffRejected
	w.ApproverID = approverID
	w.RejectReason = reason
	if notes != "" {
		w.Notes = notes
	}
	w.ResolvedAt = &now
	return nil
}
