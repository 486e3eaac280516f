package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmaplus/farmacia-api/internal/domain"
)

// ReceptionStatus estado del acta de recepción. Transiciones válidas:
// PENDING_APPROVAL -> COMPLETED (aprobada) o PENDING_APPROVAL -> REJECTED.
// COMPLETED y REJECTED son terminales.
type ReceptionStatus string

const (
	ReceptionPendingApproval ReceptionStatus = "PENDING_APPROVAL"
	ReceptionCompleted       ReceptionStatus = "COMPLETED"
	ReceptionRejected        ReceptionStatus = "REJECTED"
)

// ReceptionAct acta de recepción de mercadería de un proveedor. Las líneas
// proponen lote/vencimiento/cantidad/costo pero no crean ningún Lot hasta que
// un aprobador complete el acta.
type ReceptionAct struct {
	ID           string
	SupplierID   string
	ReceiverID   string // usuario que registró la recepción
	Status       ReceptionStatus
	ApproverID   string
	Notes        string
	RejectReason string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
	Lines        []ReceptionLine
}

// ReceptionLine línea propuesta del acta. LotID queda vacío hasta que la
// aprobación materializa el lote.
type ReceptionLine struct {
	ID         string
	ActID      string
	ProductID  string
	LotNumber  string
	Expiration time.Time
	Quantity   int64
	UnitCost   decimal.Decimal
	LotID      string
}

// Approve transiciona el acta a COMPLETED. Solo acepta PENDING_APPROVAL como
// estado origen; cualquier otro retorna ErrAlreadyProcessed.
func (a *ReceptionAct) Approve(approverID, notes string, now time.Time) error {
	if a.Status != ReceptionPendingApproval {
		return domain.ErrAlreadyProcessed
	}
	a.Status = ReceptionCompleted
	a.ApproverID = approverID
	a.Notes = notes
	a.ResolvedAt = &now
	return nil
}

// Reject transiciona el acta a REJECTED sin tocar el ledger.
func (a *ReceptionAct) Reject(approverID, reason, notes string, now time.Time) error {
	if a.Status != ReceptionPendingApproval {
		return domain.ErrAlreadyProcessed
	}
	a.Status = ReceptionRejected
	a.ApproverID = approverID
	a.RejectReason = reason
	a.Notes = notes
	a.ResolvedAt = &now
	return nil
}
