package repository

import "github.com/farmaplus/farmacia-api/internal/domain/entity"

// ReceptionRepository define el puerto de persistencia de actas de recepción.
type ReceptionRepository interface {
	// Create persiste el acta con sus líneas (misma tx).
	Create(act *entity.ReceptionAct) error
	// GetByID retorna el acta con sus líneas, o nil si no existe.
	GetByID(id string) (*entity.ReceptionAct, error)
	// GetForUpdate bloquea la cabecera del acta (SELECT FOR UPDATE) para que dos
	// aprobaciones concurrentes no materialicen lotes duplicados.
	GetForUpdate(id string) (*entity.ReceptionAct, error)
	// UpdateResolution persiste estado, aprobador, motivo y timestamp de resolución.
	UpdateResolution(act *entity.ReceptionAct) error
	// LinkLineLot ata una línea al lote materializado en la aprobación.
	LinkLineLot(lineID, lotID string) error
	List(status entity.ReceptionStatus, limit, offset int) ([]*entity.ReceptionAct, error)
}
