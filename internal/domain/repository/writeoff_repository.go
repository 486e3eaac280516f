package repository

import "github.com/farmaplus/farmacia-api/internal/domain/entity"

// WriteOffRepository define el puerto de persistencia de bajas.
type WriteOffRepository interface {
	Create(wo *entity.WriteOff) error
	GetByID(id string) (*entity.WriteOff, error)
	// GetForUpdate bloquea la fila de la baja (SELECT FOR UPDATE) para que dos
	// aprobaciones concurrentes no descuenten dos veces.
	GetForUpdate(id string) (*entity.WriteOff, error)
	// UpdateResolution persiste estado, aprobador, motivo y timestamp de resolución.
	UpdateResolution(wo *entity.WriteOff) error
	List(status entity.WriteOffStatus, limit, offset int) ([]*entity.WriteOff, error)
}
