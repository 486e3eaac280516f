package repository

import (
	"time"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas (cabecera + líneas).
type SaleRepository interface {
	// Create persiste cabecera y líneas. Debe ejecutarse dentro de la misma tx
	// que los descuentos de lote.
	Create(sale *entity.Sale) error
	// GetByID retorna la venta con sus líneas, o nil si no existe.
	GetByID(id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) dentro de la tx;
	// usado por la anulación para que dos anulaciones concurrentes no dupliquen
	// la restitución de stock.
	GetForUpdate(id string) (*entity.Sale, error)
	// MarkCancelled marca la venta como anulada.
	MarkCancelled(id string, at time.Time) error
	List(limit, offset int) ([]*entity.Sale, error)
}
