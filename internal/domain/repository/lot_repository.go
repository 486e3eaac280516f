package repository

import "github.com/farmaplus/farmacia-api/internal/domain/entity"

// LotRepository define el puerto de persistencia de lotes.
// Las escrituras de Available son exclusivas del ledger; los flujos nunca
// actualizan campos de lote directamente.
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) dentro de la tx.
	GetForUpdate(id string) (*entity.Lot, error)
	// ListAvailableByProduct retorna los lotes con Available > 0 ordenados por
	// vencimiento ascendente y, a igual vencimiento, por orden de creación.
	// Este orden es el contrato del asignador FEFO.
	ListAvailableByProduct(productID string) ([]*entity.Lot, error)
	// ListAvailableByProductForUpdate igual que ListAvailableByProduct pero
	// bloqueando las filas (SELECT FOR UPDATE) para la asignación dentro de una tx.
	ListAvailableByProductForUpdate(productID string) ([]*entity.Lot, error)
	// UpdateAvailable fija la nueva cantidad disponible. Solo el ledger la invoca.
	UpdateAvailable(id string, available int64) error
	// ListActive retorna todos los lotes con Available > 0 (para el reporte de
	// vencimientos; la clasificación se calcula en la aplicación).
	ListActive() ([]*entity.Lot, error)
}
