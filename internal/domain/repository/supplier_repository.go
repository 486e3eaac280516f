package repository

import "github.com/farmaplus/farmacia-api/internal/domain/entity"

// SupplierRepository define el puerto de persistencia de proveedores.
type SupplierRepository interface {
	Create(supplier *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
	List(limit, offset int) ([]*entity.Supplier, error)
}
