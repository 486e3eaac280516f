package repository

import "github.com/farmaplus/farmacia-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia de productos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) dentro de la tx.
	GetForUpdate(id string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	// AdjustStock suma delta (positivo o negativo) a stock_total. Solo el ledger
	// la invoca; el agregado nunca se asigna desde otros caminos de código.
	AdjustStock(id string, delta int64) error
	// ListLowStock productos con stock_total <= stock_minimo.
	ListLowStock() ([]*entity.Product, error)
}
