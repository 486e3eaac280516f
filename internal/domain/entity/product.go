package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un medicamento o producto de la farmacia.
// StockTotal es un agregado derivado: en todo punto de reposo debe ser igual a la
// suma de Available de sus lotes. Solo el ledger de lotes lo modifica (recepción
// aprobada, venta, baja aprobada); nunca se asigna directamente desde otro código.
type Product struct {
	ID            string
	SKU           string // código único (código de barras o interno)
	Name          string
	Description   string
	PurchasePrice decimal.Decimal // último costo de compra registrado
	SalePrice     decimal.Decimal // precio de venta de lista
	StockTotal    int64           // agregado = Σ Lot.Available
	StockMinimo   int64           // umbral de reposición
	StockMaximo   int64
	Controlled    bool // medicamento controlado (venta bajo receta)
	Refrigerated  bool // requiere cadena de frío
	Taxed         bool // aplica IVA (tasa configurada a nivel aplicación)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowStock indica si el producto está en o por debajo del umbral de reposición.
func (p *Product) LowStock() bool {
	return p.StockTotal <= p.StockMinimo
}
