package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicia en 0;
// solo las recepciones aprobadas lo incrementan.
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockMinimo   int64           `json:"stock_minimo" validate:"min=0"`
	StockMaximo   int64           `json:"stock_maximo" validate:"min=0"`
	Controlled    bool            `json:"controlled"`
	Refrigerated  bool            `json:"refrigerated"`
	Taxed         bool            `json:"taxed"`
}

// UpdateProductRequest entrada para actualizar un producto (sin StockTotal:
// el agregado solo lo mueve el ledger).
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string          `json:"description"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	StockMinimo   *int64           `json:"stock_minimo"`
	StockMaximo   *int64           `json:"stock_maximo"`
	Controlled    *bool            `json:"controlled"`
	Refrigerated  *bool            `json:"refrigerated"`
	Taxed         *bool            `json:"taxed"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	StockTotal    int64           `json:"stock_total"`
	StockMinimo   int64           `json:"stock_minimo"`
	StockMaximo   int64           `json:"stock_maximo"`
	Controlled    bool            `json:"controlled"`
	Refrigerated  bool            `json:"refrigerated"`
	Taxed         bool            `json:"taxed"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
