package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest par (producto, cantidad) de la venta.
type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity" validate:"required,min=1"`
}

// CreateSaleRequest entrada para procesar una venta.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=CASH CARD TRANSFER"`
}

// SaleLineResponse línea de venta atada a un lote.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	LotID     string          `json:"lot_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	NetTotal      decimal.Decimal    `json:"net_total"`
	TaxTotal      decimal.Decimal    `json:"tax_total"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	Date          time.Time          `json:"date"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
}
