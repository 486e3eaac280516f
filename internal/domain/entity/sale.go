package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Métodos de pago aceptados en punto de venta.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
)

// Sale representa una venta de mostrador con sus totales.
type Sale struct {
	ID            string
	UserID        string // cajero que registró la venta
	PaymentMethod string
	Status        string
	NetTotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	Date          time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	Lines         []SaleLine
}

// SaleLine es una línea de venta atada a un lote concreto. El precio unitario
// queda congelado al momento de la venta (precio del lote, no el de lista del
// producto). Una misma cantidad pedida puede producir varias líneas si la
// asignación FEFO cruza lotes.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	LotID     string
	Quantity  int64
	UnitPrice decimal.Decimal // precio del lote congelado a la venta
	TaxRate   decimal.Decimal // 0 si el producto no grava
	Subtotal  decimal.Decimal // Quantity * UnitPrice (sin impuesto)
}

// ValidPaymentMethod indica si el método de pago está soportado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}
