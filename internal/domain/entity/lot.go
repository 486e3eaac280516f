package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote físico de un producto: una partida con su propia fecha de
// vencimiento y base de costo. Se crea únicamente al aprobar un acta de recepción
// y nunca se elimina; queda inerte cuando Available llega a 0.
//
// Invariante: 0 <= Available <= Initial. Initial es inmutable después de la
// creación; una recepción siempre crea un lote nuevo, nunca recarga uno existente.
// Solo el ledger escribe Available.
type Lot struct {
	ID           string
	ProductID    string
	LotNumber    string    // número de lote del fabricante; no es único entre productos
	Expiration   time.Time // fecha de vencimiento (medianoche local)
	Initial      int64     // cantidad recibida
	Available    int64     // cantidad disponible para venta/baja
	PurchaseCost decimal.Decimal // costo unitario de compra de esta partida
	SalePrice    decimal.Decimal // precio de venta calculado para esta partida
	CreatedAt    time.Time
}
