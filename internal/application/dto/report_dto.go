package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotResponse salida de un lote en reportes.
type LotResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	LotNumber    string          `json:"lot_number"`
	Expiration   time.Time       `json:"expiration"`
	Initial      int64           `json:"initial"`
	Available    int64           `json:"available"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Category     string          `json:"category"`
}

// ExpiringLotsResponse lotes activos agrupados por riesgo de vencimiento.
type ExpiringLotsResponse struct {
	AsOf    time.Time     `json:"as_of"`
	Expired []LotResponse `json:"expired"`
	Red     []LotResponse `json:"red"`
	Yellow  []LotResponse `json:"yellow"`
	Orange  []LotResponse `json:"orange"`
}
