// Package fefo implementa la asignación First-Expired-First-Out: el plan de
// consumo de una cantidad pedida a través de los lotes disponibles de un
// producto, tomando siempre primero del lote que vence antes.
package fefo

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// Allocation una toma de un lote dentro de un plan de consumo.
type Allocation struct {
	LotID     string
	LotNumber string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal // precio de venta del lote, congelado en el plan
}

// Plan cubre exactamente la cantidad pedida de un producto, en orden de
// vencimiento ascendente. Un plan no aplica ningún cambio al ledger; el caller
// ejecuta los descuentos dentro de su transacción o descarta el plan entero.
type Plan struct {
	ProductID   string
	Requested   int64
	Allocations []Allocation
}

// Allocate recorre los lotes (que el ledger entrega ya ordenados por vencimiento
// ascendente y, a igual vencimiento, por orden de creación) tomando
// min(restante, disponible) de cada uno hasta cubrir la cantidad pedida.
// Si los lotes se agotan con restante > 0 falla con ErrInsufficientStock
// reportando el faltante; en ese caso no se entrega plan parcial.
func Allocate(productID string, lots []*entity.Lot, requested int64) (*Plan, error) {
	if requested <= 0 {
		return nil, fmt.Errorf("%w: cantidad solicitada debe ser positiva", domain.ErrInvalidInput)
	}
	plan := &Plan{ProductID: productID, Requested: requested}
	remaining := requested
	for _, lot := range lots {
		if remaining == 0 {
			break
		}
		if lot.Available <= 0 {
			continue
		}
		take := remaining
		if lot.Available < take {
			take = lot.Available
		}
		plan.Allocations = append(plan.Allocations, Allocation{
			LotID:     lot.ID,
			LotNumber: lot.LotNumber,
			ProductID: productID,
			Quantity:  take,
			UnitPrice: lot.SalePrice,
		})
		remaining -= take
	}
	if remaining > 0 {
		return nil, fmt.Errorf("%w: faltan %d unidades del producto %s",
			domain.ErrInsufficientStock, remaining, productID)
	}
	return plan, nil
}
