// Package ledger es el libro de lotes: el único escritor de Lot.Available y
// Product.StockTotal. Los flujos (venta, recepción, baja) piden mutaciones a
// través de estas operaciones dentro de su transacción, de modo que el
// invariante StockTotal == Σ Available se hace cumplir en un solo lugar.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// CreateLotInput datos para materializar un lote nuevo.
type CreateLotInput struct {
	ProductID    string
	LotNumber    string
	Expiration   time.Time
	Quantity     int64
	PurchaseCost decimal.Decimal
	SalePrice    decimal.Decimal
}

// CreateLot materializa un lote (Available = Initial) e incrementa el agregado
// del producto. Debe invocarse dentro de la misma transacción que la operación
// amplia del caller (aprobación de recepción).
func CreateLot(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	in CreateLotInput,
	now time.Time,
) (*entity.Lot, error) {
	if in.Quantity <= 0 || in.LotNumber == "" || in.Expiration.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	// Bloquea la fila del producto: el agregado y el lote se mueven juntos.
	product, err := productRepo.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	lot := &entity.Lot{
		ID:           uuid.New().String(),
		ProductID:    in.ProductID,
		LotNumber:    in.LotNumber,
		Expiration:   in.Expiration,
		Initial:      in.Quantity,
		Available:    in.Quantity,
		PurchaseCost: in.PurchaseCost,
		SalePrice:    in.SalePrice,
		CreatedAt:    now,
	}
	if err := lotRepo.Create(lot); err != nil {
		return nil, err
	}
	if err := productRepo.AdjustStock(in.ProductID, in.Quantity); err != nil {
		return nil, err
	}
	return lot, nil
}

// DecrementLot bloquea el lote, verifica disponibilidad y resta qty del lote y
// del agregado del producto. Falla con ErrInsufficientStock si qty > Available.
func DecrementLot(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	lotID string,
	qty int64,
) (*entity.Lot, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	lot, err := lotRepo.GetForUpdate(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.Available < qty {
		return nil, fmt.Errorf("%w: lote %s tiene %d disponible, se pidieron %d",
			domain.ErrInsufficientStock, lot.LotNumber, lot.Available, qty)
	}
	lot.Available -= qty
	if err := lotRepo.UpdateAvailable(lot.ID, lot.Available); err != nil {
		return nil, err
	}
	if err := productRepo.AdjustStock(lot.ProductID, -qty); err != nil {
		return nil, err
	}
	return lot, nil
}

// IncrementLot restituye qty al lote y al agregado del producto. Es el único
// camino de restitución fuera de la recepción: la anulación de una venta.
// No reabre la clasificación de vencimiento; la categoría se recalcula al leer.
func IncrementLot(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	lotID string,
	qty int64,
) (*entity.Lot, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	lot, err := lotRepo.GetForUpdate(lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	if lot.Available+qty > lot.Initial {
		// Restituir por encima de lo recibido rompería 0 <= Available <= Initial.
		return nil, fmt.Errorf("%w: restitución excede la cantidad inicial del lote %s",
			domain.ErrInvalidInput, lot.LotNumber)
	}
	lot.Available += qty
	if err := lotRepo.UpdateAvailable(lot.ID, lot.Available); err != nil {
		return nil, err
	}
	if err := productRepo.AdjustStock(lot.ProductID, qty); err != nil {
		return nil, err
	}
	return lot, nil
}
