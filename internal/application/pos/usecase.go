// Package pos procesa ventas de mostrador: asignación FEFO por línea, descuento
// de lotes y totales, todo como una sola unidad atómica.
package pos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/event"
	"github.com/farmaplus/farmacia-api/internal/domain/fefo"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// SaleUseCase procesa y anula ventas de forma transaccional.
type SaleUseCase struct {
	txRunner ledger.TxRunner
	saleRepo repository.SaleRepository // lecturas fuera de tx
	notifier event.Notifier
	taxRate  decimal.Decimal // tasa de IVA para productos gravados (ej. 0.19)
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner ledger.TxRunner,
	saleRepo repository.SaleRepository,
	notifier event.Notifier,
	taxRate decimal.Decimal,
) *SaleUseCase {
	return &SaleUseCase{txRunner: txRunner, saleRepo: saleRepo, notifier: notifier, taxRate: taxRate}
}

// SaleItemInput par (producto, cantidad) pedido en la venta.
type SaleItemInput struct {
	ProductID string
	Quantity  int64
}

// SaleInput entrada para ProcessSale.
type SaleInput struct {
	Items         []SaleItemInput
	PaymentMethod string
}

// linePlan plan FEFO de un producto junto al producto cargado y bloqueado.
type linePlan struct {
	product *entity.Product
	plan    *fefo.Plan
}

// ProcessSale asigna FEFO cada línea y descuenta los lotes en una sola
// transacción. Primero se computan TODOS los planes con las filas bloqueadas y
// sin mutar nada; si cualquier línea falla por stock insuficiente, la venta
// completa aborta sin ningún cambio en el ledger. Solo después se aplican los
// descuentos y se persiste la venta.
func (uc *SaleUseCase) ProcessSale(ctx context.Context, userID string, in SaleInput) (*entity.Sale, error) {
	if len(in.Items) == 0 || !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var sale *entity.Sale
	var lowStock []event.LowStock

	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.ReceptionRepository,
		_ repository.WriteOffRepository,
	) error {
		// Fase 1: bloquear producto y lotes de cada línea y computar el plan.
		plans := make([]linePlan, 0, len(items))
		for _, item := range items {
			product, err := productRepo.GetForUpdate(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			lots, err := lotRepo.ListAvailableByProductForUpdate(item.ProductID)
			if err != nil {
				return err
			}
			plan, err := fefo.Allocate(item.ProductID, lots, item.Quantity)
			if err != nil {
				return err // rollback: ningún plan parcial se aplica
			}
			plans = append(plans, linePlan{product: product, plan: plan})
		}

		// Fase 2: aplicar descuentos y construir líneas con precio congelado.
		saleID := uuid.New().String()
		var netTotal, taxTotal decimal.Decimal
		var lines []entity.SaleLine
		for _, lp := range plans {
			rate := decimal.Zero
			if lp.product.Taxed {
				rate = uc.taxRate
			}
			for _, alloc := range lp.plan.Allocations {
				if _, err := ledger.DecrementLot(lotRepo, productRepo, alloc.LotID, alloc.Quantity); err != nil {
					return err
				}
				subtotal := alloc.UnitPrice.Mul(decimal.NewFromInt(alloc.Quantity))
				lines = append(lines, entity.SaleLine{
					ID:        uuid.New().String(),
					SaleID:    saleID,
					ProductID: alloc.ProductID,
					LotID:     alloc.LotID,
					Quantity:  alloc.Quantity,
					UnitPrice: alloc.UnitPrice,
					TaxRate:   rate,
					Subtotal:  subtotal,
				})
				netTotal = netTotal.Add(subtotal)
				taxTotal = taxTotal.Add(subtotal.Mul(rate))
			}
			newTotal := lp.product.StockTotal - lp.plan.Requested
			if newTotal <= lp.product.StockMinimo {
				lowStock = append(lowStock, event.LowStock{
					ProductID:   lp.product.ID,
					ProductName: lp.product.Name,
					StockTotal:  newTotal,
					StockMinimo: lp.product.StockMinimo,
				})
			}
		}

		sale = &entity.Sale{
			ID:            saleID,
			UserID:        userID,
			PaymentMethod: in.PaymentMethod,
			Status:        entity.SaleStatusCompleted,
			NetTotal:      netTotal,
			TaxTotal:      taxTotal,
			GrandTotal:    netTotal.Add(taxTotal),
			Date:          now,
			CreatedAt:     now,
			Lines:         lines,
		}
		return saleRepo.Create(sale)
	})
	if err != nil {
		return nil, err
	}
	for _, ev := range lowStock {
		uc.notifier.StockLow(ctx, ev)
	}
	return sale, nil
}

// CancelSale restituye cada línea al lote de origen y marca la venta anulada.
// Es el único camino de restitución de stock fuera de la recepción. No se
// reclasifica el vencimiento: la categoría se recalcula en cada lectura.
func (uc *SaleUseCase) CancelSale(ctx context.Context, saleID string) (*entity.Sale, error) {
	now := time.Now()
	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.ReceptionRepository,
		_ repository.WriteOffRepository,
	) error {
		s, err := saleRepo.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if s.Status == entity.SaleStatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		for _, line := range s.Lines {
			if _, err := ledger.IncrementLot(lotRepo, productRepo, line.LotID, line.Quantity); err != nil {
				return err
			}
		}
		if err := saleRepo.MarkCancelled(s.ID, now); err != nil {
			return err
		}
		s.Status = entity.SaleStatusCancelled
		s.CancelledAt = &now
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSale retorna una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// ListSales lista ventas recientes (cabeceras).
func (uc *SaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	return uc.saleRepo.List(limit, offset)
}

// mergeItems agrupa cantidades de productos repetidos conservando el orden de
// aparición, para que dos líneas del mismo producto no compitan por los mismos
// lotes dentro de una asignación.
func mergeItems(items []SaleItemInput) ([]SaleItemInput, error) {
	merged := make([]SaleItemInput, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
