// Package writeoff implementa el flujo de bajas: una reducción de stock por
// motivo distinto a la venta, pendiente de aprobación o inmediata cuando el
// solicitante puede aprobar y renuncia explícitamente al paso de aprobación.
package writeoff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/event"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// BajaUseCase registra, aprueba y rechaza bajas.
type BajaUseCase struct {
	txRunner     ledger.TxRunner
	writeOffRepo repository.WriteOffRepository // lecturas fuera de tx
	notifier     event.Notifier
}

// NewBajaUseCase construye el caso de uso.
func NewBajaUseCase(
	txRunner ledger.TxRunner,
	writeOffRepo repository.WriteOffRepository,
	notifier event.Notifier,
) *BajaUseCase {
	return &BajaUseCase{
		txRunner:     txRunner,
		writeOffRepo: writeOffRepo,
		notifier:     notifier,
	}
}

// SubmitInput entrada para Submit.
type SubmitInput struct {
	LotID           string
	Quantity        int64
	Motive          entity.WriteOffMotive
	Notes           string
	RequireApproval bool
}

// Submit registra una baja. Si RequireApproval es false y el solicitante puede
// aprobar, toma la vía inmediata: el descuento se aplica y el registro nace en
// APPROVED con el solicitante como aprobador, sin pasar nunca por PENDING.
// En caso contrario crea el registro PENDING y emite el evento de aprobación
// pendiente. La validación quantity <= available aquí es solo un pre-chequeo;
// la aprobación re-valida contra el estado vigente.
func (uc *BajaUseCase) Submit(ctx context.Context, requesterID string, caps entity.Capabilities, in SubmitInput) (*entity.WriteOff, error) {
	if in.LotID == "" || in.Quantity <= 0 || !entity.ValidMotive(in.Motive) {
		return nil, domain.ErrInvalidInput
	}

	if !in.RequireApproval && caps.CanApprove {
		return uc.submitImmediate(ctx, requesterID, in)
	}

	now := time.Now()
	var wo *entity.WriteOff
	var productName string
	// Pre-chequeo y registro PENDING en una sola tx.
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		_ repository.ReceptionRepository,
		writeOffRepo repository.WriteOffRepository,
	) error {
		lot, err := lotRepo.GetByID(in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if in.Quantity > lot.Available {
			return fmt.Errorf("%w: lote %s tiene %d disponible",
				domain.ErrInsufficientStock, lot.LotNumber, lot.Available)
		}
		product, err := productRepo.GetByID(lot.ProductID)
		if err != nil {
			return err
		}
		if product != nil {
			productName = product.Name
		}
		wo = &entity.WriteOff{
			ID:          uuid.New().String(),
			LotID:       in.LotID,
			RequesterID: requesterID,
			Quantity:    in.Quantity,
			Motive:      in.Motive,
			Notes:       in.Notes,
			Status:      entity.WriteOffPending,
			CreatedAt:   now,
		}
		return writeOffRepo.Create(wo)
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.BajaPending(ctx, event.BajaPendingApproval{
		BajaID:      wo.ID,
		LotID:       wo.LotID,
		ProductName: productName,
	})
	return wo, nil
}

// submitImmediate descuenta y crea el registro ya APPROVED en una sola tx, con
// el solicitante registrado como solicitante y aprobador.
func (uc *BajaUseCase) submitImmediate(ctx context.Context, requesterID string, in SubmitInput) (*entity.WriteOff, error) {
	now := time.Now()
	var wo *entity.WriteOff
	var low *event.LowStock
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		_ repository.ReceptionRepository,
		writeOffRepo repository.WriteOffRepository,
	) error {
		lot, err := ledger.DecrementLot(lotRepo, productRepo, in.LotID, in.Quantity)
		if err != nil {
			return err
		}
		wo = &entity.WriteOff{
			ID:          uuid.New().String(),
			LotID:       in.LotID,
			RequesterID: requesterID,
			Quantity:    in.Quantity,
			Motive:      in.Motive,
			Notes:       in.Notes,
			Status:      entity.WriteOffApproved,
			ApproverID:  requesterID,
			ResolvedAt:  &now,
			CreatedAt:   now,
		}
		if err := writeOffRepo.Create(wo); err != nil {
			return err
		}
		low = uc.lowStockAfter(productRepo, lot.ProductID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if low != nil {
		uc.notifier.StockLow(ctx, *low)
	}
	return wo, nil
}

// Approve re-valida quantity <= lot.Available contra el estado vigente (el
// stock pudo moverse desde el registro) y aplica el descuento. Falla con
// ErrInsufficientStock si ya no alcanza (nunca recorta en silencio) y con
// ErrAlreadyProcessed si la baja no está PENDING.
func (uc *BajaUseCase) Approve(ctx context.Context, approverID string, caps entity.Capabilities, bajaID, notes string) (*entity.WriteOff, error) {
	if !caps.CanApprove {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	var wo *entity.WriteOff
	var low *event.LowStock
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		_ repository.ReceptionRepository,
		writeOffRepo repository.WriteOffRepository,
	) error {
		w, err := writeOffRepo.GetForUpdate(bajaID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
		if err := w.Approve(approverID, notes, now); err != nil {
			return err
		}
		// DecrementLot bloquea el lote y verifica disponibilidad vigente.
		lot, err := ledger.DecrementLot(lotRepo, productRepo, w.LotID, w.Quantity)
		if err != nil {
			return err
		}
		if err := writeOffRepo.UpdateResolution(w); err != nil {
			return err
		}
		low = uc.lowStockAfter(productRepo, lot.ProductID)
		wo = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	if low != nil {
		uc.notifier.StockLow(ctx, *low)
	}
	return wo, nil
}

// Reject marca la baja REJECTED sin ninguna mutación del ledger.
func (uc *BajaUseCase) Reject(ctx context.Context, approverID string, caps entity.Capabilities, bajaID, reason, notes string) (*entity.WriteOff, error) {
	if !caps.CanApprove {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	var wo *entity.WriteOff
	err := uc.txRunner.Run(ctx, func(
		_ repository.LotRepository,
		_ repository.ProductRepository,
		_ repository.SaleRepository,
		_ repository.ReceptionRepository,
		writeOffRepo repository.WriteOffRepository,
	) error {
		w, err := writeOffRepo.GetForUpdate(bajaID)
		if err != nil {
			return err
		}
		if w == nil {
			return domain.ErrNotFound
		}
		if err := w.Reject(approverID, reason, notes, now); err != nil {
			return err
		}
		if err := writeOffRepo.UpdateResolution(w); err != nil {
			return err
		}
		wo = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wo, nil
}

// GetByID retorna una baja.
func (uc *BajaUseCase) GetByID(ctx context.Context, bajaID string) (*entity.WriteOff, error) {
	wo, err := uc.writeOffRepo.GetByID(bajaID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, domain.ErrNotFound
	}
	return wo, nil
}

// List lista bajas, opcionalmente filtradas por estado.
func (uc *BajaUseCase) List(ctx context.Context, status entity.WriteOffStatus, limit, offset int) ([]*entity.WriteOff, error) {
	return uc.writeOffRepo.List(status, limit, offset)
}

// lowStockAfter consulta el producto ya descontado y arma el evento si quedó
// en o bajo el mínimo.
func (uc *BajaUseCase) lowStockAfter(productRepo repository.ProductRepository, productID string) *event.LowStock {
	product, err := productRepo.GetByID(productID)
	if err != nil || product == nil {
		return nil
	}
	if !product.LowStock() {
		return nil
	}
	return &event.LowStock{
		ProductID:   product.ID,
		ProductName: product.Name,
		StockTotal:  product.StockTotal,
		StockMinimo: product.StockMinimo,
	}
}
