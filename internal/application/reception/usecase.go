// Package reception implementa el flujo de recepción de mercadería: un acta
// pendiente de aprobación que, al aprobarse, materializa un lote nuevo por
// línea e incrementa el stock, todo en una sola transacción.
package reception

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/event"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// ReceptionUseCase registra, aprueba y rechaza actas de recepción.
type ReceptionUseCase struct {
	txRunner      ledger.TxRunner
	receptionRepo repository.ReceptionRepository // lecturas fuera de tx
	productRepo   repository.ProductRepository
	supplierRepo  repository.SupplierRepository
	notifier      event.Notifier
	defaultMargin decimal.Decimal // margen aplicado cuando el producto no tiene precio de lista
}

// NewReceptionUseCase construye el caso de uso.
func NewReceptionUseCase(
	txRunner ledger.TxRunner,
	receptionRepo repository.ReceptionRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	notifier event.Notifier,
	defaultMargin decimal.Decimal,
) *ReceptionUseCase {
	return &ReceptionUseCase{
		txRunner:      txRunner,
		receptionRepo: receptionRepo,
		productRepo:   productRepo,
		supplierRepo:  supplierRepo,
		notifier:      notifier,
		defaultMargin: defaultMargin,
	}
}

// LineInput línea propuesta de la recepción. No crea ningún lote.
type LineInput struct {
	ProductID  string
	LotNumber  string
	Expiration time.Time
	Quantity   int64
	UnitCost   decimal.Decimal
}

// SubmitInput entrada para Submit.
type SubmitInput struct {
	SupplierID string
	Lines      []LineInput
}

// Submit crea el acta en PENDING_APPROVAL y emite el evento de aprobación
// pendiente. Requiere capacidad de recepción.
func (uc *ReceptionUseCase) Submit(ctx context.Context, receiverID string, caps entity.Capabilities, in SubmitInput) (*entity.ReceptionAct, error) {
	if !caps.CanReceive {
		return nil, domain.ErrUnauthorized
	}
	if in.SupplierID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	act := &entity.ReceptionAct{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		ReceiverID: receiverID,
		Status:     entity.ReceptionPendingApproval,
		CreatedAt:  now,
	}
	for _, line := range in.Lines {
		if line.ProductID == "" || line.LotNumber == "" || line.Expiration.IsZero() {
			return nil, domain.ErrInvalidInput
		}
		if line.Quantity <= 0 || line.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		act.Lines = append(act.Lines, entity.ReceptionLine{
			ID:         uuid.New().String(),
			ActID:      act.ID,
			ProductID:  line.ProductID,
			LotNumber:  line.LotNumber,
			Expiration: line.Expiration,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}
	// Cabecera y líneas en una sola tx.
	err = uc.txRunner.Run(ctx, func(
		_ repository.LotRepository,
		_ repository.ProductRepository,
		_ repository.SaleRepository,
		receptionRepo repository.ReceptionRepository,
		_ repository.WriteOffRepository,
	) error {
		return receptionRepo.Create(act)
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ReceptionPending(ctx, event.ReceptionPendingApproval{
		ActID:      act.ID,
		SupplierID: act.SupplierID,
		ReceiverID: act.ReceiverID,
	})
	return act, nil
}

// Approve materializa los lotes del acta: por cada línea crea un lote nuevo
// (Available = Initial) e incrementa el stock del producto, ata la línea al
// lote y marca el acta COMPLETED en una sola operación multi-lote. Si cualquier
// línea falla, no existe ningún lote de este acta.
func (uc *ReceptionUseCase) Approve(ctx context.Context, approverID string, caps entity.Capabilities, actID, notes string) (*entity.ReceptionAct, error) {
	if !caps.CanApprove {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	var act *entity.ReceptionAct
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		_ repository.SaleRepository,
		receptionRepo repository.ReceptionRepository,
		_ repository.WriteOffRepository,
	) error {
		a, err := receptionRepo.GetForUpdate(actID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if err := a.Approve(approverID, notes, now); err != nil {
			return err // ErrAlreadyProcessed en estados terminales
		}
		for i := range a.Lines {
			line := &a.Lines[i]
			product, err := productRepo.GetByID(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			lot, err := ledger.CreateLot(lotRepo, productRepo, ledger.CreateLotInput{
				ProductID:    line.ProductID,
				LotNumber:    line.LotNumber,
				Expiration:   line.Expiration,
				Quantity:     line.Quantity,
				PurchaseCost: line.UnitCost,
				SalePrice:    uc.lotSalePrice(product, line.UnitCost),
			}, now)
			if err != nil {
				return err
			}
			if err := receptionRepo.LinkLineLot(line.ID, lot.ID); err != nil {
				return err
			}
			line.LotID = lot.ID
		}
		if err := receptionRepo.UpdateResolution(a); err != nil {
			return err
		}
		act = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// Reject marca el acta REJECTED sin ninguna mutación del ledger.
func (uc *ReceptionUseCase) Reject(ctx context.Context, approverID string, caps entity.Capabilities, actID, reason, notes string) (*entity.ReceptionAct, error) {
	if !caps.CanApprove {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	var act *entity.ReceptionAct
	err := uc.txRunner.Run(ctx, func(
		_ repository.LotRepository,
		_ repository.ProductRepository,
		_ repository.SaleRepository,
		receptionRepo repository.ReceptionRepository,
		_ repository.WriteOffRepository,
	) error {
		a, err := receptionRepo.GetForUpdate(actID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if err := a.Reject(approverID, reason, notes, now); err != nil {
			return err
		}
		if err := receptionRepo.UpdateResolution(a); err != nil {
			return err
		}
		act = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return act, nil
}

// GetByID retorna un acta con sus líneas.
func (uc *ReceptionUseCase) GetByID(ctx context.Context, actID string) (*entity.ReceptionAct, error) {
	act, err := uc.receptionRepo.GetByID(actID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, domain.ErrNotFound
	}
	return act, nil
}

// List lista actas, opcionalmente filtradas por estado.
func (uc *ReceptionUseCase) List(ctx context.Context, status entity.ReceptionStatus, limit, offset int) ([]*entity.ReceptionAct, error) {
	return uc.receptionRepo.List(status, limit, offset)
}

// lotSalePrice precio de venta del lote: el de lista del producto si existe,
// si no costo * (1 + margen por defecto).
func (uc *ReceptionUseCase) lotSalePrice(product *entity.Product, unitCost decimal.Decimal) decimal.Decimal {
	if product.SalePrice.GreaterThan(decimal.Zero) {
		return product.SalePrice
	}
	return unitCost.Mul(decimal.NewFromInt(1).Add(uc.defaultMargin))
}
