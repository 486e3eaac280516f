package ledger

import (
	"context"
	"time"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/expiration"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// ReportUseCase reportes de solo lectura sobre el ledger: lotes por riesgo de
// vencimiento y productos bajo stock mínimo. Sin barridos programados: todo se
// calcula bajo demanda sobre el estado actual.
type ReportUseCase struct {
	lotRepo     repository.LotRepository
	productRepo repository.ProductRepository
	thresholds  expiration.Thresholds
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	thresholds expiration.Thresholds,
) *ReportUseCase {
	return &ReportUseCase{lotRepo: lotRepo, productRepo: productRepo, thresholds: thresholds}
}

// ExpiringLotsReport lotes activos agrupados por categoría de riesgo.
// GREEN se omite: el reporte alimenta alertas, no el inventario completo.
type ExpiringLotsReport struct {
	Expired []*entity.Lot
	Red     []*entity.Lot
	Yellow  []*entity.Lot
	Orange  []*entity.Lot
}

// ExpiringLots clasifica todos los lotes con disponible > 0 respecto a asOf.
func (uc *ReportUseCase) ExpiringLots(ctx context.Context, asOf time.Time) (*ExpiringLotsReport, error) {
	lots, err := uc.lotRepo.ListActive()
	if err != nil {
		return nil, err
	}
	report := &ExpiringLotsReport{}
	for _, lot := range lots {
		switch expiration.Classify(lot.Expiration, asOf, uc.thresholds) {
		case expiration.CategoryExpired:
			report.Expired = append(report.Expired, lot)
		case expiration.CategoryRed:
			report.Red = append(report.Red, lot)
		case expiration.CategoryYellow:
			report.Yellow = append(report.Yellow, lot)
		case expiration.CategoryOrange:
			report.Orange = append(report.Orange, lot)
		}
	}
	return report, nil
}

// LowStockProducts productos con stock_total <= stock_minimo.
func (uc *ReportUseCase) LowStockProducts(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.ListLowStock()
}
