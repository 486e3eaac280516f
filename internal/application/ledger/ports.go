package ledger

import (
	"context"

	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la frontera de unidad de trabajo de todas
// las secuencias mutantes del núcleo (venta, anulación, aprobación de
// recepción, baja): o se aplica todo, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		receptionRepo repository.ReceptionRepository,
		writeOffRepo repository.WriteOffRepository,
	) error) error
}
