package pos_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaplus/farmacia-api/internal/application/pos"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCajero = "user-cajero-1"
	prodA      = "prod-acetaminofen"
	prodB      = "prod-ibuprofeno"
)

var taxRate = decimal.RequireFromString("0.19")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedProduct(store *testutil.Store, id string, stock, minimo int64, taxed bool) {
	store.SeedProduct(&entity.Product{
		ID:          id,
		SKU:         "SKU-" + id,
		Name:        id,
		SalePrice:   decimal.RequireFromString("1500"),
		StockTotal:  stock,
		StockMinimo: minimo,
		Taxed:       taxed,
	})
}

func seedLot(store *testutil.Store, id, productID string, exp time.Time, available int64, price string) {
	store.SeedLot(&entity.Lot{
		ID:           id,
		ProductID:    productID,
		LotNumber:    id,
		Expiration:   exp,
		Initial:      available,
		Available:    available,
		PurchaseCost: decimal.RequireFromString("800"),
		SalePrice:    decimal.RequireFromString(price),
	})
}

func newSaleUC(store *testutil.Store) (*pos.SaleUseCase, *testutil.RecorderNotifier) {
	notifier := &testutil.RecorderNotifier{}
	uc := pos.NewSaleUseCase(store.TxRunner(), store.SaleRepo(), notifier, taxRate)
	return uc, notifier
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessSale
// ──────────────────────────────────────────────────────────────────────────────

// La venta cruza dos lotes en orden de vencimiento y congela el precio de cada
// lote en su línea.
func TestProcessSale_FEFOCruzaLotesYCongelaPrecios(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 180, 10, false)
	seedLot(store, "L-MAR", prodA, date(2026, 3, 1), 30, "1200")
	seedLot(store, "L-JUN", prodA, date(2026, 6, 1), 150, "1350")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 100}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 2, "100 unidades sobre lotes de 30 y 150 deben producir dos líneas")

	assert.Equal(t, "L-MAR", sale.Lines[0].LotID)
	assert.Equal(t, int64(30), sale.Lines[0].Quantity)
	assert.True(t, sale.Lines[0].UnitPrice.Equal(decimal.RequireFromString("1200")))

	assert.Equal(t, "L-JUN", sale.Lines[1].LotID)
	assert.Equal(t, int64(70), sale.Lines[1].Quantity)
	assert.True(t, sale.Lines[1].UnitPrice.Equal(decimal.RequireFromString("1350")))

	// 30*1200 + 70*1350 = 130500, sin IVA (producto no gravado).
	assert.True(t, sale.NetTotal.Equal(decimal.RequireFromString("130500")), "neto: %s", sale.NetTotal)
	assert.True(t, sale.TaxTotal.IsZero())
	assert.True(t, sale.GrandTotal.Equal(sale.NetTotal))
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)

	// Ledger consistente: agregado == suma de disponibles.
	lot, _ := store.LotRepo().GetByID("L-MAR")
	assert.Equal(t, int64(0), lot.Available, "el lote de marzo queda agotado")
	product, _ := store.ProductRepo().GetByID(prodA)
	assert.Equal(t, int64(80), product.StockTotal)
	assert.Equal(t, store.TotalAvailable(prodA), product.StockTotal,
		"StockTotal debe igualar la suma de disponibles")
}

// A igual vencimiento manda el orden de creación: el lote registrado primero
// se consume primero, sin importar su ID.
func TestProcessSale_VencimientosIgualesConsumenPorOrdenDeCreacion(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 80, 0, false)
	// El ID alfabéticamente mayor se registra primero a propósito.
	seedLot(store, "L-ZETA", prodA, date(2026, 7, 1), 30, "1000")
	seedLot(store, "L-ALFA", prodA, date(2026, 7, 1), 50, "1000")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 40}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 2)

	assert.Equal(t, "L-ZETA", sale.Lines[0].LotID, "el lote creado primero se consume primero")
	assert.Equal(t, int64(30), sale.Lines[0].Quantity)
	assert.Equal(t, "L-ALFA", sale.Lines[1].LotID)
	assert.Equal(t, int64(10), sale.Lines[1].Quantity)

	lotZeta, _ := store.LotRepo().GetByID("L-ZETA")
	assert.Equal(t, int64(0), lotZeta.Available)
	lotAlfa, _ := store.LotRepo().GetByID("L-ALFA")
	assert.Equal(t, int64(40), lotAlfa.Available)
}

// El IVA se aplica solo a productos gravados, sobre el precio congelado del lote.
func TestProcessSale_IVAEnProductosGravados(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 50, 0, true)
	seedLot(store, "L-1", prodA, date(2026, 5, 1), 50, "1000")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 10}},
		PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)

	assert.True(t, sale.NetTotal.Equal(decimal.RequireFromString("10000")))
	assert.True(t, sale.TaxTotal.Equal(decimal.RequireFromString("1900")), "IVA 19%% de 10000")
	assert.True(t, sale.GrandTotal.Equal(decimal.RequireFromString("11900")))
	assert.True(t, sale.Lines[0].TaxRate.Equal(taxRate))
}

// Atomicidad: si una línea no alcanza stock, la venta completa aborta y ningún
// lote de las líneas previas queda descontado.
func TestProcessSale_FallaUnaLineaNoDescuentaNada(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 100, 0, false)
	seedLot(store, "L-A", prodA, date(2026, 4, 1), 100, "1000")
	seedProduct(store, prodB, 5, 0, false)
	seedLot(store, "L-B", prodB, date(2026, 4, 1), 5, "2000")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items: []pos.SaleItemInput{
			{ProductID: prodA, Quantity: 10}, // alcanzaría
			{ProductID: prodB, Quantity: 50}, // no alcanza
		},
		PaymentMethod: entity.PaymentCash,
	})
	require.Error(t, err)
	assert.Nil(t, sale)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada cambió, ni siquiera la línea que sí alcanzaba.
	lotA, _ := store.LotRepo().GetByID("L-A")
	assert.Equal(t, int64(100), lotA.Available, "la línea viable no debe quedar aplicada")
	pA, _ := store.ProductRepo().GetByID(prodA)
	assert.Equal(t, int64(100), pA.StockTotal)
	pB, _ := store.ProductRepo().GetByID(prodB)
	assert.Equal(t, int64(5), pB.StockTotal)
	assert.Empty(t, store.Sales, "no debe persistirse ninguna venta")
}

// Dos ítems del mismo producto se funden en uno antes de asignar, para que no
// compitan por los mismos lotes.
func TestProcessSale_ItemsDuplicadosSeFusionan(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 40, 0, false)
	seedLot(store, "L-1", prodA, date(2026, 4, 1), 40, "1000")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items: []pos.SaleItemInput{
			{ProductID: prodA, Quantity: 10},
			{ProductID: prodA, Quantity: 15},
		},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1, "el mismo lote cubre la cantidad fusionada en una línea")
	assert.Equal(t, int64(25), sale.Lines[0].Quantity)
}

func TestProcessSale_EntradaInvalida(t *testing.T) {
	store := testutil.NewStore()
	uc, _ := newSaleUC(store)

	cases := []struct {
		name string
		in   pos.SaleInput
	}{
		{"sin items", pos.SaleInput{PaymentMethod: entity.PaymentCash}},
		{"método de pago inválido", pos.SaleInput{
			Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 1}},
			PaymentMethod: "CHEQUE",
		}},
		{"cantidad cero", pos.SaleInput{
			Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 0}},
			PaymentMethod: entity.PaymentCash,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ProcessSale(context.Background(), testCajero, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestProcessSale_ProductoInexistente(t *testing.T) {
	store := testutil.NewStore()
	uc, _ := newSaleUC(store)

	_, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: "no-existe", Quantity: 1}},
		PaymentMethod: entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Una venta que deja el producto en o bajo su mínimo emite el evento de stock
// bajo después del commit.
func TestProcessSale_EmiteEventoStockBajo(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 30, 25, false)
	seedLot(store, "L-1", prodA, date(2026, 4, 1), 30, "1000")

	uc, notifier := newSaleUC(store)
	_, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 10}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	require.Len(t, notifier.LowStocks, 1)
	assert.Equal(t, prodA, notifier.LowStocks[0].ProductID)
	assert.Equal(t, int64(20), notifier.LowStocks[0].StockTotal)
	assert.Equal(t, int64(25), notifier.LowStocks[0].StockMinimo)
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelSale
// ──────────────────────────────────────────────────────────────────────────────

// La anulación restituye cada línea exactamente al lote de origen.
func TestCancelSale_RestituyeAlMismoLote(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 180, 0, false)
	seedLot(store, "L-MAR", prodA, date(2026, 3, 1), 30, "1200")
	seedLot(store, "L-JUN", prodA, date(2026, 6, 1), 150, "1350")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 100}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	cancelled, err := uc.CancelSale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	lotMar, _ := store.LotRepo().GetByID("L-MAR")
	assert.Equal(t, int64(30), lotMar.Available, "el lote de marzo recupera sus 30")
	lotJun, _ := store.LotRepo().GetByID("L-JUN")
	assert.Equal(t, int64(150), lotJun.Available, "el lote de junio recupera sus 70")

	product, _ := store.ProductRepo().GetByID(prodA)
	assert.Equal(t, int64(180), product.StockTotal)
	assert.Equal(t, store.TotalAvailable(prodA), product.StockTotal)
}

// Anular dos veces falla la segunda sin tocar stock.
func TestCancelSale_DobleAnulacion(t *testing.T) {
	store := testutil.NewStore()
	seedProduct(store, prodA, 50, 0, false)
	seedLot(store, "L-1", prodA, date(2026, 4, 1), 50, "1000")

	uc, _ := newSaleUC(store)
	sale, err := uc.ProcessSale(context.Background(), testCajero, pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: prodA, Quantity: 10}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	_, err = uc.CancelSale(context.Background(), sale.ID)
	require.NoError(t, err)

	_, err = uc.CancelSale(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	lot, _ := store.LotRepo().GetByID("L-1")
	assert.Equal(t, int64(50), lot.Available, "la doble anulación no debe duplicar la restitución")
}

func TestCancelSale_VentaInexistente(t *testing.T) {
	store := testutil.NewStore()
	uc, _ := newSaleUC(store)

	_, err := uc.CancelSale(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
