package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaplus/farmacia-api/internal/application/ledger"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones del libro de lotes: el único escritor de Lot.Available y
// Product.StockTotal. Cada operación mueve lote y agregado juntos.
// ──────────────────────────────────────────────────────────────────────────────

const testProduct = "prod-omeprazol"

var now = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func setup(stock int64) *testutil.Store {
	store := testutil.NewStore()
	store.SeedProduct(&entity.Product{
		ID:         testProduct,
		SKU:        "OME-20",
		Name:       "Omeprazol 20mg",
		StockTotal: stock,
	})
	return store
}

func TestCreateLot_NaceConDisponibleIgualInicial(t *testing.T) {
	store := setup(0)

	lot, err := ledger.CreateLot(store.LotRepo(), store.ProductRepo(), ledger.CreateLotInput{
		ProductID:    testProduct,
		LotNumber:    "LN-001",
		Expiration:   now.AddDate(1, 0, 0),
		Quantity:     120,
		PurchaseCost: decimal.RequireFromString("700"),
		SalePrice:    decimal.RequireFromString("1100"),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, int64(120), lot.Initial)
	assert.Equal(t, int64(120), lot.Available)

	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(120), product.StockTotal, "el agregado sube junto con el lote")
}

func TestCreateLot_EntradaInvalida(t *testing.T) {
	store := setup(0)

	cases := []struct {
		name string
		in   ledger.CreateLotInput
	}{
		{"cantidad cero", ledger.CreateLotInput{
			ProductID: testProduct, LotNumber: "LN-1", Expiration: now.AddDate(1, 0, 0),
		}},
		{"sin número de lote", ledger.CreateLotInput{
			ProductID: testProduct, Quantity: 10, Expiration: now.AddDate(1, 0, 0),
		}},
		{"sin vencimiento", ledger.CreateLotInput{
			ProductID: testProduct, LotNumber: "LN-1", Quantity: 10,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.CreateLot(store.LotRepo(), store.ProductRepo(), tc.in, now)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateLot_ProductoInexistente(t *testing.T) {
	store := setup(0)

	_, err := ledger.CreateLot(store.LotRepo(), store.ProductRepo(), ledger.CreateLotInput{
		ProductID:  "no-existe",
		LotNumber:  "LN-1",
		Expiration: now.AddDate(1, 0, 0),
		Quantity:   10,
	}, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecrementLot_MueveLoteYAgregadoJuntos(t *testing.T) {
	store := setup(0)
	mustCreateLot(t, store, "LN-001", 100)

	lot := firstLot(store)
	updated, err := ledger.DecrementLot(store.LotRepo(), store.ProductRepo(), lot.ID, 30)
	require.NoError(t, err)

	assert.Equal(t, int64(70), updated.Available)
	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(70), product.StockTotal)
}

func TestDecrementLot_InsuficienteNoMutaNada(t *testing.T) {
	store := setup(0)
	mustCreateLot(t, store, "LN-001", 20)

	lot := firstLot(store)
	_, err := ledger.DecrementLot(store.LotRepo(), store.ProductRepo(), lot.ID, 25)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	fresh, _ := store.LotRepo().GetByID(lot.ID)
	assert.Equal(t, int64(20), fresh.Available, "un descuento que no alcanza no muta nada")
}

func TestIncrementLot_NoExcedeElInicial(t *testing.T) {
	store := setup(0)
	mustCreateLot(t, store, "LN-001", 50)

	lot := firstLot(store)
	_, err := ledger.DecrementLot(store.LotRepo(), store.ProductRepo(), lot.ID, 10)
	require.NoError(t, err)

	// Restituir los 10 es válido; restituir 11 rompería Available <= Initial.
	_, err = ledger.IncrementLot(store.LotRepo(), store.ProductRepo(), lot.ID, 11)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err := ledger.IncrementLot(store.LotRepo(), store.ProductRepo(), lot.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(50), updated.Available)

	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(50), product.StockTotal)
}

func mustCreateLot(t *testing.T, store *testutil.Store, lotNumber string, qty int64) {
	t.Helper()
	_, err := ledger.CreateLot(store.LotRepo(), store.ProductRepo(), ledger.CreateLotInput{
		ProductID:    testProduct,
		LotNumber:    lotNumber,
		Expiration:   now.AddDate(1, 0, 0),
		Quantity:     qty,
		PurchaseCost: decimal.RequireFromString("700"),
		SalePrice:    decimal.RequireFromString("1100"),
	}, now)
	require.NoError(t, err)
}

func firstLot(store *testutil.Store) *entity.Lot {
	lots, _ := store.LotRepo().ListAvailableByProduct(testProduct)
	return lots[0]
}
