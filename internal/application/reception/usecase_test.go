package reception_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaplus/farmacia-api/internal/application/reception"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testFarmaceutico = "user-farmaceutico-1"
	testAdmin        = "user-admin-1"
	testSupplier     = "supplier-distrifarma"
	testProduct      = "prod-loratadina"
)

var (
	capsReceive = entity.CapabilitiesForRole(entity.RoleFarmaceutico) // recibe, no aprueba
	capsApprove = entity.CapabilitiesForRole(entity.RoleAdmin)        // recibe y aprueba
	capsNone    = entity.CapabilitiesForRole(entity.RoleCajero)
)

var defaultMargin = decimal.RequireFromString("0.30")

func setup() (*testutil.Store, *reception.ReceptionUseCase, *testutil.RecorderNotifier) {
	store := testutil.NewStore()
	store.SeedSupplier(&entity.Supplier{ID: testSupplier, Name: "Distrifarma"})
	store.SeedProduct(&entity.Product{
		ID:          testProduct,
		SKU:         "LORA-10",
		Name:        "Loratadina 10mg",
		SalePrice:   decimal.RequireFromString("1500"),
		StockTotal:  0,
		StockMinimo: 10,
	})
	notifier := &testutil.RecorderNotifier{}
	uc := reception.NewReceptionUseCase(
		store.TxRunner(), store.ReceptionRepo(), store.ProductRepo(),
		store.SupplierRepo(), notifier, defaultMargin,
	)
	return store, uc, notifier
}

func submitInput(qty int64) reception.SubmitInput {
	return reception.SubmitInput{
		SupplierID: testSupplier,
		Lines: []reception.LineInput{{
			ProductID:  testProduct,
			LotNumber:  "LN-2026-001",
			Expiration: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
			Quantity:   qty,
			UnitCost:   decimal.RequireFromString("900"),
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Submit
// ──────────────────────────────────────────────────────────────────────────────

// El registro del acta no crea lotes ni mueve stock: el inventario solo cambia
// en la aprobación.
func TestSubmit_NoTocaInventario(t *testing.T) {
	store, uc, notifier := setup()

	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(200))
	require.NoError(t, err)

	assert.Equal(t, entity.ReceptionPendingApproval, act.Status)
	assert.Equal(t, testFarmaceutico, act.ReceiverID)
	require.Len(t, act.Lines, 1)
	assert.Empty(t, act.Lines[0].LotID, "la línea no debe tener lote antes de aprobar")

	assert.Empty(t, store.Lots, "ningún lote debe existir antes de la aprobación")
	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(0), product.StockTotal)

	// Evento de aprobación pendiente emitido tras el commit.
	require.Len(t, notifier.Receptions, 1)
	assert.Equal(t, act.ID, notifier.Receptions[0].ActID)
	assert.Equal(t, testSupplier, notifier.Receptions[0].SupplierID)
}

func TestSubmit_SinCapacidadDeRecepcion(t *testing.T) {
	_, uc, notifier := setup()

	_, err := uc.Submit(context.Background(), "user-cajero", capsNone, submitInput(10))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, notifier.Receptions)
}

func TestSubmit_ProveedorInexistente(t *testing.T) {
	_, uc, _ := setup()

	in := submitInput(10)
	in.SupplierID = "no-existe"
	_, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_LineasInvalidas(t *testing.T) {
	_, uc, _ := setup()

	cases := []struct {
		name   string
		mutate func(*reception.SubmitInput)
	}{
		{"sin líneas", func(in *reception.SubmitInput) { in.Lines = nil }},
		{"cantidad cero", func(in *reception.SubmitInput) { in.Lines[0].Quantity = 0 }},
		{"costo negativo", func(in *reception.SubmitInput) {
			in.Lines[0].UnitCost = decimal.RequireFromString("-1")
		}},
		{"sin número de lote", func(in *reception.SubmitInput) { in.Lines[0].LotNumber = "" }},
		{"sin vencimiento", func(in *reception.SubmitInput) { in.Lines[0].Expiration = time.Time{} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := submitInput(10)
			tc.mutate(&in)
			_, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve
// ──────────────────────────────────────────────────────────────────────────────

// La aprobación materializa un lote por línea con Available = Initial, suma el
// stock y ata la línea al lote.
func TestApprove_MaterializaLotesYSumaStock(t *testing.T) {
	store, uc, _ := setup()

	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(200))
	require.NoError(t, err)

	approved, err := uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "todo conforme")
	require.NoError(t, err)

	assert.Equal(t, entity.ReceptionCompleted, approved.Status)
	assert.Equal(t, testAdmin, approved.ApproverID)
	require.NotNil(t, approved.ResolvedAt)
	require.NotEmpty(t, approved.Lines[0].LotID, "la línea debe quedar atada al lote creado")

	lot, err := store.LotRepo().GetByID(approved.Lines[0].LotID)
	require.NoError(t, err)
	require.NotNil(t, lot)
	assert.Equal(t, int64(200), lot.Initial)
	assert.Equal(t, int64(200), lot.Available, "el lote nace con Available = Initial")
	assert.Equal(t, "LN-2026-001", lot.LotNumber)
	assert.True(t, lot.PurchaseCost.Equal(decimal.RequireFromString("900")))
	// El producto tiene precio de lista; el lote lo hereda.
	assert.True(t, lot.SalePrice.Equal(decimal.RequireFromString("1500")))

	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(200), product.StockTotal)
	assert.Equal(t, store.TotalAvailable(testProduct), product.StockTotal)
}

// Un acta de dos líneas sobre dos productos materializa exactamente dos lotes
// y suma el stock de cada producto por separado.
func TestApprove_ActaDeDosLineasMaterializaDosLotes(t *testing.T) {
	store, uc, _ := setup()
	store.SeedProduct(&entity.Product{
		ID:        "prod-ibuprofeno",
		SKU:       "IBU-400",
		Name:      "Ibuprofeno 400mg",
		SalePrice: decimal.RequireFromString("800"),
	})

	in := submitInput(100)
	in.Lines = append(in.Lines, reception.LineInput{
		ProductID:  "prod-ibuprofeno",
		LotNumber:  "LN-2026-002",
		Expiration: time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC),
		Quantity:   40,
		UnitCost:   decimal.RequireFromString("500"),
	})
	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
	require.NoError(t, err)

	approved, err := uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "")
	require.NoError(t, err)

	require.Len(t, store.Lots, 2, "una línea, un lote")
	for _, line := range approved.Lines {
		require.NotEmpty(t, line.LotID)
		lot, _ := store.LotRepo().GetByID(line.LotID)
		require.NotNil(t, lot)
		assert.Equal(t, line.ProductID, lot.ProductID)
		assert.Equal(t, line.Quantity, lot.Initial)
		assert.Equal(t, lot.Initial, lot.Available)
	}

	pLora, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(100), pLora.StockTotal)
	assert.Equal(t, store.TotalAvailable(testProduct), pLora.StockTotal)
	pIbu, _ := store.ProductRepo().GetByID("prod-ibuprofeno")
	assert.Equal(t, int64(40), pIbu.StockTotal)
	assert.Equal(t, store.TotalAvailable("prod-ibuprofeno"), pIbu.StockTotal)
}

// Si una línea falla durante la aprobación, ningún lote del acta sobrevive y
// el acta sigue pendiente.
func TestApprove_FallaUnaLineaNoMaterializaNada(t *testing.T) {
	store, uc, _ := setup()
	store.SeedProduct(&entity.Product{
		ID:        "prod-ibuprofeno",
		SKU:       "IBU-400",
		Name:      "Ibuprofeno 400mg",
		SalePrice: decimal.RequireFromString("800"),
	})

	in := submitInput(100)
	in.Lines = append(in.Lines, reception.LineInput{
		ProductID:  "prod-ibuprofeno",
		LotNumber:  "LN-2026-002",
		Expiration: time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC),
		Quantity:   40,
		UnitCost:   decimal.RequireFromString("500"),
	})
	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
	require.NoError(t, err)

	// El producto de la segunda línea desaparece entre el registro y la aprobación.
	delete(store.Products, "prod-ibuprofeno")

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, store.Lots, "la primera línea no debe quedar materializada")
	pLora, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(0), pLora.StockTotal)
	pending, _ := store.ReceptionRepo().GetByID(act.ID)
	assert.Equal(t, entity.ReceptionPendingApproval, pending.Status, "el acta debe seguir pendiente")
}

// Sin precio de lista, el precio del lote sale del costo más el margen.
func TestApprove_PrecioDeLotePorMargen(t *testing.T) {
	store, uc, _ := setup()
	store.SeedProduct(&entity.Product{
		ID:   "prod-generico",
		SKU:  "GEN-1",
		Name: "Genérico sin precio de lista",
	})

	in := submitInput(10)
	in.Lines[0].ProductID = "prod-generico"
	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
	require.NoError(t, err)

	approved, err := uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "")
	require.NoError(t, err)

	lot, _ := store.LotRepo().GetByID(approved.Lines[0].LotID)
	// 900 * 1.30 = 1170
	assert.True(t, lot.SalePrice.Equal(decimal.RequireFromString("1170")),
		"precio esperado 1170, obtenido %s", lot.SalePrice)
}

// Aprobar dos veces falla la segunda y no duplica lotes ni stock.
func TestApprove_DobleAprobacionNoDuplicaLotes(t *testing.T) {
	store, uc, _ := setup()

	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(50))
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "")
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	assert.Len(t, store.Lots, 1, "la segunda aprobación no debe crear otro lote")
	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(50), product.StockTotal, "el stock no debe duplicarse")
}

func TestApprove_SinCapacidadDeAprobacion(t *testing.T) {
	_, uc, _ := setup()

	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(10))
	require.NoError(t, err)

	// El farmacéutico registra pero no aprueba.
	_, err = uc.Approve(context.Background(), testFarmaceutico, capsReceive, act.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestApprove_ActaInexistente(t *testing.T) {
	_, uc, _ := setup()

	_, err := uc.Approve(context.Background(), testAdmin, capsApprove, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_NoTocaInventario(t *testing.T) {
	store, uc, _ := setup()

	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(80))
	require.NoError(t, err)

	rejected, err := uc.Reject(context.Background(), testAdmin, capsApprove, act.ID, "mercancía averiada", "")
	require.NoError(t, err)

	assert.Equal(t, entity.ReceptionRejected, rejected.Status)
	assert.Equal(t, "mercancía averiada", rejected.RejectReason)
	assert.Empty(t, store.Lots)
	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(0), product.StockTotal)
}

// Un acta rechazada no puede aprobarse después.
func TestReject_LuegoAprobarFalla(t *testing.T) {
	store, uc, _ := setup()

	act, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(80))
	require.NoError(t, err)

	_, err = uc.Reject(context.Background(), testAdmin, capsApprove, act.ID, "no solicitado", "")
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, act.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.Empty(t, store.Lots)
}
