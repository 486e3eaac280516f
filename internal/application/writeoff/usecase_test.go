package writeoff_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaplus/farmacia-api/internal/application/pos"
	"github.com/farmaplus/farmacia-api/internal/application/writeoff"
	"github.com/farmaplus/farmacia-api/internal/domain"
	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testAdmin        = "user-admin-1"
	testFarmaceutico = "user-farmaceutico-1"
	testProduct      = "prod-insulina"
	testLot          = "lot-insulina-01"
)

var (
	capsApprove = entity.CapabilitiesForRole(entity.RoleAdmin)
	capsReceive = entity.CapabilitiesForRole(entity.RoleFarmaceutico)
)

func setup(available int64) (*testutil.Store, *writeoff.BajaUseCase, *testutil.RecorderNotifier) {
	store := testutil.NewStore()
	store.SeedProduct(&entity.Product{
		ID:          testProduct,
		SKU:         "INS-100",
		Name:        "Insulina 100UI",
		StockTotal:  available,
		StockMinimo: 5,
	})
	store.SeedLot(&entity.Lot{
		ID:         testLot,
		ProductID:  testProduct,
		LotNumber:  "LN-INS-01",
		Expiration: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Initial:    available,
		Available:  available,
		SalePrice:  decimal.RequireFromString("45000"),
	})
	notifier := &testutil.RecorderNotifier{}
	uc := writeoff.NewBajaUseCase(store.TxRunner(), store.WriteOffRepo(), notifier)
	return store, uc, notifier
}

func submitInput(qty int64, requireApproval bool) writeoff.SubmitInput {
	return writeoff.SubmitInput{
		LotID:           testLot,
		Quantity:        qty,
		Motive:          entity.MotiveExpiration,
		RequireApproval: requireApproval,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Submit con aprobación requerida
// ──────────────────────────────────────────────────────────────────────────────

// La baja pendiente no descuenta nada: el lote queda intacto hasta aprobar.
func TestSubmit_PendienteNoDescuenta(t *testing.T) {
	store, uc, notifier := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(20, true))
	require.NoError(t, err)

	assert.Equal(t, entity.WriteOffPending, wo.Status)
	assert.Equal(t, testFarmaceutico, wo.RequesterID)
	assert.Empty(t, wo.ApproverID)

	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(100), lot.Available, "el registro pendiente no debe descontar")

	require.Len(t, notifier.Bajas, 1)
	assert.Equal(t, wo.ID, notifier.Bajas[0].BajaID)
	assert.Equal(t, "Insulina 100UI", notifier.Bajas[0].ProductName)
}

// Pre-chequeo al registrar: pedir más del disponible falla de entrada y no
// deja ningún registro.
func TestSubmit_CantidadMayorAlDisponible(t *testing.T) {
	store, uc, _ := setup(10)

	_, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(25, true))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	pendientes, _ := store.WriteOffRepo().List("", 10, 0)
	assert.Empty(t, pendientes)
}

func TestSubmit_MotivoInvalido(t *testing.T) {
	_, uc, _ := setup(10)

	in := submitInput(5, true)
	in.Motive = "CAPRICHO"
	_, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmit_LoteInexistente(t *testing.T) {
	_, uc, _ := setup(10)

	in := submitInput(5, true)
	in.LotID = "no-existe"
	_, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vía inmediata
// ──────────────────────────────────────────────────────────────────────────────

// Sin aprobación requerida y con capacidad de aprobar, la baja nace APPROVED
// con el descuento ya aplicado y el solicitante como aprobador.
func TestSubmit_ViaInmediata(t *testing.T) {
	store, uc, notifier := setup(100)

	wo, err := uc.Submit(context.Background(), testAdmin, capsApprove, submitInput(30, false))
	require.NoError(t, err)

	assert.Equal(t, entity.WriteOffApproved, wo.Status, "la baja inmediata nunca pasa por PENDING")
	assert.Equal(t, testAdmin, wo.RequesterID)
	assert.Equal(t, testAdmin, wo.ApproverID, "el solicitante queda como aprobador")
	require.NotNil(t, wo.ResolvedAt)

	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(70), lot.Available)
	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(70), product.StockTotal)
	assert.Equal(t, store.TotalAvailable(testProduct), product.StockTotal)

	assert.Empty(t, notifier.Bajas, "la vía inmediata no emite evento de aprobación pendiente")
}

// Sin capacidad de aprobar, pedir vía inmediata degrada a registro pendiente.
func TestSubmit_SinCapacidadDeAprobarQuedaPendiente(t *testing.T) {
	store, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(30, false))
	require.NoError(t, err)

	assert.Equal(t, entity.WriteOffPending, wo.Status)
	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(100), lot.Available)
}

// ──────────────────────────────────────────────────────────────────────────────
// Approve
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_DescuentaDelLote(t *testing.T) {
	store, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(40, true))
	require.NoError(t, err)

	approved, err := uc.Approve(context.Background(), testAdmin, capsApprove, wo.ID, "verificado en bodega")
	require.NoError(t, err)

	assert.Equal(t, entity.WriteOffApproved, approved.Status)
	assert.Equal(t, testAdmin, approved.ApproverID)

	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(60), lot.Available)
	product, _ := store.ProductRepo().GetByID(testProduct)
	assert.Equal(t, int64(60), product.StockTotal)
	assert.Equal(t, store.TotalAvailable(testProduct), product.StockTotal)
}

// Re-validación en la aprobación: si el stock se movió desde el registro y ya
// no alcanza, la aprobación falla sin recortar en silencio y la baja sigue
// PENDING.
func TestApprove_RevalidaContraEstadoVigente(t *testing.T) {
	store, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(80, true))
	require.NoError(t, err)

	// Entre el registro y la aprobación, una venta consume 50 del lote.
	saleUC := pos.NewSaleUseCase(store.TxRunner(), store.SaleRepo(),
		&testutil.RecorderNotifier{}, decimal.Zero)
	_, err = saleUC.ProcessSale(context.Background(), "user-cajero", pos.SaleInput{
		Items:         []pos.SaleItemInput{{ProductID: testProduct, Quantity: 50}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, wo.ID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Nada cambió por la aprobación fallida; la baja puede resolverse después.
	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(50), lot.Available)
	pending, _ := store.WriteOffRepo().GetByID(wo.ID)
	assert.Equal(t, entity.WriteOffPending, pending.Status, "la baja debe seguir PENDING")
}

// Aprobar dos veces falla la segunda y no descuenta dos veces.
func TestApprove_DobleAprobacionNoDescuentaDosVeces(t *testing.T) {
	store, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(40, true))
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, wo.ID, "")
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, wo.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(60), lot.Available, "solo un descuento debe haberse aplicado")
}

func TestApprove_SinCapacidad(t *testing.T) {
	_, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(10, true))
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testFarmaceutico, capsReceive, wo.ID, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reject
// ──────────────────────────────────────────────────────────────────────────────

func TestReject_NoTocaElLote(t *testing.T) {
	store, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(40, true))
	require.NoError(t, err)

	rejected, err := uc.Reject(context.Background(), testAdmin, capsApprove, wo.ID, "el lote aún es vendible", "")
	require.NoError(t, err)

	assert.Equal(t, entity.WriteOffRejected, rejected.Status)
	assert.Equal(t, "el lote aún es vendible", rejected.RejectReason)

	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(100), lot.Available)
}

// Una baja rechazada no puede aprobarse después.
func TestReject_LuegoAprobarFalla(t *testing.T) {
	store, uc, _ := setup(100)

	wo, err := uc.Submit(context.Background(), testFarmaceutico, capsReceive, submitInput(40, true))
	require.NoError(t, err)

	_, err = uc.Reject(context.Background(), testAdmin, capsApprove, wo.ID, "no procede", "")
	require.NoError(t, err)

	_, err = uc.Approve(context.Background(), testAdmin, capsApprove, wo.ID, "")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	lot, _ := store.LotRepo().GetByID(testLot)
	assert.Equal(t, int64(100), lot.Available)
}
