// Package testutil provee repositorios en memoria y un TxRunner con
// snapshot/rollback para probar los flujos del núcleo sin PostgreSQL.
// El comportamiento imita el de los adaptadores reales: lecturas que
// devuelven copias, nil en no-encontrado, y FEFO por vencimiento ascendente
// con desempate por orden de creación.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/event"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

// Store estado compartido de los repositorios en memoria.
type Store struct {
	mu sync.Mutex

	Products   map[string]*entity.Product
	Lots       map[string]*entity.Lot
	Sales      map[string]*entity.Sale
	Receptions map[string]*entity.ReceptionAct
	WriteOffs  map[string]*entity.WriteOff
	Suppliers  map[string]*entity.Supplier

	lotSeq   int64
	lotOrder map[string]int64 // orden de creación, desempate FEFO
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		Products:   make(map[string]*entity.Product),
		Lots:       make(map[string]*entity.Lot),
		Sales:      make(map[string]*entity.Sale),
		Receptions: make(map[string]*entity.ReceptionAct),
		WriteOffs:  make(map[string]*entity.WriteOff),
		Suppliers:  make(map[string]*entity.Supplier),
		lotOrder:   make(map[string]int64),
	}
}

// SeedProduct registra un producto directamente en el store.
func (s *Store) SeedProduct(p *entity.Product) {
	s.Products[p.ID] = cloneProduct(p)
}

// SeedLot registra un lote directamente en el store, preservando el orden de
// creación para el desempate FEFO.
func (s *Store) SeedLot(l *entity.Lot) {
	s.lotSeq++
	s.lotOrder[l.ID] = s.lotSeq
	s.Lots[l.ID] = cloneLot(l)
}

// SeedSupplier registra un proveedor directamente en el store.
func (s *Store) SeedSupplier(sup *entity.Supplier) {
	s.Suppliers[sup.ID] = cloneSupplier(sup)
}

// LotRepo devuelve el repositorio de lotes sobre este store.
func (s *Store) LotRepo() repository.LotRepository { return &memLotRepo{s: s} }

// ProductRepo devuelve el repositorio de productos sobre este store.
func (s *Store) ProductRepo() repository.ProductRepository { return &memProductRepo{s: s} }

// SaleRepo devuelve el repositorio de ventas sobre este store.
func (s *Store) SaleRepo() repository.SaleRepository { return &memSaleRepo{s: s} }

// ReceptionRepo devuelve el repositorio de actas sobre este store.
func (s *Store) ReceptionRepo() repository.ReceptionRepository { return &memReceptionRepo{s: s} }

// WriteOffRepo devuelve el repositorio de bajas sobre este store.
func (s *Store) WriteOffRepo() repository.WriteOffRepository { return &memWriteOffRepo{s: s} }

// SupplierRepo devuelve el repositorio de proveedores sobre este store.
func (s *Store) SupplierRepo() repository.SupplierRepository { return &memSupplierRepo{s: s} }

// TxRunner devuelve un TxRunner que toma un snapshot del store antes de
// ejecutar fn y lo restaura íntegro si fn falla. Así los tests verifican la
// atomicidad real de los flujos: un error a mitad de secuencia no deja
// escrituras parciales.
func (s *Store) TxRunner() *MemTxRunner { return &MemTxRunner{s: s} }

// MemTxRunner unidad de trabajo en memoria con rollback por snapshot.
type MemTxRunner struct {
	s *Store
}

// Run ejecuta fn contra los repositorios del store. Si fn retorna error, el
// store vuelve byte a byte al estado previo.
func (r *MemTxRunner) Run(_ context.Context, fn func(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	receptionRepo repository.ReceptionRepository,
	writeOffRepo repository.WriteOffRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(r.s.LotRepo(), r.s.ProductRepo(), r.s.SaleRepo(), r.s.ReceptionRepo(), r.s.WriteOffRepo())
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products   map[string]*entity.Product
	lots       map[string]*entity.Lot
	sales      map[string]*entity.Sale
	receptions map[string]*entity.ReceptionAct
	writeOffs  map[string]*entity.WriteOff
	suppliers  map[string]*entity.Supplier
	lotSeq     int64
	lotOrder   map[string]int64
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		products:   make(map[string]*entity.Product, len(s.Products)),
		lots:       make(map[string]*entity.Lot, len(s.Lots)),
		sales:      make(map[string]*entity.Sale, len(s.Sales)),
		receptions: make(map[string]*entity.ReceptionAct, len(s.Receptions)),
		writeOffs:  make(map[string]*entity.WriteOff, len(s.WriteOffs)),
		suppliers:  make(map[string]*entity.Supplier, len(s.Suppliers)),
		lotSeq:     s.lotSeq,
		lotOrder:   make(map[string]int64, len(s.lotOrder)),
	}
	for k, v := range s.Products {
		snap.products[k] = cloneProduct(v)
	}
	for k, v := range s.Lots {
		snap.lots[k] = cloneLot(v)
	}
	for k, v := range s.Sales {
		snap.sales[k] = cloneSale(v)
	}
	for k, v := range s.Receptions {
		snap.receptions[k] = cloneReception(v)
	}
	for k, v := range s.WriteOffs {
		snap.writeOffs[k] = cloneWriteOff(v)
	}
	for k, v := range s.Suppliers {
		snap.suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.lotOrder {
		snap.lotOrder[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Products = snap.products
	s.Lots = snap.lots
	s.Sales = snap.sales
	s.Receptions = snap.receptions
	s.WriteOffs = snap.writeOffs
	s.Suppliers = snap.suppliers
	s.lotSeq = snap.lotSeq
	s.lotOrder = snap.lotOrder
}

// TotalAvailable suma el disponible de todos los lotes de un producto. Los
// tests lo comparan contra StockTotal para verificar el invariante del ledger.
func (s *Store) TotalAvailable(productID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, l := range s.Lots {
		if l.ProductID == productID {
			total += l.Available
		}
	}
	return total
}

// RecorderNotifier implementación de event.Notifier que acumula los eventos
// emitidos para inspección en tests.
type RecorderNotifier struct {
	mu         sync.Mutex
	Receptions []event.ReceptionPendingApproval
	Bajas      []event.BajaPendingApproval
	LowStocks  []event.LowStock
}

func (n *RecorderNotifier) ReceptionPending(_ context.Context, ev event.ReceptionPendingApproval) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Receptions = append(n.Receptions, ev)
}

func (n *RecorderNotifier) BajaPending(_ context.Context, ev event.BajaPendingApproval) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Bajas = append(n.Bajas, ev)
}

func (n *RecorderNotifier) StockLow(_ context.Context, ev event.LowStock) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.LowStocks = append(n.LowStocks, ev)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clones profundos
// ──────────────────────────────────────────────────────────────────────────────

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneLot(l *entity.Lot) *entity.Lot {
	c := *l
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	if s.CancelledAt != nil {
		at := *s.CancelledAt
		c.CancelledAt = &at
	}
	c.Lines = append([]entity.SaleLine(nil), s.Lines...)
	return &c
}

func cloneReception(a *entity.ReceptionAct) *entity.ReceptionAct {
	c := *a
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		c.ResolvedAt = &at
	}
	c.Lines = append([]entity.ReceptionLine(nil), a.Lines...)
	return &c
}

func cloneWriteOff(w *entity.WriteOff) *entity.WriteOff {
	c := *w
	if w.ResolvedAt != nil {
		at := *w.ResolvedAt
		c.ResolvedAt = &at
	}
	return &c
}

func cloneSupplier(s *entity.Supplier) *entity.Supplier {
	c := *s
	return &c
}

// sortLotsFEFO ordena por vencimiento ascendente con desempate por orden de
// creación, el mismo contrato que el adaptador de PostgreSQL.
func (s *Store) sortLotsFEFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].Expiration.Equal(lots[j].Expiration) {
			return lots[i].Expiration.Before(lots[j].Expiration)
		}
		return s.lotOrder[lots[i].ID] < s.lotOrder[lots[j].ID]
	})
}
