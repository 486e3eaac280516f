package testutil

import (
	"fmt"
	"sort"
	"time"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
)

// memLotRepo repositorio de lotes en memoria. GetForUpdate se comporta como
// GetByID: los tests son secuenciales y no hay filas que bloquear.
type memLotRepo struct {
	s *Store
}

func (r *memLotRepo) Create(lot *entity.Lot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Lots[lot.ID]; ok {
		return fmt.Errorf("lote duplicado: %s", lot.ID)
	}
	r.s.lotSeq++
	r.s.lotOrder[lot.ID] = r.s.lotSeq
	r.s.Lots[lot.ID] = cloneLot(lot)
	return nil
}

func (r *memLotRepo) GetByID(id string) (*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.Lots[id]
	if !ok {
		return nil, nil
	}
	return cloneLot(l), nil
}

func (r *memLotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	return r.GetByID(id)
}

func (r *memLotRepo) ListAvailableByProduct(productID string) ([]*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range r.s.Lots {
		if l.ProductID == productID && l.Available > 0 {
			out = append(out, cloneLot(l))
		}
	}
	r.s.sortLotsFEFO(out)
	return out, nil
}

func (r *memLotRepo) ListAvailableByProductForUpdate(productID string) ([]*entity.Lot, error) {
	return r.ListAvailableByProduct(productID)
}

func (r *memLotRepo) UpdateAvailable(id string, available int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.Lots[id]
	if !ok {
		return fmt.Errorf("lote no existe: %s", id)
	}
	l.Available = available
	return nil
}

func (r *memLotRepo) ListActive() ([]*entity.Lot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range r.s.Lots {
		if l.Available > 0 {
			out = append(out, cloneLot(l))
		}
	}
	r.s.sortLotsFEFO(out)
	return out, nil
}

// memProductRepo repositorio de productos en memoria.
type memProductRepo struct {
	s *Store
}

func (r *memProductRepo) Create(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Products[product.ID]; ok {
		return fmt.Errorf("producto duplicado: %s", product.ID)
	}
	r.s.Products[product.ID] = cloneProduct(product)
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]string, 0, len(r.s.Products))
	for id := range r.s.Products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneProduct(r.s.Products[id]))
	}
	return page(out, limit, offset), nil
}

func (r *memProductRepo) Update(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.Products[product.ID]
	if !ok {
		return fmt.Errorf("producto no existe: %s", product.ID)
	}
	// stock_total no se pisa: solo AdjustStock lo mueve.
	stock := existing.StockTotal
	updated := cloneProduct(product)
	updated.StockTotal = stock
	r.s.Products[product.ID] = updated
	return nil
}

func (r *memProductRepo) AdjustStock(id string, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Products[id]
	if !ok {
		return fmt.Errorf("producto no existe: %s", id)
	}
	p.StockTotal += delta
	return nil
}

func (r *memProductRepo) ListLowStock() ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.Products {
		if p.StockTotal <= p.StockMinimo {
			out = append(out, cloneProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memSaleRepo repositorio de ventas en memoria.
type memSaleRepo struct {
	s *Store
}

func (r *memSaleRepo) Create(sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Sales[sale.ID]; ok {
		return fmt.Errorf("venta duplicada: %s", sale.ID)
	}
	r.s.Sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *memSaleRepo) GetByID(id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.Sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(s), nil
}

func (r *memSaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *memSaleRepo) MarkCancelled(id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.Sales[id]
	if !ok {
		return fmt.Errorf("venta no existe: %s", id)
	}
	s.Status = entity.SaleStatusCancelled
	cancelled := at
	s.CancelledAt = &cancelled
	return nil
}

func (r *memSaleRepo) List(limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Sale, 0, len(r.s.Sales))
	for _, s := range r.s.Sales {
		out = append(out, cloneSale(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, limit, offset), nil
}

// memReceptionRepo repositorio de actas en memoria.
type memReceptionRepo struct {
	s *Store
}

func (r *memReceptionRepo) Create(act *entity.ReceptionAct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Receptions[act.ID]; ok {
		return fmt.Errorf("acta duplicada: %s", act.ID)
	}
	r.s.Receptions[act.ID] = cloneReception(act)
	return nil
}

func (r *memReceptionRepo) GetByID(id string) (*entity.ReceptionAct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Receptions[id]
	if !ok {
		return nil, nil
	}
	return cloneReception(a), nil
}

func (r *memReceptionRepo) GetForUpdate(id string) (*entity.ReceptionAct, error) {
	return r.GetByID(id)
}

func (r *memReceptionRepo) UpdateResolution(act *entity.ReceptionAct) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.Receptions[act.ID]
	if !ok {
		return fmt.Errorf("acta no existe: %s", act.ID)
	}
	existing.Status = act.Status
	existing.ApproverID = act.ApproverID
	existing.Notes = act.Notes
	existing.RejectReason = act.RejectReason
	if act.ResolvedAt != nil {
		at := *act.ResolvedAt
		existing.ResolvedAt = &at
	}
	return nil
}

func (r *memReceptionRepo) LinkLineLot(lineID, lotID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.Receptions {
		for i := range a.Lines {
			if a.Lines[i].ID == lineID {
				a.Lines[i].LotID = lotID
				return nil
			}
		}
	}
	return fmt.Errorf("línea no existe: %s", lineID)
}

func (r *memReceptionRepo) List(status entity.ReceptionStatus, limit, offset int) ([]*entity.ReceptionAct, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.ReceptionAct
	for _, a := range r.s.Receptions {
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, cloneReception(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

// memWriteOffRepo repositorio de bajas en memoria.
type memWriteOffRepo struct {
	s *Store
}

func (r *memWriteOffRepo) Create(wo *entity.WriteOff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.WriteOffs[wo.ID]; ok {
		return fmt.Errorf("baja duplicada: %s", wo.ID)
	}
	r.s.WriteOffs[wo.ID] = cloneWriteOff(wo)
	return nil
}

func (r *memWriteOffRepo) GetByID(id string) (*entity.WriteOff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.WriteOffs[id]
	if !ok {
		return nil, nil
	}
	return cloneWriteOff(w), nil
}

func (r *memWriteOffRepo) GetForUpdate(id string) (*entity.WriteOff, error) {
	return r.GetByID(id)
}

func (r *memWriteOffRepo) UpdateResolution(wo *entity.WriteOff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.WriteOffs[wo.ID]
	if !ok {
		return fmt.Errorf("baja no existe: %s", wo.ID)
	}
	existing.Status = wo.Status
	existing.ApproverID = wo.ApproverID
	existing.Notes = wo.Notes
	existing.RejectReason = wo.RejectReason
	if wo.ResolvedAt != nil {
		at := *wo.ResolvedAt
		existing.ResolvedAt = &at
	}
	return nil
}

func (r *memWriteOffRepo) List(status entity.WriteOffStatus, limit, offset int) ([]*entity.WriteOff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WriteOff
	for _, w := range r.s.WriteOffs {
		if status != "" && w.Status != status {
			continue
		}
		out = append(out, cloneWriteOff(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

// memSupplierRepo repositorio de proveedores en memoria.
type memSupplierRepo struct {
	s *Store
}

func (r *memSupplierRepo) Create(supplier *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Suppliers[supplier.ID]; ok {
		return fmt.Errorf("proveedor duplicado: %s", supplier.ID)
	}
	r.s.Suppliers[supplier.ID] = cloneSupplier(supplier)
	return nil
}

func (r *memSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sup, ok := r.s.Suppliers[id]
	if !ok {
		return nil, nil
	}
	return cloneSupplier(sup), nil
}

func (r *memSupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Supplier, 0, len(r.s.Suppliers))
	for _, sup := range r.s.Suppliers {
		out = append(out, cloneSupplier(sup))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
