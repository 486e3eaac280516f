package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación del puerto LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, lot_number, expiration, initial, available, purchase_cost, sale_price, created_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(
		&l.ID, &l.ProductID, &l.LotNumber, &l.Expiration,
		&l.Initial, &l.Available, &l.PurchaseCost, &l.SalePrice, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Create persiste un lote nuevo (Available = Initial).
func (r *LotRepo) Create(lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, product_id, lot_number, expiration, initial, available, purchase_cost, sale_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.Expiration,
		lot.Initial, lot.Available, lot.PurchaseCost, lot.SalePrice, lot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return lot, nil
}

// ListAvailableByProduct lotes con available > 0 ordenados por vencimiento
// ascendente y, a igual vencimiento, por orden de creación. Este orden es el
// contrato del asignador FEFO.
func (r *LotRepo) ListAvailableByProduct(productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE product_id = $1 AND available > 0
		ORDER BY expiration ASC, created_at ASC, id ASC`
	return r.listLots(query, productID)
}

// ListAvailableByProductForUpdate igual que ListAvailableByProduct pero
// bloqueando las filas para la asignación dentro de una tx.
func (r *LotRepo) ListAvailableByProductForUpdate(productID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE product_id = $1 AND available > 0
		ORDER BY expiration ASC, created_at ASC, id ASC
		FOR UPDATE`
	return r.listLots(query, productID)
}

// UpdateAvailable fija la nueva cantidad disponible del lote.
func (r *LotRepo) UpdateAvailable(id string, available int64) error {
	query := `UPDATE lots SET available = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, available)
	if err != nil {
		return fmt.Errorf("update lot available: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update lot available: lote %s no existe", id)
	}
	return nil
}

// ListActive todos los lotes con available > 0 (reporte de vencimientos).
func (r *LotRepo) ListActive() ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lots WHERE available > 0
		ORDER BY expiration ASC, created_at ASC`
	return r.listLots(query)
}

func (r *LotRepo) listLots(query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.LotNumber, &l.Expiration,
			&l.Initial, &l.Available, &l.PurchaseCost, &l.SalePrice, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, &l)
	}
	return lots, rows.Err()
}
