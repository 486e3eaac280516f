package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, user_id, payment_method, status, net_total, tax_total, grand_total, date, cancelled_at, created_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.UserID, &s.PaymentMethod, &s.Status,
		&s.NetTotal, &s.TaxTotal, &s.GrandTotal,
		&s.Date, &s.CancelledAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create persiste cabecera y líneas (misma tx del caller).
func (r *SaleRepo) Create(sale *entity.Sale) error {
	ctx := context.Background()
	query := `
		INSERT INTO sales (id, user_id, payment_method, status, net_total, tax_total, grand_total, date, cancelled_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.UserID, sale.PaymentMethod, sale.Status,
		sale.NetTotal, sale.TaxTotal, sale.GrandTotal,
		sale.Date, sale.CancelledAt, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	lineQuery := `
		INSERT INTO sale_lines (id, sale_id, product_id, lot_id, quantity, unit_price, tax_rate, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, line := range sale.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, line.SaleID, line.ProductID, line.LotID,
			line.Quantity, line.UnitPrice, line.TaxRate, line.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert sale line: %w", err)
		}
	}
	return nil
}

// GetByID retorna la venta con sus líneas, o nil si no existe.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	sale, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if sale == nil {
		return nil, nil
	}
	if err := r.loadLines(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// GetForUpdate bloquea la cabecera de la venta (SELECT FOR UPDATE) y carga las líneas.
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	sale, err := scanSale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	if sale == nil {
		return nil, nil
	}
	if err := r.loadLines(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// MarkCancelled marca la venta como anulada.
func (r *SaleRepo) MarkCancelled(id string, at time.Time) error {
	query := `UPDATE sales SET status = $2, cancelled_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, entity.SaleStatusCancelled, at)
	if err != nil {
		return fmt.Errorf("mark sale cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark sale cancelled: venta %s no existe", id)
	}
	return nil
}

// List lista cabeceras de ventas recientes (sin líneas).
func (r *SaleRepo) List(limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales ORDER BY date DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PaymentMethod, &s.Status,
			&s.NetTotal, &s.TaxTotal, &s.GrandTotal,
			&s.Date, &s.CancelledAt, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, &s)
	}
	return sales, rows.Err()
}

func (r *SaleRepo) loadLines(sale *entity.Sale) error {
	query := `
		SELECT id, sale_id, product_id, lot_id, quantity, unit_price, tax_rate, subtotal
		FROM sale_lines WHERE sale_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, sale.ID)
	if err != nil {
		return fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(
			&l.ID, &l.SaleID, &l.ProductID, &l.LotID,
			&l.Quantity, &l.UnitPrice, &l.TaxRate, &l.Subtotal,
		); err != nil {
			return fmt.Errorf("scan sale line: %w", err)
		}
		sale.Lines = append(sale.Lines, l)
	}
	return rows.Err()
}
