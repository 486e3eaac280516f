package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

var _ repository.WriteOffRepository = (*WriteOffRepo)(nil)

// WriteOffRepo implementación del puerto WriteOffRepository sobre PostgreSQL (usable con pool o tx).
type WriteOffRepo struct {
	q Querier
}

// NewWriteOffRepository construye el adaptador de bajas. Pasar pool o tx (Querier).
func NewWriteOffRepository(q Querier) *WriteOffRepo {
	return &WriteOffRepo{q: q}
}

const writeOffColumns = `id, lot_id, requester_id, quantity, motive, notes, status, approver_id, reject_reason, resolved_at, created_at`

func scanWriteOff(row pgx.Row) (*entity.WriteOff, error) {
	var w entity.WriteOff
	err := row.Scan(
		&w.ID, &w.LotID, &w.RequesterID, &w.Quantity, &w.Motive, &w.Notes,
		&w.Status, &w.ApproverID, &w.RejectReason, &w.ResolvedAt, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

// Create persiste una baja.
func (r *WriteOffRepo) Create(wo *entity.WriteOff) error {
	query := `
		INSERT INTO write_offs (id, lot_id, requester_id, quantity, motive, notes, status, approver_id, reject_reason, resolved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		wo.ID, wo.LotID, wo.RequesterID, wo.Quantity, wo.Motive, wo.Notes,
		wo.Status, wo.ApproverID, wo.RejectReason, wo.ResolvedAt, wo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert write-off: %w", err)
	}
	return nil
}

// GetByID obtiene una baja por ID.
func (r *WriteOffRepo) GetByID(id string) (*entity.WriteOff, error) {
	query := `SELECT ` + writeOffColumns + ` FROM write_offs WHERE id = $1`
	wo, err := scanWriteOff(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get write-off: %w", err)
	}
	return wo, nil
}

// GetForUpdate obtiene la baja y bloquea la fila (SELECT FOR UPDATE).
func (r *WriteOffRepo) GetForUpdate(id string) (*entity.WriteOff, error) {
	query := `SELECT ` + writeOffColumns + ` FROM write_offs WHERE id = $1 FOR UPDATE`
	wo, err := scanWriteOff(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get write-off for update: %w", err)
	}
	return wo, nil
}

// UpdateResolution persiste estado, aprobador, motivo y timestamp de resolución.
func (r *WriteOffRepo) UpdateResolution(wo *entity.WriteOff) error {
	query := `
		UPDATE write_offs
		SET status = $2, approver_id = $3, notes = $4, reject_reason = $5, resolved_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		wo.ID, wo.Status, wo.ApproverID, wo.Notes, wo.RejectReason, wo.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update write-off resolution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update write-off resolution: baja %s no existe", wo.ID)
	}
	return nil
}

// List lista bajas, opcionalmente filtradas por estado.
func (r *WriteOffRepo) List(status entity.WriteOffStatus, limit, offset int) ([]*entity.WriteOff, error) {
	ctx := context.Background()
	var rows pgx.Rows
	var err error
	if status != "" {
		query := `
			SELECT ` + writeOffColumns + `
			FROM write_offs WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		rows, err = r.q.Query(ctx, query, status, limit, offset)
	} else {
		query := `
			SELECT ` + writeOffColumns + `
			FROM write_offs
			ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err = r.q.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list write-offs: %w", err)
	}
	defer rows.Close()

	var wos []*entity.WriteOff
	for rows.Next() {
		var w entity.WriteOff
		if err := rows.Scan(
			&w.ID, &w.LotID, &w.RequesterID, &w.Quantity, &w.Motive, &w.Notes,
			&w.Status, &w.ApproverID, &w.RejectReason, &w.ResolvedAt, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan write-off: %w", err)
		}
		wos = append(wos, &w)
	}
	return wos, rows.Err()
}
