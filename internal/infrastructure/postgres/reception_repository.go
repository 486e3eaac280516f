package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmaplus/farmacia-api/internal/domain/entity"
	"github.com/farmaplus/farmacia-api/internal/domain/repository"
)

var _ repository.ReceptionRepository = (*ReceptionRepo)(nil)

// ReceptionRepo implementación del puerto ReceptionRepository sobre PostgreSQL (usable con pool o tx).
type ReceptionRepo struct {
	q Querier
}

// NewReceptionRepository construye el adaptador de recepciones. Pasar pool o tx (Querier).
func NewReceptionRepository(q Querier) *ReceptionRepo {
	return &ReceptionRepo{q: q}
}

const receptionColumns = `id, supplier_id, receiver_id, status, approver_id, notes, reject_reason, resolved_at, created_at`

func scanReception(row pgx.Row) (*entity.ReceptionAct, error) {
	var a entity.ReceptionAct
	err := row.Scan(
		&a.ID, &a.SupplierID, &a.ReceiverID, &a.Status,
		&a.ApproverID, &a.Notes, &a.RejectReason, &a.ResolvedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create persiste el acta con sus líneas (misma tx del caller).
func (r *ReceptionRepo) Create(act *entity.ReceptionAct) error {
	ctx := context.Background()
	query := `
		INSERT INTO reception_acts (id, supplier_id, receiver_id, status, approver_id, notes, reject_reason, resolved_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		act.ID, act.SupplierID, act.ReceiverID, act.Status,
		act.ApproverID, act.Notes, act.RejectReason, act.ResolvedAt, act.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reception act: %w", err)
	}
	lineQuery := `
		INSERT INTO reception_lines (id, act_id, product_id, lot_number, expiration, quantity, unit_cost, lot_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))`
	for _, line := range act.Lines {
		_, err := r.q.Exec(ctx, lineQuery,
			line.ID, line.ActID, line.ProductID, line.LotNumber,
			line.Expiration, line.Quantity, line.UnitCost, line.LotID,
		)
		if err != nil {
			return fmt.Errorf("insert reception line: %w", err)
		}
	}
	return nil
}

// GetByID retorna el acta con sus líneas, o nil si no existe.
func (r *ReceptionRepo) GetByID(id string) (*entity.ReceptionAct, error) {
	query := `SELECT ` + receptionColumns + ` FROM reception_acts WHERE id = $1`
	act, err := scanReception(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get reception act: %w", err)
	}
	if act == nil {
		return nil, nil
	}
	if err := r.loadLines(act); err != nil {
		return nil, err
	}
	return act, nil
}

// GetForUpdate bloquea la cabecera del acta (SELECT FOR UPDATE) y carga las líneas.
func (r *ReceptionRepo) GetForUpdate(id string) (*entity.ReceptionAct, error) {
	query := `SELECT ` + receptionColumns + ` FROM reception_acts WHERE id = $1 FOR UPDATE`
	act, err := scanReception(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get reception act for update: %w", err)
	}
	if act == nil {
		return nil, nil
	}
	if err := r.loadLines(act); err != nil {
		return nil, err
	}
	return act, nil
}

// UpdateResolution persiste estado, aprobador, motivo y timestamp de resolución.
func (r *ReceptionRepo) UpdateResolution(act *entity.ReceptionAct) error {
	query := `
		UPDATE reception_acts
		SET status = $2, approver_id = $3, notes = $4, reject_reason = $5, resolved_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		act.ID, act.Status, act.ApproverID, act.Notes, act.RejectReason, act.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update reception resolution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update reception resolution: acta %s no existe", act.ID)
	}
	return nil
}

// LinkLineLot ata una línea al lote materializado en la aprobación.
func (r *ReceptionRepo) LinkLineLot(lineID, lotID string) error {
	query := `UPDATE reception_lines SET lot_id = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, lineID, lotID)
	if err != nil {
		return fmt.Errorf("link reception line lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("link reception line lot: línea %s no existe", lineID)
	}
	return nil
}

// List lista actas (cabeceras con líneas), opcionalmente filtradas por estado.
func (r *ReceptionRepo) List(status entity.ReceptionStatus, limit, offset int) ([]*entity.ReceptionAct, error) {
	ctx := context.Background()
	var rows pgx.Rows
	var err error
	if status != "" {
		query := `
			SELECT ` + receptionColumns + `
			FROM reception_acts WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		rows, err = r.q.Query(ctx, query, status, limit, offset)
	} else {
		query := `
			SELECT ` + receptionColumns + `
			FROM reception_acts
			ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err = r.q.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list reception acts: %w", err)
	}
	defer rows.Close()

	var acts []*entity.ReceptionAct
	for rows.Next() {
		var a entity.ReceptionAct
		if err := rows.Scan(
			&a.ID, &a.SupplierID, &a.ReceiverID, &a.Status,
			&a.ApproverID, &a.Notes, &a.RejectReason, &a.ResolvedAt, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reception act: %w", err)
		}
		acts = append(acts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range acts {
		if err := r.loadLines(a); err != nil {
			return nil, err
		}
	}
	return acts, nil
}

func (r *ReceptionRepo) loadLines(act *entity.ReceptionAct) error {
	query := `
		SELECT id, act_id, product_id, lot_number, expiration, quantity, unit_cost, COALESCE(lot_id, '')
		FROM reception_lines WHERE act_id = $1 ORDER BY id ASC`
	rows, err := r.q.Query(context.Background(), query, act.ID)
	if err != nil {
		return fmt.Errorf("list reception lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.ReceptionLine
		if err := rows.Scan(
			&l.ID, &l.ActID, &l.ProductID, &l.LotNumber,
			&l.Expiration, &l.Quantity, &l.UnitCost, &l.LotID,
		); err != nil {
			return fmt.Errorf("scan reception line: %w", err)
		}
		act.Lines = append(act.Lines, l)
	}
	return rows.Err()
}
