package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Traspasos-api/internal/domain"
	"github.com/jhoicas/Traspasos-api/internal/domain/entity"
	"github.com/jhoicas/Traspasos-api/internal/domain/repository"
)

var _ repository.TransferRequestRepository = (*TransferRequestRepo)(nil)

// TransferRequestRepo solicitudes transfer_requests (usable con pool o tx).
type TransferRequestRepo struct {
	q Querier
}

// NewTransferRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRequestRepository(q Querier) *TransferRequestRepo {
	return &TransferRequestRepo{q: q}
}

const requestColumns = `id, branch_id, item_id, quantity_requested, quantity_approved, urgency, state, source,
	notes, rejection_reason, requested_by, decided_by, transfer_id, created_at, decided_at, dispatched_at`

// urgencyOrder urgent primero, luego antigüedad.
const urgencyOrder = `CASE urgency WHEN 'urgent' THEN 1 WHEN 'high' THEN 2 WHEN 'normal' THEN 3 ELSE 4 END, created_at, id`

func scanRequest(row pgx.Row) (*entity.TransferRequest, error) {
	var (
		req        entity.TransferRequest
		transferID *string
	)
	err := row.Scan(&req.ID, &req.BranchID, &req.ItemID, &req.QuantityRequested, &req.QuantityApproved,
		&req.Urgency, &req.State, &req.Source, &req.Notes, &req.RejectionReason,
		&req.RequestedBy, &req.DecidedBy, &transferID, &req.CreatedAt, &req.DecidedAt, &req.DispatchedAt)
	if err != nil {
		return nil, err
	}
	if transferID != nil {
		req.TransferID = *transferID
	}
	return &req, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create inserta la solicitud. El índice único parcial sobre (branch_id, item_id) WHERE state='pending'
// convierte una segunda pendiente en domain.ErrDuplicate.
func (r *TransferRequestRepo) Create(ctx context.Context, req *entity.TransferRequest) error {
	query := `INSERT INTO transfer_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.BranchID, req.ItemID, req.QuantityRequested, req.QuantityApproved,
		req.Urgency, req.State, req.Source, req.Notes, req.RejectionReason,
		req.RequestedBy, req.DecidedBy, nullable(req.TransferID), req.CreatedAt, req.DecidedAt, req.DispatchedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transfer request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *TransferRequestRepo) GetByID(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM transfer_requests WHERE id = $1`, id)
}

// GetForUpdate obtiene la solicitud y bloquea la fila (SELECT FOR UPDATE).
func (r *TransferRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.get(ctx, `SELECT `+requestColumns+` FROM transfer_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRequestRepo) get(ctx context.Context, query, id string) (*entity.TransferRequest, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer request: %w", err)
	}
	return req, nil
}

// Update persiste la decisión o el despacho de la solicitud.
func (r *TransferRequestRepo) Update(ctx context.Context, req *entity.TransferRequest) error {
	query := `
		UPDATE transfer_requests SET
			quantity_approved = $2, state = $3, rejection_reason = $4, decided_by = $5,
			transfer_id = $6, decided_at = $7, dispatched_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		req.ID, req.QuantityApproved, req.State, req.RejectionReason, req.DecidedBy,
		nullable(req.TransferID), req.DecidedAt, req.DispatchedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List solicitudes filtradas, por urgencia y antigüedad.
func (r *TransferRequestRepo) List(ctx context.Context, f repository.TransferRequestFilter) ([]*entity.TransferRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		where = append(where, fmt.Sprintf("branch_id = $%d", len(args)))
	}
	if f.ItemID != "" {
		args = append(args, f.ItemID)
		where = append(where, fmt.Sprintf("item_id = $%d", len(args)))
	}
	if len(f.States) > 0 {
		args = append(args, f.States)
		where = append(where, fmt.Sprintf("state = ANY($%d)", len(args)))
	}
	query := `SELECT ` + requestColumns + ` FROM transfer_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + urgencyOrder

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransferRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}
