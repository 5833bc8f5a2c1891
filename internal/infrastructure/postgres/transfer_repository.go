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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traspasos y sus renglones (transfers, transfer_lines).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, origin_branch_id, destination_branch_id, kind, state, notes, created_by, received_by, created_at, received_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(&t.ID, &t.OriginBranchID, &t.DestinationBranchID, &t.Kind, &t.State,
		&t.Notes, &t.CreatedBy, &t.ReceivedBy, &t.CreatedAt, &t.ReceivedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta cabecera y renglones en un solo batch.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	b := &pgx.Batch{}
	b.Queue(`INSERT INTO transfers (`+transferColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.OriginBranchID, t.DestinationBranchID, t.Kind, t.State,
		t.Notes, t.CreatedBy, t.ReceivedBy, t.CreatedAt, t.ReceivedAt)
	for _, l := range t.Lines {
		b.Queue(`INSERT INTO transfer_lines (id, transfer_id, item_id, quantity_sent, quantity_received) VALUES ($1, $2, $3, $4, $5)`,
			l.ID, t.ID, l.ItemID, l.QuantitySent, l.QuantityReceived)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// GetByID traspaso con renglones y solicitudes que lo originaron.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE); la recepción concurrente del mismo traspaso se serializa.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if err := r.loadDetails(ctx, []*entity.Transfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// SaveReceipt registra las cantidades recibidas (solo renglones aún sin confirmar) y el cierre.
func (r *TransferRepo) SaveReceipt(ctx context.Context, t *entity.Transfer) error {
	b := &pgx.Batch{}
	b.Queue(`UPDATE transfers SET state = $2, received_by = $3, received_at = $4 WHERE id = $1`,
		t.ID, t.State, t.ReceivedBy, t.ReceivedAt)
	for _, l := range t.Lines {
		b.Queue(`UPDATE transfer_lines SET quantity_received = $2 WHERE id = $1 AND quantity_received IS NULL`,
			l.ID, l.QuantityReceived)
	}
	br := r.q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		cmd, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("save receipt: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			_ = br.Close()
			if i == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrAlreadyReceived
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

// List historial filtrado, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var (
		where []string
		args  []any
	)
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		n := len(args)
		switch f.Side {
		case repository.TransferSideOrigin:
			where = append(where, fmt.Sprintf("origin_branch_id = $%d", n))
		case repository.TransferSideDestination:
			where = append(where, fmt.Sprintf("destination_branch_id = $%d", n))
		default:
			where = append(where, fmt.Sprintf("(origin_branch_id = $%d OR destination_branch_id = $%d)", n, n))
		}
	}
	if f.State != "" {
		args = append(args, f.State)
		where = append(where, fmt.Sprintf("state = $%d", len(args)))
	}
	query := `SELECT ` + transferColumns + ` FROM transfers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Transfer, error) {
		return scanTransfer(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan transfers: %w", err)
	}
	if err := r.loadDetails(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadDetails completa renglones y solicitudes de varios traspasos con dos consultas.
func (r *TransferRepo) loadDetails(ctx context.Context, list []*entity.Transfer) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transfer, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, item_id, quantity_sent, quantity_received
		FROM transfer_lines WHERE transfer_id = ANY($1) ORDER BY transfer_id, item_id`, ids)
	if err != nil {
		return fmt.Errorf("list transfer lines: %w", err)
	}
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.ItemID, &l.QuantitySent, &l.QuantityReceived); err != nil {
			rows.Close()
			return fmt.Errorf("scan transfer line: %w", err)
		}
		byID[l.TransferID].Lines = append(byID[l.TransferID].Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list transfer lines: %w", err)
	}

	rows, err = r.q.Query(ctx, `SELECT id, transfer_id FROM transfer_requests WHERE transfer_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list transfer request ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var reqID, transferID string
		if err := rows.Scan(&reqID, &transferID); err != nil {
			return fmt.Errorf("scan transfer request id: %w", err)
		}
		byID[transferID].RequestIDs = append(byID[transferID].RequestIDs, reqID)
	}
	return rows.Err()
}
