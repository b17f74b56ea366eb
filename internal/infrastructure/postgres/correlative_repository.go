package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ repository.CorrelativeRepository = (*CorrelativeRepo)(nil)

const correlativeColumns = `id, range_id, sequence_number, formatted_number, status, used_at, voided_at, created_at`

// CorrelativeRepo implementa CorrelativeRepository sobre PostgreSQL (pool o tx).
type CorrelativeRepo struct {
	q Querier
}

// NewCorrelativeRepository construye el repositorio. Pasar pool o tx (Querier).
func NewCorrelativeRepository(q Querier) *CorrelativeRepo {
	return &CorrelativeRepo{q: q}
}

// CreateBatch inserta los correlativos con COPY; un CAI puede traer cientos de miles de números.
func (r *CorrelativeRepo) CreateBatch(ctx context.Context, list []*entity.Correlative) error {
	if len(list) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(list))
	for _, c := range list {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Status == "" {
			c.Status = entity.CorrelativeStatusAvailable
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		rows = append(rows, []any{c.ID, c.RangeID, c.SequenceNumber, c.FormattedNumber, c.Status, c.CreatedAt})
	}
	_, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"correlatives"},
		[]string{"id", "range_id", "sequence_number", "formatted_number", "status", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("copy correlatives: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("copy correlatives: %w", err)
	}
	return nil
}

func (r *CorrelativeRepo) GetByID(ctx context.Context, id string) (*entity.Correlative, error) {
	q := `SELECT ` + correlativeColumns + ` FROM correlatives WHERE id = $1`
	c, err := scanCorrelative(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get correlative by id: %w", err)
	}
	return c, nil
}

func (r *CorrelativeRepo) PeekLowestAvailable(ctx context.Context, rangeID string) (*entity.Correlative, error) {
	q := `
		SELECT ` + correlativeColumns + `
		FROM correlatives
		WHERE range_id = $1 AND status = 'available'
		ORDER BY sequence_number
		LIMIT 1`
	c, err := scanCorrelative(r.q.QueryRow(ctx, q, rangeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("peek correlative: %w", err)
	}
	return c, nil
}

// ClaimLowestAvailable toma el menor número disponible. El rango ya está bloqueado por el caller,
// así que no hay competencia por la misma fila; FOR UPDATE protege contra escritores fuera del Allocator.
func (r *CorrelativeRepo) ClaimLowestAvailable(ctx context.Context, rangeID string, at time.Time) (*entity.Correlative, error) {
	q := `
		UPDATE correlatives
		SET status = 'used', used_at = $2
		WHERE id = (
			SELECT id FROM correlatives
			WHERE range_id = $1 AND status = 'available'
			ORDER BY sequence_number
			LIMIT 1
			FOR UPDATE
		)
		RETURNING ` + correlativeColumns
	c, err := scanCorrelative(r.q.QueryRow(ctx, q, rangeID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim correlative: %w", err)
	}
	return c, nil
}

func (r *CorrelativeRepo) MarkVoided(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE correlatives SET status = 'voided', voided_at = $2 WHERE id = $1 AND status = 'used'`
	tag, err := r.q.Exec(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("void correlative: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("void correlative %s: %w", id, domain.ErrConflict)
	}
	return nil
}

func (r *CorrelativeRepo) CountByStatus(ctx context.Context, rangeID string) (entity.CorrelativeCounts, error) {
	const q = `
		SELECT
			COUNT(*) FILTER (WHERE status = 'available'),
			COUNT(*) FILTER (WHERE status = 'used'),
			COUNT(*) FILTER (WHERE status = 'voided')
		FROM correlatives
		WHERE range_id = $1`
	var c entity.CorrelativeCounts
	if err := r.q.QueryRow(ctx, q, rangeID).Scan(&c.Available, &c.Used, &c.Voided); err != nil {
		return c, fmt.Errorf("count correlatives: %w", err)
	}
	return c, nil
}

func (r *CorrelativeRepo) ListByRange(ctx context.Context, rangeID, status string, limit, offset int) ([]*entity.Correlative, error) {
	q := `
		SELECT ` + correlativeColumns + `
		FROM correlatives
		WHERE range_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY sequence_number
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, q, rangeID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list correlatives: %w", err)
	}
	defer rows.Close()

	var list []*entity.Correlative
	for rows.Next() {
		c, err := scanCorrelative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correlative: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCorrelative(row pgxScanner) (*entity.Correlative, error) {
	var c entity.Correlative
	err := row.Scan(&c.ID, &c.RangeID, &c.SequenceNumber, &c.FormattedNumber, &c.Status, &c.UsedAt, &c.VoidedAt, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
