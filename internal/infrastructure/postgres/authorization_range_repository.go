package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ repository.AuthorizationRangeRepository = (*AuthorizationRangeRepo)(nil)

const rangeColumns = `
	id, tenant_id, branch_id, document_type, cai_code, prefix, range_start, range_end,
	total_count, used_count, authorization_date, expiration_date, status, notes, created_at, updated_at`

// AuthorizationRangeRepo implementa AuthorizationRangeRepository sobre PostgreSQL (pool o tx).
type AuthorizationRangeRepo struct {
	q Querier
}

// NewAuthorizationRangeRepository construye el repositorio. Pasar pool o tx (Querier).
func NewAuthorizationRangeRepository(q Querier) *AuthorizationRangeRepo {
	return &AuthorizationRangeRepo{q: q}
}

func (r *AuthorizationRangeRepo) Create(ctx context.Context, rng *entity.AuthorizationRange) error {
	if rng.ID == "" {
		rng.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if rng.CreatedAt.IsZero() {
		rng.CreatedAt = now
	}
	rng.UpdatedAt = now
	const q = `
		INSERT INTO authorization_ranges
			(id, tenant_id, branch_id, document_type, cai_code, prefix, range_start, range_end,
			 total_count, used_count, authorization_date, expiration_date, status, notes, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, q,
		rng.ID, rng.TenantID, rng.BranchID, rng.DocumentType, rng.CAICode, rng.Prefix,
		rng.RangeStart, rng.RangeEnd, rng.TotalCount, rng.UsedCount,
		entity.CivilDate(rng.AuthorizationDate), entity.CivilDate(rng.ExpirationDate),
		rng.Status, rng.Notes, rng.CreatedAt, rng.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert authorization_range: %w", domain.ErrRangeOverlap)
		}
		return fmt.Errorf("insert authorization_range: %w", err)
	}
	return nil
}

func (r *AuthorizationRangeRepo) GetByID(ctx context.Context, id string) (*entity.AuthorizationRange, error) {
	q := `SELECT ` + rangeColumns + ` FROM authorization_ranges WHERE id = $1`
	rng, err := scanRange(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get authorization_range by id: %w", err)
	}
	return rng, nil
}

const allocatableQuery = `
		SELECT ` + rangeColumns + `
		FROM authorization_ranges
		WHERE tenant_id       = $1
		  AND branch_id       = $2
		  AND document_type   = $3
		  AND status          = 'active'
		  AND expiration_date >= $4
		  AND used_count      < total_count
		ORDER BY authorization_date DESC, created_at DESC
		LIMIT 1`

// GetAllocatableForUpdate es la consulta crítica del flujo de emisión.
// FOR UPDATE serializa a todos los cajeros de la misma (sucursal, tipo) sobre la fila del CAI.
func (r *AuthorizationRangeRepo) GetAllocatableForUpdate(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	return r.getAllocatable(ctx, allocatableQuery+`
		FOR UPDATE`, key, today)
}

// GetAllocatable igual que GetAllocatableForUpdate sin tomar el bloqueo de fila.
func (r *AuthorizationRangeRepo) GetAllocatable(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	return r.getAllocatable(ctx, allocatableQuery, key, today)
}

func (r *AuthorizationRangeRepo) getAllocatable(ctx context.Context, q string, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	rng, err := scanRange(r.q.QueryRow(ctx, q, key.TenantID, key.BranchID, key.DocumentType, entity.CivilDate(today)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get allocatable authorization_range: %w", err)
	}
	return rng, nil
}

// LockKey toma un advisory lock de transacción sobre (tenant, sucursal, tipo, prefijo).
// Fuera de una transacción el lock se libera al terminar la sentencia: llamar solo dentro de RunFiscal.
func (r *AuthorizationRangeRepo) LockKey(ctx context.Context, key repository.RangeKey, prefix string) error {
	lockKey := strings.Join([]string{key.TenantID, key.BranchID, key.DocumentType, prefix}, "|")
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("lock authorization_range key: %w", err)
	}
	return nil
}

func (r *AuthorizationRangeRepo) GetLatestUnexpired(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	q := `
		SELECT ` + rangeColumns + `
		FROM authorization_ranges
		WHERE tenant_id       = $1
		  AND branch_id       = $2
		  AND document_type   = $3
		  AND status         <> 'canceled'
		  AND expiration_date >= $4
		ORDER BY authorization_date DESC, created_at DESC
		LIMIT 1`
	rng, err := scanRange(r.q.QueryRow(ctx, q, key.TenantID, key.BranchID, key.DocumentType, entity.CivilDate(today)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest authorization_range: %w", err)
	}
	return rng, nil
}

func (r *AuthorizationRangeRepo) ListByKey(ctx context.Context, key repository.RangeKey) ([]*entity.AuthorizationRange, error) {
	q := `
		SELECT ` + rangeColumns + `
		FROM authorization_ranges
		WHERE tenant_id = $1 AND branch_id = $2 AND document_type = $3 AND status <> 'canceled'
		ORDER BY authorization_date DESC`
	return r.list(ctx, q, key.TenantID, key.BranchID, key.DocumentType)
}

func (r *AuthorizationRangeRepo) ListByTenant(ctx context.Context, tenantID, branchID string) ([]*entity.AuthorizationRange, error) {
	q := `
		SELECT ` + rangeColumns + `
		FROM authorization_ranges
		WHERE tenant_id = $1 AND ($2 = '' OR branch_id = $2)
		ORDER BY branch_id, document_type, authorization_date DESC`
	return r.list(ctx, q, tenantID, branchID)
}

func (r *AuthorizationRangeRepo) list(ctx context.Context, q string, args ...any) ([]*entity.AuthorizationRange, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list authorization_ranges: %w", err)
	}
	defer rows.Close()

	var list []*entity.AuthorizationRange
	for rows.Next() {
		rng, err := scanRange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan authorization_range: %w", err)
		}
		list = append(list, rng)
	}
	return list, rows.Err()
}

// IncrementUsed suma 1 a used_count; al llegar a total_count el estado pasa a depleted.
func (r *AuthorizationRangeRepo) IncrementUsed(ctx context.Context, id string) (*entity.AuthorizationRange, error) {
	q := `
		UPDATE authorization_ranges
		SET used_count = used_count + 1,
		    status     = CASE WHEN used_count + 1 >= total_count THEN 'depleted' ELSE status END,
		    updated_at = now()
		WHERE id = $1 AND used_count < total_count
		RETURNING ` + rangeColumns
	rng, err := scanRange(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("increment used_count %s: %w", id, domain.ErrRangeDepleted)
		}
		return nil, fmt.Errorf("increment used_count: %w", err)
	}
	return rng, nil
}

func (r *AuthorizationRangeRepo) UpdateStatus(ctx context.Context, id, status, notes string) error {
	const q = `UPDATE authorization_ranges SET status = $2, notes = $3, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, q, id, status, notes)
	if err != nil {
		return fmt.Errorf("update authorization_range status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el rango (los correlativos caen por ON DELETE CASCADE) solo si no se usó.
func (r *AuthorizationRangeRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM authorization_ranges WHERE id = $1 AND used_count = 0`
	tag, err := r.q.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete authorization_range: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete authorization_range %s: %w", id, domain.ErrConflict)
	}
	return nil
}

func scanRange(row pgxScanner) (*entity.AuthorizationRange, error) {
	var rng entity.AuthorizationRange
	err := row.Scan(
		&rng.ID, &rng.TenantID, &rng.BranchID, &rng.DocumentType, &rng.CAICode, &rng.Prefix,
		&rng.RangeStart, &rng.RangeEnd, &rng.TotalCount, &rng.UsedCount,
		&rng.AuthorizationDate, &rng.ExpirationDate, &rng.Status, &rng.Notes,
		&rng.CreatedAt, &rng.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rng, nil
}
