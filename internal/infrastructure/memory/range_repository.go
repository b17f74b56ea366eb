package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

var _ repository.AuthorizationRangeRepository = (*RangeRepo)(nil)

// RangeRepo AuthorizationRangeRepository en memoria.
type RangeRepo struct {
	s  *Store
	tx *txn
}

func (r *RangeRepo) Create(ctx context.Context, rng *entity.AuthorizationRange) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()

	for _, e := range r.s.ranges {
		if e.TenantID == rng.TenantID && e.BranchID == rng.BranchID && e.DocumentType == rng.DocumentType &&
			e.Prefix == rng.Prefix && e.RangeStart == rng.RangeStart {
			return fmt.Errorf("insert authorization_range: %w", domain.ErrRangeOverlap)
		}
	}
	if rng.ID == "" {
		rng.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if rng.CreatedAt.IsZero() {
		rng.CreatedAt = now
	}
	rng.UpdatedAt = now
	cp := *rng
	r.s.ranges[cp.ID] = &cp
	r.tx.record(func() { delete(r.s.ranges, cp.ID) })
	return nil
}

func (r *RangeRepo) GetByID(ctx context.Context, id string) (*entity.AuthorizationRange, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	return copyRange(r.s.ranges[id]), nil
}

func (r *RangeRepo) GetAllocatableForUpdate(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	return copyRange(r.latest(key, func(e *entity.AuthorizationRange) bool {
		return e.Status == entity.RangeStatusActive && !e.IsExpiredOn(today) && e.UsedCount < e.TotalCount
	})), nil
}

// GetAllocatable en memoria no hay bloqueos de fila: misma selección que GetAllocatableForUpdate.
func (r *RangeRepo) GetAllocatable(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	return r.GetAllocatableForUpdate(ctx, key, today)
}

// LockKey el lock global del store ya serializa las transacciones.
func (r *RangeRepo) LockKey(ctx context.Context, _ repository.RangeKey, _ string) error {
	return ctxErr(ctx)
}

func (r *RangeRepo) GetLatestUnexpired(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	return copyRange(r.latest(key, func(e *entity.AuthorizationRange) bool {
		return e.Status != entity.RangeStatusCanceled && !e.IsExpiredOn(today)
	})), nil
}

// latest aplica el desempate: authorization_date más reciente, luego created_at.
func (r *RangeRepo) latest(key repository.RangeKey, match func(*entity.AuthorizationRange) bool) *entity.AuthorizationRange {
	var best *entity.AuthorizationRange
	for _, e := range r.s.ranges {
		if e.TenantID != key.TenantID || e.BranchID != key.BranchID || e.DocumentType != key.DocumentType || !match(e) {
			continue
		}
		if best == nil || newer(e, best) {
			best = e
		}
	}
	return best
}

func newer(a, b *entity.AuthorizationRange) bool {
	if !a.AuthorizationDate.Equal(b.AuthorizationDate) {
		return a.AuthorizationDate.After(b.AuthorizationDate)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *RangeRepo) ListByKey(ctx context.Context, key repository.RangeKey) ([]*entity.AuthorizationRange, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	var list []*entity.AuthorizationRange
	for _, e := range r.s.ranges {
		if e.TenantID == key.TenantID && e.BranchID == key.BranchID && e.DocumentType == key.DocumentType &&
			e.Status != entity.RangeStatusCanceled {
			list = append(list, copyRange(e))
		}
	}
	slices.SortFunc(list, func(a, b *entity.AuthorizationRange) int {
		return b.AuthorizationDate.Compare(a.AuthorizationDate)
	})
	return list, nil
}

func (r *RangeRepo) ListByTenant(ctx context.Context, tenantID, branchID string) ([]*entity.AuthorizationRange, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	var list []*entity.AuthorizationRange
	for _, e := range r.s.ranges {
		if e.TenantID == tenantID && (branchID == "" || e.BranchID == branchID) {
			list = append(list, copyRange(e))
		}
	}
	slices.SortFunc(list, func(a, b *entity.AuthorizationRange) int {
		return cmp.Or(
			cmp.Compare(a.BranchID, b.BranchID),
			cmp.Compare(a.DocumentType, b.DocumentType),
			b.AuthorizationDate.Compare(a.AuthorizationDate),
		)
	})
	return list, nil
}

func (r *RangeRepo) IncrementUsed(ctx context.Context, id string) (*entity.AuthorizationRange, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	e, ok := r.s.ranges[id]
	if !ok || e.UsedCount >= e.TotalCount {
		return nil, fmt.Errorf("increment used_count %s: %w", id, domain.ErrRangeDepleted)
	}
	prev := *e
	e.UsedCount++
	if e.UsedCount >= e.TotalCount {
		e.Status = entity.RangeStatusDepleted
	}
	e.UpdatedAt = time.Now().UTC()
	r.tx.record(func() { *r.s.ranges[id] = prev })
	return copyRange(e), nil
}

func (r *RangeRepo) UpdateStatus(ctx context.Context, id, status, notes string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()
	e, ok := r.s.ranges[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := *e
	e.Status = status
	e.Notes = notes
	e.UpdatedAt = time.Now().UTC()
	r.tx.record(func() { *r.s.ranges[id] = prev })
	return nil
}

func (r *RangeRepo) Delete(ctx context.Context, id string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()
	e, ok := r.s.ranges[id]
	if !ok || e.UsedCount > 0 {
		return fmt.Errorf("delete authorization_range %s: %w", id, domain.ErrConflict)
	}
	ids := r.s.rangeCorrelatives[id]
	removed := make([]*entity.Correlative, 0, len(ids))
	for _, cid := range ids {
		removed = append(removed, r.s.correlatives[cid])
		delete(r.s.correlatives, cid)
	}
	delete(r.s.rangeCorrelatives, id)
	delete(r.s.ranges, id)
	r.tx.record(func() {
		r.s.ranges[id] = e
		r.s.rangeCorrelatives[id] = ids
		for _, c := range removed {
			r.s.correlatives[c.ID] = c
		}
	})
	return nil
}

func copyRange(e *entity.AuthorizationRange) *entity.AuthorizationRange {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}
