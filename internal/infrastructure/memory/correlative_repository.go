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

var _ repository.CorrelativeRepository = (*CorrelativeRepo)(nil)

// CorrelativeRepo CorrelativeRepository en memoria.
type CorrelativeRepo struct {
	s  *Store
	tx *txn
}

func (r *CorrelativeRepo) CreateBatch(ctx context.Context, list []*entity.Correlative) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()

	seen := make(map[string]map[int64]bool)
	for _, c := range list {
		if _, ok := r.s.ranges[c.RangeID]; !ok {
			return fmt.Errorf("copy correlatives: rango %s no existe", c.RangeID)
		}
		if seen[c.RangeID] == nil {
			seen[c.RangeID] = make(map[int64]bool)
			for _, id := range r.s.rangeCorrelatives[c.RangeID] {
				seen[c.RangeID][r.s.correlatives[id].SequenceNumber] = true
			}
		}
		if seen[c.RangeID][c.SequenceNumber] {
			return fmt.Errorf("copy correlatives: %w", domain.ErrDuplicate)
		}
		seen[c.RangeID][c.SequenceNumber] = true
	}

	now := time.Now().UTC()
	touched := make(map[string][]string)
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
		cp := *c
		r.s.correlatives[cp.ID] = &cp
		if _, ok := touched[cp.RangeID]; !ok {
			// la lista previa queda intacta para el rollback
			prev := r.s.rangeCorrelatives[cp.RangeID]
			touched[cp.RangeID] = prev
			r.s.rangeCorrelatives[cp.RangeID] = slices.Clone(prev)
		}
		r.s.rangeCorrelatives[cp.RangeID] = append(r.s.rangeCorrelatives[cp.RangeID], cp.ID)
	}
	for rangeID := range touched {
		ids := r.s.rangeCorrelatives[rangeID]
		slices.SortFunc(ids, func(a, b string) int {
			return cmp.Compare(r.s.correlatives[a].SequenceNumber, r.s.correlatives[b].SequenceNumber)
		})
	}

	r.tx.record(func() {
		for _, c := range list {
			delete(r.s.correlatives, c.ID)
		}
		for rangeID, prev := range touched {
			if prev == nil {
				delete(r.s.rangeCorrelatives, rangeID)
				continue
			}
			r.s.rangeCorrelatives[rangeID] = prev
		}
	})
	return nil
}

func (r *CorrelativeRepo) GetByID(ctx context.Context, id string) (*entity.Correlative, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	return copyCorrelative(r.s.correlatives[id]), nil
}

func (r *CorrelativeRepo) PeekLowestAvailable(ctx context.Context, rangeID string) (*entity.Correlative, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	return copyCorrelative(r.lowestAvailable(rangeID)), nil
}

func (r *CorrelativeRepo) ClaimLowestAvailable(ctx context.Context, rangeID string, at time.Time) (*entity.Correlative, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	c := r.lowestAvailable(rangeID)
	if c == nil {
		return nil, nil
	}
	prev := *c
	usedAt := at
	c.Status = entity.CorrelativeStatusUsed
	c.UsedAt = &usedAt
	r.tx.record(func() { *r.s.correlatives[prev.ID] = prev })
	return copyCorrelative(c), nil
}

func (r *CorrelativeRepo) lowestAvailable(rangeID string) *entity.Correlative {
	for _, id := range r.s.rangeCorrelatives[rangeID] {
		if c := r.s.correlatives[id]; c.Status == entity.CorrelativeStatusAvailable {
			return c
		}
	}
	return nil
}

func (r *CorrelativeRepo) MarkVoided(ctx context.Context, id string, at time.Time) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock(r.tx)()
	c, ok := r.s.correlatives[id]
	if !ok || c.Status != entity.CorrelativeStatusUsed {
		return fmt.Errorf("void correlative %s: %w", id, domain.ErrConflict)
	}
	prev := *c
	voidedAt := at
	c.Status = entity.CorrelativeStatusVoided
	c.VoidedAt = &voidedAt
	r.tx.record(func() { *r.s.correlatives[id] = prev })
	return nil
}

func (r *CorrelativeRepo) CountByStatus(ctx context.Context, rangeID string) (entity.CorrelativeCounts, error) {
	var counts entity.CorrelativeCounts
	if err := ctxErr(ctx); err != nil {
		return counts, err
	}
	defer r.s.lock(r.tx)()
	for _, id := range r.s.rangeCorrelatives[rangeID] {
		switch r.s.correlatives[id].Status {
		case entity.CorrelativeStatusAvailable:
			counts.Available++
		case entity.CorrelativeStatusUsed:
			counts.Used++
		case entity.CorrelativeStatusVoided:
			counts.Voided++
		}
	}
	return counts, nil
}

func (r *CorrelativeRepo) ListByRange(ctx context.Context, rangeID, status string, limit, offset int) ([]*entity.Correlative, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock(r.tx)()
	var list []*entity.Correlative
	for _, id := range r.s.rangeCorrelatives[rangeID] {
		c := r.s.correlatives[id]
		if status == "" || c.Status == status {
			list = append(list, copyCorrelative(c))
		}
	}
	return paginate(list, limit, offset), nil
}

func copyCorrelative(c *entity.Correlative) *entity.Correlative {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
