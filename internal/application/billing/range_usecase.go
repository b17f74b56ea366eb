package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

// RangeUseCase administra los rangos de autorización (CAI) y su pool de correlativos.
type RangeUseCase struct {
	txRunner        FiscalTxRunner
	rangeRepo       repository.AuthorizationRangeRepository
	correlativeRepo repository.CorrelativeRepository
	alerts          *fiscal.AlertEvaluator
	settings        Settings
	log             zerolog.Logger
}

// NewRangeUseCase construye el caso de uso.
func NewRangeUseCase(
	txRunner FiscalTxRunner,
	rangeRepo repository.AuthorizationRangeRepository,
	correlativeRepo repository.CorrelativeRepository,
	settings Settings,
	log zerolog.Logger,
) *RangeUseCase {
	settings = settings.withDefaults()
	return &RangeUseCase{
		txRunner:        txRunner,
		rangeRepo:       rangeRepo,
		correlativeRepo: correlativeRepo,
		alerts:          fiscal.NewAlertEvaluator(settings.Alerts),
		settings:        settings,
		log:             log,
	}
}

// AuthorizeRange registra un CAI otorgado por el SAR y crea todos sus correlativos
// en la misma transacción (cada número queda auditado desde el primer día).
func (uc *RangeUseCase) AuthorizeRange(ctx context.Context, tenantID string, in dto.AuthorizeRangeRequest) (*dto.RangeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	bounds, err := fiscal.ParseRangeBounds(in.RangeStart, in.RangeEnd)
	if err != nil {
		return nil, err
	}
	if bounds.Total() > uc.settings.MaxRangeSize {
		return nil, fmt.Errorf("%w: %d correlativos excede el máximo de %d", domain.ErrInvalidRange, bounds.Total(), uc.settings.MaxRangeSize)
	}
	authDate, err := time.Parse(dateLayout, in.AuthorizationDate)
	if err != nil {
		return nil, fmt.Errorf("%w: authorization_date", domain.ErrInvalidInput)
	}
	expDate, err := time.Parse(dateLayout, in.ExpirationDate)
	if err != nil {
		return nil, fmt.Errorf("%w: expiration_date", domain.ErrInvalidInput)
	}
	if expDate.Before(authDate) {
		return nil, fmt.Errorf("%w: la fecha límite de emisión es anterior a la de autorización", domain.ErrInvalidRange)
	}
	now := uc.settings.now()
	if entity.CivilDate(now).After(expDate) {
		return nil, fmt.Errorf("%w: el CAI ya venció el %s", domain.ErrInvalidRange, in.ExpirationDate)
	}

	key := repository.RangeKey{TenantID: tenantID, BranchID: in.BranchID, DocumentType: in.DocumentType}
	rng := &entity.AuthorizationRange{
		ID:                uuid.New().String(),
		TenantID:          tenantID,
		BranchID:          in.BranchID,
		DocumentType:      in.DocumentType,
		CAICode:           in.CAICode,
		Prefix:            in.Prefix,
		RangeStart:        in.RangeStart,
		RangeEnd:          in.RangeEnd,
		TotalCount:        bounds.Total(),
		AuthorizationDate: authDate,
		ExpirationDate:    expDate,
		Status:            entity.RangeStatusActive,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = withRetry(ctx, uc.settings, uc.log, "authorize_range", func() error {
		return uc.txRunner.RunFiscal(ctx, func(
			rangeRepo repository.AuthorizationRangeRepository,
			correlativeRepo repository.CorrelativeRepository,
			_ repository.InvoiceRepository,
		) error {
			// serializa altas concurrentes del mismo prefijo: sin esto dos traslapes pasan la verificación
			if err := rangeRepo.LockKey(ctx, key, rng.Prefix); err != nil {
				return err
			}
			existing, err := rangeRepo.ListByKey(ctx, key)
			if err != nil {
				return err
			}
			for _, e := range existing {
				if e.Prefix != rng.Prefix {
					continue
				}
				eb, err := fiscal.ParseRangeBounds(e.RangeStart, e.RangeEnd)
				if err != nil {
					continue
				}
				if eb.Overlaps(bounds) {
					return fmt.Errorf("CAI %s (%s-%s): %w", e.CAICode, e.RangeStart, e.RangeEnd, domain.ErrRangeOverlap)
				}
			}
			if err := rangeRepo.Create(ctx, rng); err != nil {
				return err
			}
			list := make([]*entity.Correlative, 0, bounds.Total())
			for n := bounds.First; n <= bounds.Last; n++ {
				list = append(list, &entity.Correlative{
					ID:              uuid.New().String(),
					RangeID:         rng.ID,
					SequenceNumber:  n,
					FormattedNumber: bounds.Format(n),
					Status:          entity.CorrelativeStatusAvailable,
					CreatedAt:       now,
				})
			}
			return correlativeRepo.CreateBatch(ctx, list)
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("tenant_id", tenantID).
		Str("branch_id", rng.BranchID).
		Str("document_type", rng.DocumentType).
		Str("cai", rng.CAICode).
		Int64("total", rng.TotalCount).
		Msg("CAI autorizado")

	resp := toRangeResponse(rng, uc.alerts.Evaluate(rng, now), now)
	return &resp, nil
}

// ListRanges lista los CAI del tenant con su estado efectivo y alertas. branchID vacío = todas.
func (uc *RangeUseCase) ListRanges(ctx context.Context, tenantID, branchID string) ([]dto.RangeResponse, error) {
	list, err := uc.rangeRepo.ListByTenant(ctx, tenantID, branchID)
	if err != nil {
		return nil, err
	}
	now := uc.settings.now()
	return iter.Map(list, func(r **entity.AuthorizationRange) dto.RangeResponse {
		return toRangeResponse(*r, uc.alerts.Evaluate(*r, now), now)
	}), nil
}

// GetRange obtiene un CAI del tenant.
func (uc *RangeUseCase) GetRange(ctx context.Context, tenantID, id string) (*dto.RangeResponse, error) {
	rng, err := uc.getOwned(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	now := uc.settings.now()
	resp := toRangeResponse(rng, uc.alerts.Evaluate(rng, now), now)
	return &resp, nil
}

// GetAvailableCount correlativos disponibles del CAI y si amerita alerta.
func (uc *RangeUseCase) GetAvailableCount(ctx context.Context, tenantID, id string) (*dto.AvailableCountResponse, error) {
	rng, err := uc.getOwned(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	a := uc.alerts.Evaluate(rng, uc.settings.now())
	return &dto.AvailableCountResponse{
		RangeID:              rng.ID,
		AvailableCount:       a.AvailableCount,
		NeedsAlert:           a.Any(),
		NeedsRestockAlert:    a.NeedsRestockAlert,
		NeedsExpirationAlert: a.NeedsExpirationAlert,
		Threshold:            uc.alerts.Config().RestockThreshold,
	}, nil
}

// ListCorrelatives lista los números del CAI (auditoría) junto con el conteo por estado.
func (uc *RangeUseCase) ListCorrelatives(ctx context.Context, tenantID, id, status string, page dto.PageRequest) (*dto.CorrelativeListResponse, error) {
	switch status {
	case "", entity.CorrelativeStatusAvailable, entity.CorrelativeStatusUsed, entity.CorrelativeStatusVoided:
	default:
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	if err := dto.Validate(page); err != nil {
		return nil, err
	}
	rng, err := uc.getOwned(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	counts, err := uc.correlativeRepo.CountByStatus(ctx, rng.ID)
	if err != nil {
		return nil, err
	}
	list, err := uc.correlativeRepo.ListByRange(ctx, rng.ID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total := counts.Available + counts.Used + counts.Voided
	switch status {
	case entity.CorrelativeStatusAvailable:
		total = counts.Available
	case entity.CorrelativeStatusUsed:
		total = counts.Used
	case entity.CorrelativeStatusVoided:
		total = counts.Voided
	}
	return &dto.CorrelativeListResponse{
		Items: iter.Map(list, func(c **entity.Correlative) dto.CorrelativeResponse { return toCorrelativeResponse(*c) }),
		Usage: dto.RangeUsageResponse{Available: counts.Available, Used: counts.Used, Voided: counts.Voided},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: int(total)},
	}, nil
}

// CancelRange anula administrativamente un CAI. Los números ya emitidos no cambian;
// los disponibles dejan de asignarse.
func (uc *RangeUseCase) CancelRange(ctx context.Context, tenantID, id string, in dto.CancelRangeRequest) (*dto.RangeResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	rng, err := uc.getOwned(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rng.Status == entity.RangeStatusCanceled {
		return nil, fmt.Errorf("CAI %s ya está cancelado: %w", rng.CAICode, domain.ErrConflict)
	}
	if err := uc.rangeRepo.UpdateStatus(ctx, rng.ID, entity.RangeStatusCanceled, in.Notes); err != nil {
		return nil, err
	}
	rng.Status = entity.RangeStatusCanceled
	rng.Notes = in.Notes

	uc.log.Info().Str("tenant_id", tenantID).Str("cai", rng.CAICode).Int64("used", rng.UsedCount).Msg("CAI cancelado")

	now := uc.settings.now()
	resp := toRangeResponse(rng, uc.alerts.Evaluate(rng, now), now)
	return &resp, nil
}

// DeleteRange elimina un CAI registrado por error. Solo procede si no se usó ningún número.
func (uc *RangeUseCase) DeleteRange(ctx context.Context, tenantID, id string) error {
	rng, err := uc.getOwned(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if rng.UsedCount > 0 {
		return fmt.Errorf("CAI %s tiene %d correlativos consumidos: %w", rng.CAICode, rng.UsedCount, domain.ErrConflict)
	}
	if err := uc.rangeRepo.Delete(ctx, rng.ID); err != nil {
		return err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("cai", rng.CAICode).Msg("CAI eliminado")
	return nil
}

func (uc *RangeUseCase) getOwned(ctx context.Context, tenantID, id string) (*entity.AuthorizationRange, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	rng, err := uc.rangeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rng == nil || rng.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return rng, nil
}
