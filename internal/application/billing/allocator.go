package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/application/dto"
	"github.com/jhoicas/Fiscal-api/internal/domain"
	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
	"github.com/jhoicas/Fiscal-api/internal/domain/repository"
)

// Allocation resultado de reservar un correlativo.
type Allocation struct {
	Range       *entity.AuthorizationRange // estado del CAI después del incremento
	Correlative *entity.Correlative
	Alerts      fiscal.Alerts
}

// Allocator reserva el menor correlativo disponible del CAI vigente para una clave.
// No abre transacciones: se usa dentro de FiscalTxRunner.RunFiscal junto con lo que
// consume el número, de modo que reserva y consumo se confirman o revierten juntos.
type Allocator struct {
	alerts *fiscal.AlertEvaluator
}

// NewAllocator construye el allocator con los umbrales de alerta.
func NewAllocator(alerts *fiscal.AlertEvaluator) *Allocator {
	return &Allocator{alerts: alerts}
}

// Allocate bloquea el CAI asignable de key, marca como used su menor correlativo disponible
// e incrementa used_count. now debe venir en la zona fiscal.
//
// Errores: domain.ErrNoActiveRange si no hay CAI activo y vigente; domain.ErrRangeDepleted
// si el CAI vigente más reciente ya no tiene números.
func (a *Allocator) Allocate(
	ctx context.Context,
	rangeRepo repository.AuthorizationRangeRepository,
	correlativeRepo repository.CorrelativeRepository,
	key repository.RangeKey,
	now time.Time,
) (*Allocation, error) {
	rng, err := locateForUpdate(ctx, rangeRepo, key, now)
	if err != nil {
		return nil, err
	}

	c, err := correlativeRepo.ClaimLowestAvailable(ctx, rng.ID, now)
	if err != nil {
		return nil, err
	}
	if c == nil {
		// used_count dice que quedan números pero el pool no tiene ninguno disponible.
		return nil, fmt.Errorf("CAI %s: pool sin correlativos disponibles con used_count=%d/%d: %w",
			rng.ID, rng.UsedCount, rng.TotalCount, domain.ErrConflict)
	}

	updated, err := rangeRepo.IncrementUsed(ctx, rng.ID)
	if err != nil {
		return nil, err
	}
	return &Allocation{
		Range:       updated,
		Correlative: c,
		Alerts:      a.alerts.Evaluate(updated, now),
	}, nil
}

// locateForUpdate aplica la regla de selección y distingue agotado de inexistente.
func locateForUpdate(ctx context.Context, rangeRepo repository.AuthorizationRangeRepository, key repository.RangeKey, now time.Time) (*entity.AuthorizationRange, error) {
	return locate(ctx, rangeRepo, rangeRepo.GetAllocatableForUpdate, key, now)
}

type allocatableFunc func(ctx context.Context, key repository.RangeKey, today time.Time) (*entity.AuthorizationRange, error)

func locate(ctx context.Context, rangeRepo repository.AuthorizationRangeRepository, find allocatableFunc, key repository.RangeKey, now time.Time) (*entity.AuthorizationRange, error) {
	rng, err := find(ctx, key, now)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		return rng, nil
	}
	latest, err := rangeRepo.GetLatestUnexpired(ctx, key, now)
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsDepleted() {
		return nil, fmt.Errorf("CAI %s (%s): %w", latest.CAICode, key.DocumentType, domain.ErrRangeDepleted)
	}
	return nil, fmt.Errorf("sucursal %s, %s: %w", key.BranchID, key.DocumentType, domain.ErrNoActiveRange)
}

// CorrelativeUseCase consulta el próximo número sin consumirlo.
type CorrelativeUseCase struct {
	txRunner FiscalTxRunner
	alerts   *fiscal.AlertEvaluator
	settings Settings
	log      zerolog.Logger
}

// NewCorrelativeUseCase construye el caso de uso.
func NewCorrelativeUseCase(txRunner FiscalTxRunner, settings Settings, log zerolog.Logger) *CorrelativeUseCase {
	settings = settings.withDefaults()
	return &CorrelativeUseCase{
		txRunner: txRunner,
		alerts:   fiscal.NewAlertEvaluator(settings.Alerts),
		settings: settings,
		log:      log,
	}
}

// NextCorrelative devuelve el número que recibiría la próxima factura de la clave.
// Es una vista previa sin bloqueos: el número solo se reserva dentro de IssueInvoice, así que
// dos cajas pueden ver el mismo valor aquí y la consulta no espera a una emisión en curso.
func (uc *CorrelativeUseCase) NextCorrelative(ctx context.Context, tenantID, branchID, documentType string) (*dto.NextCorrelativeResponse, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: branch_id requerido", domain.ErrInvalidInput)
	}
	if documentType == "" {
		documentType = entity.DocumentTypeInvoice
	}
	if !entity.ValidDocumentType(documentType) {
		return nil, fmt.Errorf("%w: document_type %q", domain.ErrInvalidInput, documentType)
	}
	key := repository.RangeKey{TenantID: tenantID, BranchID: branchID, DocumentType: documentType}

	var resp *dto.NextCorrelativeResponse
	err := withRetry(ctx, uc.settings, uc.log, "next_correlative", func() error {
		return uc.txRunner.RunFiscal(ctx, func(
			rangeRepo repository.AuthorizationRangeRepository,
			correlativeRepo repository.CorrelativeRepository,
			_ repository.InvoiceRepository,
		) error {
			now := uc.settings.now()
			rng, err := locate(ctx, rangeRepo, rangeRepo.GetAllocatable, key, now)
			if err != nil {
				return err
			}
			c, err := correlativeRepo.PeekLowestAvailable(ctx, rng.ID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("CAI %s: %w", rng.CAICode, domain.ErrRangeDepleted)
			}
			resp = &dto.NextCorrelativeResponse{
				CorrelativeID:   c.ID,
				RangeID:         rng.ID,
				FormattedNumber: c.FormattedNumber,
				Status:          c.Status,
				Alerts:          toAlertsResponse(uc.alerts.Evaluate(rng, now)),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
