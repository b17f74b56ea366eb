package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

// CorrelativeRepository define el puerto de persistencia del pool de correlativos.
type CorrelativeRepository interface {
	// CreateBatch inserta todos los correlativos de un rango recién autorizado.
	CreateBatch(ctx context.Context, list []*entity.Correlative) error

	GetByID(ctx context.Context, id string) (*entity.Correlative, error)

	// PeekLowestAvailable devuelve sin reservar el correlativo disponible de menor número.
	PeekLowestAvailable(ctx context.Context, rangeID string) (*entity.Correlative, error)

	// ClaimLowestAvailable marca como used el correlativo disponible de menor número y lo devuelve.
	// nil, nil si no queda ninguno. El caller debe tener bloqueado el rango.
	ClaimLowestAvailable(ctx context.Context, rangeID string, at time.Time) (*entity.Correlative, error)

	// MarkVoided pasa un correlativo de used a voided. ErrConflict si no estaba en used.
	MarkVoided(ctx context.Context, id string, at time.Time) error

	// CountByStatus cuenta los correlativos de un rango por estado.
	CountByStatus(ctx context.Context, rangeID string) (entity.CorrelativeCounts, error)

	// ListByRange lista correlativos ordenados por número; status vacío = todos.
	ListByRange(ctx context.Context, rangeID, status string, limit, offset int) ([]*entity.Correlative, error)
}
