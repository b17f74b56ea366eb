package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

// RangeKey identifica el CAI que se busca: tenant, sucursal y tipo de documento.
// Se pasa explícito en cada operación; el motor no lee identidad de estado global.
type RangeKey struct {
	TenantID     string
	BranchID     string
	DocumentType string
}

// AuthorizationRangeRepository define el puerto de persistencia para rangos de autorización (CAI).
type AuthorizationRangeRepository interface {
	Create(ctx context.Context, r *entity.AuthorizationRange) error
	GetByID(ctx context.Context, id string) (*entity.AuthorizationRange, error)

	// GetAllocatableForUpdate devuelve el rango activo, vigente a la fecha today y con al menos
	// un correlativo disponible para la clave, bloqueando su fila hasta el fin de la transacción.
	// Si hay más de uno gana el de authorization_date más reciente. nil, nil si no hay ninguno.
	// Es la consulta crítica del Allocator: serializa a los cajeros de la misma sucursal.
	GetAllocatableForUpdate(ctx context.Context, key RangeKey, today time.Time) (*entity.AuthorizationRange, error)

	// GetAllocatable misma selección que GetAllocatableForUpdate pero sin bloquear (vista previa).
	GetAllocatable(ctx context.Context, key RangeKey, today time.Time) (*entity.AuthorizationRange, error)

	// GetLatestUnexpired devuelve el rango no cancelado y vigente más reciente para la clave,
	// sin importar si está agotado. Distingue RangeDepleted de NoActiveRange.
	GetLatestUnexpired(ctx context.Context, key RangeKey, today time.Time) (*entity.AuthorizationRange, error)

	// LockKey serializa hasta el fin de la transacción el alta de rangos de la clave con ese prefijo.
	// Se toma antes de ListByKey para que la verificación de traslape y el INSERT sean atómicos.
	LockKey(ctx context.Context, key RangeKey, prefix string) error

	// ListByKey lista los rangos no cancelados de la clave (para detectar traslapes).
	ListByKey(ctx context.Context, key RangeKey) ([]*entity.AuthorizationRange, error)

	// ListByTenant lista los rangos del tenant; branchID vacío = todas las sucursales.
	ListByTenant(ctx context.Context, tenantID, branchID string) ([]*entity.AuthorizationRange, error)

	// IncrementUsed suma 1 a used_count y marca depleted al llegar a total_count.
	// Debe llamarse en la misma transacción que reclama el correlativo.
	IncrementUsed(ctx context.Context, id string) (*entity.AuthorizationRange, error)

	// UpdateStatus cambia estado y notas (cancelación por el operador).
	UpdateStatus(ctx context.Context, id, status, notes string) error

	// Delete elimina el rango y sus correlativos; solo procede si used_count = 0.
	Delete(ctx context.Context, id string) error
}
