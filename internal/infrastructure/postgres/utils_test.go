package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Fiscal-api/internal/domain"
)

func TestMapTxError_Transitorios(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := fmt.Errorf("claim correlative: %w", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, mapTxError(err), domain.ErrTransientConflict, code)
	}
}

func TestMapTxError_NoTransitorios(t *testing.T) {
	assert.NoError(t, mapTxError(nil))

	unique := &pgconn.PgError{Code: "23505"}
	assert.False(t, errors.Is(mapTxError(unique), domain.ErrTransientConflict))
	assert.True(t, isUniqueViolation(unique))

	assert.ErrorIs(t, mapTxError(domain.ErrRangeDepleted), domain.ErrRangeDepleted)
}
