package billing

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Fiscal-api/internal/domain"
)

// withRetry reintenta fn solo ante domain.ErrTransientConflict, con backoff exponencial
// y a lo sumo s.LockRetries reintentos. Cualquier otro error (agotado, vencido, ya anulado,
// validación) corta en el primer intento.
func withRetry(ctx context.Context, s Settings, log zerolog.Logger, op string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.LockRetryInterval
	policy.MaxInterval = 10 * s.LockRetryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.LockRetries)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrTransientConflict) {
			log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto de bloqueo, reintentando")
			return err
		}
		return backoff.Permanent(err)
	}, b)

	if err != nil && errors.Is(err, domain.ErrTransientConflict) {
		log.Error().Err(err).Str("op", op).Int("attempts", attempt).Msg("reintentos agotados")
	}
	return err
}
