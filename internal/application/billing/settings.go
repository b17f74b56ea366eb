package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Fiscal-api/internal/domain/fiscal"
)

// Settings parámetros compartidos por los casos de uso fiscales.
type Settings struct {
	Location          *time.Location // zona fiscal: fecha de vencimiento y mes de anulación
	Alerts            fiscal.AlertConfig
	MaxRangeSize      int64
	LockRetries       int
	LockRetryInterval time.Duration
	Now               func() time.Time // reloj inyectable (tests)
}

func (s Settings) withDefaults() Settings {
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.MaxRangeSize <= 0 {
		s.MaxRangeSize = 1_000_000
	}
	if s.LockRetries < 0 {
		s.LockRetries = 0
	}
	if s.LockRetryInterval <= 0 {
		s.LockRetryInterval = 50 * time.Millisecond
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// now hora actual en la zona fiscal.
func (s Settings) now() time.Time {
	return s.Now().In(s.Location)
}

// validID los ids son UUID; cualquier otra cosa no puede existir.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
