package fiscal

import (
	"time"

	"github.com/jhoicas/Fiscal-api/internal/domain/entity"
)

// Valores por defecto de las alertas de CAI.
const (
	DefaultRestockThreshold      = 100
	DefaultExpirationHorizonDays = 30
)

// AlertConfig umbrales configurables de las alertas.
type AlertConfig struct {
	RestockThreshold      int64 // alerta cuando quedan <= este número de correlativos
	ExpirationHorizonDays int   // alerta cuando faltan <= estos días para la fecha límite
}

// DefaultAlertConfig umbrales por defecto (100 correlativos, 30 días).
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		RestockThreshold:      DefaultRestockThreshold,
		ExpirationHorizonDays: DefaultExpirationHorizonDays,
	}
}

// Alerts advertencias no fatales que acompañan una asignación o emisión exitosa.
type Alerts struct {
	AvailableCount       int64
	DaysUntilExpiration  int // negativo si ya venció
	NeedsRestockAlert    bool
	NeedsExpirationAlert bool
}

// Any informa si hay al menos una alerta activa.
func (a Alerts) Any() bool {
	return a.NeedsRestockAlert || a.NeedsExpirationAlert
}

// AlertEvaluator deriva las alertas de disponibilidad y vencimiento de un CAI. Sin efectos secundarios.
type AlertEvaluator struct {
	cfg AlertConfig
}

// NewAlertEvaluator construye el evaluador; valores no positivos toman el default.
func NewAlertEvaluator(cfg AlertConfig) *AlertEvaluator {
	if cfg.RestockThreshold <= 0 {
		cfg.RestockThreshold = DefaultRestockThreshold
	}
	if cfg.ExpirationHorizonDays <= 0 {
		cfg.ExpirationHorizonDays = DefaultExpirationHorizonDays
	}
	return &AlertEvaluator{cfg: cfg}
}

// Config devuelve los umbrales efectivos.
func (e *AlertEvaluator) Config() AlertConfig {
	return e.cfg
}

// Evaluate calcula las alertas del rango a la fecha now (en zona fiscal).
func (e *AlertEvaluator) Evaluate(r *entity.AuthorizationRange, now time.Time) Alerts {
	available := r.AvailableCount()
	days := int(entity.CivilDate(r.ExpirationDate).Sub(entity.CivilDate(now)).Hours() / 24)
	return Alerts{
		AvailableCount:       available,
		DaysUntilExpiration:  days,
		NeedsRestockAlert:    available <= e.cfg.RestockThreshold,
		NeedsExpirationAlert: days <= e.cfg.ExpirationHorizonDays,
	}
}
