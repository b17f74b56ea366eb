package entity

import "time"

// Estados de un correlativo. Nunca vuelve a available: los números no se reciclan.
const (
	CorrelativeStatusAvailable = "available"
	CorrelativeStatusUsed      = "used"
	CorrelativeStatusVoided    = "voided"
)

// Correlative es un número individual dentro de un AuthorizationRange.
// Se crean todos al autorizar el rango para que cada número quede auditado.
type Correlative struct {
	ID              string
	RangeID         string
	SequenceNumber  int64
	FormattedNumber string     // relleno con ceros al ancho del rango
	Status          string     // available, used, voided
	UsedAt          *time.Time // se fija al asignarse a una factura
	VoidedAt        *time.Time // se fija al anularse la factura
	CreatedAt       time.Time
}

// CorrelativeCounts conteo de correlativos de un rango por estado.
type CorrelativeCounts struct {
	Available int64
	Used      int64
	Voided    int64
}

// Consumed números que ya salieron del pool (usados o anulados).
func (c CorrelativeCounts) Consumed() int64 {
	return c.Used + c.Voided
}
