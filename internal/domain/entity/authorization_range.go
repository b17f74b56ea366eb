package entity

import "time"

// Tipos de documento fiscal que el SAR autoriza con un CAI propio.
const (
	DocumentTypeInvoice       = "FACTURA"
	DocumentTypeCreditNote    = "NOTA_CREDITO"
	DocumentTypeDebitNote     = "NOTA_DEBITO"
	DocumentTypeReceipt       = "RECIBO"
	DocumentTypeExportInvoice = "FACTURA_EXPORTACION"
)

// Estados de un rango de autorización. Solo active, depleted y canceled se persisten;
// expired se deriva de la fecha límite de emisión (ver EffectiveStatus).
const (
	RangeStatusActive   = "active"
	RangeStatusExpired  = "expired"
	RangeStatusDepleted = "depleted"
	RangeStatusCanceled = "canceled"
)

// ValidDocumentType informa si t es uno de los tipos de documento soportados.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeCreditNote, DocumentTypeDebitNote,
		DocumentTypeReceipt, DocumentTypeExportInvoice:
		return true
	}
	return false
}

// AuthorizationRange representa un CAI (Código de Autorización de Impresión):
// bloque de números correlativos otorgado por la autoridad tributaria a una sucursal
// para un tipo de documento, válido hasta ExpirationDate.
// Solo debe existir uno activo por (tenant, sucursal, tipo de documento).
type AuthorizationRange struct {
	ID                string
	TenantID          string
	BranchID          string
	DocumentType      string    // ver constantes DocumentType*
	CAICode           string    // código CAI impreso en el documento
	Prefix            string    // establecimiento-punto de emisión-tipo (ej: "000-001-01-")
	RangeStart        string    // límite inferior inclusivo, numérico de ancho fijo (ej: "00000001")
	RangeEnd          string    // límite superior inclusivo, mismo ancho que RangeStart
	TotalCount        int64     // RangeEnd - RangeStart + 1
	UsedCount         int64     // correlativos consumidos (usados + anulados)
	AuthorizationDate time.Time // fecha de autorización (desempate cuando hay más de un activo)
	ExpirationDate    time.Time // fecha límite de emisión (inclusiva)
	Status            string    // estado persistido: active, depleted o canceled
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AvailableCount correlativos aún disponibles.
func (r *AuthorizationRange) AvailableCount() int64 {
	if r.UsedCount >= r.TotalCount {
		return 0
	}
	return r.TotalCount - r.UsedCount
}

// IsDepleted informa si ya se consumieron todos los correlativos.
func (r *AuthorizationRange) IsDepleted() bool {
	return r.UsedCount >= r.TotalCount
}

// IsExpiredOn informa si la fecha civil de now es posterior a la fecha límite de emisión.
// now debe venir ya en la zona horaria fiscal.
func (r *AuthorizationRange) IsExpiredOn(now time.Time) bool {
	return CivilDate(now).After(CivilDate(r.ExpirationDate))
}

// EffectiveStatus devuelve el estado vigente: canceled tiene prioridad, luego expired
// (la fecha límite vence aunque queden números) y luego depleted.
func (r *AuthorizationRange) EffectiveStatus(now time.Time) string {
	switch {
	case r.Status == RangeStatusCanceled:
		return RangeStatusCanceled
	case r.IsExpiredOn(now):
		return RangeStatusExpired
	case r.IsDepleted():
		return RangeStatusDepleted
	}
	return RangeStatusActive
}

// CivilDate normaliza t a medianoche UTC conservando su año, mes y día locales.
// Permite comparar fechas de la DB (DATE en UTC) con "hoy" en la zona fiscal.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
