package fiscal

import "time"

// SameFiscalPeriod informa si issuedAt y now caen en el mismo mes calendario de la zona fiscal.
// Es la ventana en la que una factura todavía puede anularse.
func SameFiscalPeriod(issuedAt, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	a, b := issuedAt.In(loc), now.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month()
}
