package fiscal

import (
	"fmt"
	"unicode"

	"github.com/jhoicas/Fiscal-api/internal/domain"
)

// rtnLength dígitos del Registro Tributario Nacional (RTN).
const rtnLength = 14

// NormalizeRTN deja el RTN solo con dígitos. Acepta "0801-1999-000123", "0801 1999 000123" o "08011999000123".
// Vacío es válido (consumidor final).
func NormalizeRTN(taxID string) (string, error) {
	if taxID == "" {
		return "", nil
	}
	digits := make([]byte, 0, rtnLength)
	for _, r := range taxID {
		switch {
		case unicode.IsDigit(r) && r < unicode.MaxASCII:
			digits = append(digits, byte(r))
		case r == '-' || r == ' ':
		default:
			return "", fmt.Errorf("%w: RTN con caracter inválido %q", domain.ErrInvalidInput, r)
		}
	}
	if len(digits) != rtnLength {
		return "", fmt.Errorf("%w: RTN debe tener %d dígitos, se encontraron %d", domain.ErrInvalidInput, rtnLength, len(digits))
	}
	return string(digits), nil
}
