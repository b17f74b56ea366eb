// Package fiscal contiene las reglas puras del motor de numeración fiscal:
// formato de correlativos, conciliación de montos, periodo fiscal y alertas de CAI.
// No depende de infraestructura; todo se prueba sin base de datos.
package fiscal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jhoicas/Fiscal-api/internal/domain"
)

// maxWidth dígitos que caben en un int64 sin desbordar.
const maxWidth = 18

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Bounds límites numéricos de un rango autorizado y el ancho fijo de su formato.
type Bounds struct {
	First int64
	Last  int64
	Width int
}

// ParseRangeBounds valida range_start/range_end: solo dígitos, mismo ancho, inicio <= fin.
// Rangos con letras o separadores se rechazan en lugar de extraer los dígitos a la fuerza.
func ParseRangeBounds(start, end string) (Bounds, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if !digitsOnly.MatchString(start) || !digitsOnly.MatchString(end) {
		return Bounds{}, fmt.Errorf("%w: los límites deben ser numéricos", domain.ErrInvalidRange)
	}
	if len(start) != len(end) {
		return Bounds{}, fmt.Errorf("%w: inicio y fin deben tener el mismo ancho (%d vs %d)", domain.ErrInvalidRange, len(start), len(end))
	}
	if len(start) > maxWidth {
		return Bounds{}, fmt.Errorf("%w: ancho máximo %d dígitos", domain.ErrInvalidRange, maxWidth)
	}
	first, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", domain.ErrInvalidRange, err)
	}
	last, err := strconv.ParseInt(end, 10, 64)
	if err != nil {
		return Bounds{}, fmt.Errorf("%w: %v", domain.ErrInvalidRange, err)
	}
	if first > last {
		return Bounds{}, fmt.Errorf("%w: el inicio %s es mayor que el fin %s", domain.ErrInvalidRange, start, end)
	}
	return Bounds{First: first, Last: last, Width: len(start)}, nil
}

// Total cantidad de números del rango (inclusivo).
func (b Bounds) Total() int64 {
	return b.Last - b.First + 1
}

// Format devuelve n relleno con ceros al ancho del rango.
func (b Bounds) Format(n int64) string {
	return FormatNumber(n, b.Width)
}

// Contains informa si n pertenece al rango.
func (b Bounds) Contains(n int64) bool {
	return n >= b.First && n <= b.Last
}

// Overlaps informa si ambos rangos comparten al menos un número.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.First <= o.Last && o.First <= b.Last
}

// FormatNumber rellena n con ceros a la izquierda hasta width dígitos.
func FormatNumber(n int64, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}
