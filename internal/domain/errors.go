package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores del motor de numeración fiscal.
//
// Configuración y agotamiento nunca se reintentan: se informan al operador tal cual.
var (
	// ErrNoActiveRange no existe un CAI activo y vigente para (tenant, sucursal, tipo de documento).
	ErrNoActiveRange = errors.New("no hay rango de autorización (CAI) activo")
	// ErrRangeDepleted el CAI vigente ya consumió todos sus correlativos; hay que solicitar uno nuevo al SAR.
	ErrRangeDepleted = errors.New("rango de autorización (CAI) agotado")
	// ErrRangeOverlap el rango solicitado se traslapa con otro CAI de la misma sucursal y tipo.
	ErrRangeOverlap = errors.New("el rango se traslapa con otro CAI existente")

	// ErrInvoiceAlreadyVoided la factura ya fue anulada.
	ErrInvoiceAlreadyVoided = errors.New("la factura ya fue anulada")
	// ErrVoidNotAllowed el periodo fiscal (mes calendario) de emisión ya cerró.
	ErrVoidNotAllowed = errors.New("anulación no permitida: el periodo fiscal está cerrado")

	// ErrTransientConflict contención de bloqueos en la base de datos; es el único error que se reintenta.
	ErrTransientConflict = errors.New("conflicto transitorio de concurrencia")
)

// Errores de validación: envuelven ErrInvalidInput para que errors.Is funcione en ambos niveles.
var (
	ErrAmountMismatch    = fmt.Errorf("%w: los montos no cuadran con el total", ErrInvalidInput)
	ErrInvalidVoidReason = fmt.Errorf("%w: motivo de anulación inválido", ErrInvalidInput)
	ErrInvalidRange      = fmt.Errorf("%w: rango de autorización inválido", ErrInvalidInput)
)
