package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Cada uno identifica un tipo de rechazo; los handlers HTTP los traducen a código y status.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrUsernameTaken      = errors.New("el usuario ya está registrado")
	ErrValidation         = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrPositionNotFound   = errors.New("posición de stock inexistente")
	ErrShiftRequired      = errors.New("se requiere un turno abierto en la tienda")
	ErrAlreadyCheckedOut  = errors.New("la factura ya fue cobrada o no está en espera")
	ErrOverReturn         = errors.New("la devolución supera la cantidad devolvible")
	ErrApprovalRequired   = errors.New("el reembolso requiere aprobación de un gerente")
	ErrReferenceConflict  = errors.New("la referencia ya pertenece a otra orden")
	ErrNotReceivable      = errors.New("el documento no admite recepción en su estado actual")
	ErrNotDispatchable    = errors.New("el traslado no admite despacho en su estado actual")
	ErrNotCancellable     = errors.New("el documento no admite cancelación en su estado actual")
)

// LineError envuelve un error de dominio con la línea y la variante que lo provocaron.
// Line es el índice (base 0) de la línea en la solicitud; -1 si no aplica.
type LineError struct {
	Kind      error
	Line      int
	VariantID string
	Detail    string
}

func (e *LineError) Error() string {
	msg := e.Kind.Error()
	if e.Line >= 0 {
		msg = fmt.Sprintf("%s (línea %d", msg, e.Line)
		if e.VariantID != "" {
			msg += ", variante " + e.VariantID
		}
		msg += ")"
	} else if e.VariantID != "" {
		msg = fmt.Sprintf("%s (variante %s)", msg, e.VariantID)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap permite errors.Is(err, domain.ErrInsufficientStock) sobre un LineError.
func (e *LineError) Unwrap() error { return e.Kind }

// NewLineError construye un LineError.
func NewLineError(kind error, line int, variantID, detail string) *LineError {
	return &LineError{Kind: kind, Line: line, VariantID: variantID, Detail: detail}
}

// Invalid devuelve un ErrValidation con detalle, sin línea asociada.
func Invalid(detail string) error {
	return &LineError{Kind: ErrValidation, Line: -1, Detail: detail}
}

// InvalidLine devuelve un ErrValidation asociado a una línea.
func InvalidLine(line int, variantID, detail string) error {
	return &LineError{Kind: ErrValidation, Line: line, VariantID: variantID, Detail: detail}
}

// AtLine adjunta el índice de línea a un LineError existente (p. ej. devuelto por el ledger).
// Si err no es un LineError se envuelve tal cual.
func AtLine(err error, line int) error {
	if err == nil {
		return nil
	}
	var le *LineError
	if errors.As(err, &le) {
		cp := *le
		cp.Line = line
		return &cp
	}
	return err
}
