package domain

import (
	"errors"
	"fmt"
)

// ErrorKind clasifica los errores del ledger (validación, no encontrado, conflicto de estado, etc.).
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindStateConflict      ErrorKind = "state_conflict"
	KindInvariantViolation ErrorKind = "invariant_violation"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
)

// Errores de dominio base (uno por tipo). Los errores específicos los envuelven con %w.
var (
	ErrValidation         = errors.New("entrada inválida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrStateConflict      = errors.New("conflicto con el estado actual")
	ErrInvariantViolation = errors.New("la operación viola una invariante del stock")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUnauthorized       = errors.New("no autorizado")
)

// Errores específicos.
var (
	ErrZeroQty          = fmt.Errorf("%w: la cantidad no puede ser 0", ErrValidation)
	ErrQtyScale         = fmt.Errorf("%w: la cantidad admite como máximo 4 decimales", ErrValidation)
	ErrUserNotFound     = fmt.Errorf("%w: usuario no encontrado", ErrValidation)
	ErrInvalidDecision  = fmt.Errorf("%w: decisión de evaluación desconocida", ErrValidation)
	ErrStockNotFound    = fmt.Errorf("%w: stock no encontrado", ErrNotFound)
	ErrCircNotFound     = fmt.Errorf("%w: circulación no encontrada", ErrNotFound)
	ErrCurrencyNotFound = fmt.Errorf("%w: moneda no encontrada", ErrNotFound)

	ErrNotEditable      = fmt.Errorf("%w: la circulación ya evaluada no se puede editar", ErrStateConflict)
	ErrAlreadyEvaluated = fmt.Errorf("%w: la circulación ya fue evaluada", ErrStateConflict)
	ErrNotRevertable    = fmt.Errorf("%w: la circulación no se puede revertir", ErrStateConflict)

	ErrNegativeQty       = fmt.Errorf("%w: el stock quedaría negativo", ErrInvariantViolation)
	ErrRevertNegativeQty = fmt.Errorf("%w: la reversión dejaría el stock negativo", ErrInvariantViolation)

	ErrDelegationDenied = fmt.Errorf("%w: no puede delegar circulaciones", ErrForbidden)
	ErrEditDenied       = fmt.Errorf("%w: no puede editar esta circulación", ErrForbidden)
	ErrEvalDenied       = fmt.Errorf("%w: no puede evaluar esta circulación", ErrForbidden)
	ErrCreateDenied     = fmt.Errorf("%w: no puede crear circulaciones", ErrForbidden)
)

// KindOf devuelve el tipo de un error del ledger; KindInternal si no es de dominio.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStateConflict):
		return KindStateConflict
	case errors.Is(err, ErrInvariantViolation):
		return KindInvariantViolation
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return KindForbidden
	default:
		return KindInternal
	}
}
