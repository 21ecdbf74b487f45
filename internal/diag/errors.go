package diag

import (
	"errors"
	"fmt"
)

// Sentinel errors for the emission layer. Callers match with errors.Is; the
// wrapping Error carries the code and the offending name.
var (
	ErrNoPrototype        = errors.New("no prototype registered")
	ErrPrototypeRedefined = errors.New("prototype already registered")
	ErrNotDeclared        = errors.New("function not declared")
	ErrNoBody             = errors.New("no body routine registered")
	ErrBodyRedefined      = errors.New("body routine already registered")
	ErrNoInsertionPoint   = errors.New("no active insertion point")
	ErrGlobalRedefined    = errors.New("global already defined")

	ErrUnknownGlobal    = errors.New("unknown global")
	ErrUnknownAggregate = errors.New("unknown aggregate type")
	ErrUnknownFunction  = errors.New("unknown function")

	ErrNotAddress        = errors.New("value is not an address")
	ErrNotAggregate      = errors.New("type is not struct or array shaped")
	ErrStoreTypeMismatch = errors.New("store type mismatch")
	ErrReturnMismatch    = errors.New("return type mismatch")
	ErrBadScalarWidth    = errors.New("unsupported scalar width")
	ErrFieldOutOfRange   = errors.New("field index out of range")
)

// Error is an emission diagnostic: a code, the entity it concerns and the
// sentinel cause.
type Error struct {
	Code   Code
	Entity string
	Err    error
}

func (e *Error) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("E%04d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("E%04d: %s: %v", e.Code, e.Entity, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error for the given entity.
func New(code Code, entity string, err error) *Error {
	return &Error{Code: code, Entity: entity, Err: err}
}
