package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for state preconditions and lookups. User-facing
// messages stay in Portuguese to match the panel UI.
var (
	ErrDriverNotFound         = errors.New("motorista não encontrado")
	ErrCallNotFound           = errors.New("chamada não encontrada")
	ErrDriverOffline          = errors.New("motorista está offline e não pode receber chamadas")
	ErrDriverAlreadyCalled    = errors.New("motorista já possui uma chamada ativa no painel")
	ErrDriverHasFinalizedCall = errors.New("motorista possui uma chamada finalizada pendente; reabra ou remova antes de chamar novamente")
	ErrInvalidCredentials     = errors.New("senha de acesso inválida")
)

// ValidationError carries per-field validation failures. The operation
// that raised it performed no mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "dados inválidos: " + strings.Join(parts, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// IsValidationError reports whether err is a field validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStatePreconditionError reports whether err is one of the call
// lifecycle preconditions (offline driver, duplicate call, pending
// finalized record).
func IsStatePreconditionError(err error) bool {
	return errors.Is(err, ErrDriverOffline) ||
		errors.Is(err, ErrDriverAlreadyCalled) ||
		errors.Is(err, ErrDriverHasFinalizedCall)
}
