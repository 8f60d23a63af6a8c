package dashboard

import (
	"errors"
	"fmt"

	"github.com/inkchamber/dashboard-api/internal/state"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
)

var (
	ErrMissingRequiredData = errors.New("dados obrigatórios ausentes")
	ErrInvalidEvent        = errors.New("tipo de evento inválido")
	ErrInvalidField        = errors.New("campo não encontrado ou não editável")
	ErrNegativeValue       = errors.New("valor deve ser não negativo")
	ErrNotWholeNumber      = errors.New("valor deve ser um número inteiro")
	ErrValueTooHigh        = errors.New("valor acima do limite permitido")
	ErrStateUnavailable    = errors.New("estado do painel indisponível")
)

// DashboardError é um erro com o código da API e o campo envolvido
type DashboardError struct {
	Err     error
	Code    string
	Field   string
	Details any
}

func (e *DashboardError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *DashboardError) Unwrap() error {
	return e.Err
}

func NewDashboardError(baseErr error, code string, field string, details any) *DashboardError {
	return &DashboardError{
		Err:     baseErr,
		Code:    code,
		Field:   field,
		Details: details,
	}
}

// IsValidationError verifica se o erro foi causado pela entrada do chamador
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingRequiredData) ||
		errors.Is(err, ErrInvalidEvent) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrNotWholeNumber) ||
		errors.Is(err, ErrValueTooHigh)
}

// fromStateError traduz as falhas do store para códigos da API
func fromStateError(err error) *DashboardError {
	var dashErr *DashboardError
	if errors.As(err, &dashErr) {
		return dashErr
	}

	switch {
	case errors.Is(err, state.ErrLockTimeout):
		return NewDashboardError(err, apiErrors.ErrLockTimeout, "", nil)
	case state.IsPersistenceError(err):
		return NewDashboardError(err, apiErrors.ErrDatabaseOperation, "", nil)
	default:
		return NewDashboardError(err, apiErrors.ErrInternalServer, "", nil)
	}
}
