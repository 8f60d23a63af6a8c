package authenticating

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrLoginDisabled      = errors.New("login administrativo desabilitado")
	ErrInvalidToken       = errors.New("sessão inválida")
	ErrExpiredToken       = errors.New("sessão expirada")
	ErrMissingCredentials = errors.New("autenticação obrigatória")
	ErrInvalidAPIKey      = errors.New("chave de API inválida")
)

// AuthError é um erro com contexto adicional para autenticação
type AuthError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	Details string // Detalhes adicionais
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsCredentialsError verifica se o erro está relacionado a credenciais inválidas
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrLoginDisabled) ||
		errors.Is(err, ErrMissingCredentials)
}

// IsSessionError verifica se o erro está relacionado à sessão administrativa
func IsSessionError(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken)
}

func NewAuthError(baseErr error, code string, details string) *AuthError {
	return &AuthError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}
