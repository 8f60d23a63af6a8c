package quoting

import (
	"errors"
	"strings"
)

var (
	ErrInvalidInputs  = errors.New("respostas do orçamento inválidas")
	ErrMissingContact = errors.New("dados de contato obrigatórios ausentes")
	ErrMissingQuote   = errors.New("orçamento ausente")
	ErrSaveLead       = errors.New("erro ao salvar lead")
)

// QuoteError é um erro com o código da API e as mensagens por campo
type QuoteError struct {
	Err    error
	Code   string
	Errors []string
}

func (e *QuoteError) Error() string {
	if len(e.Errors) > 0 {
		return e.Err.Error() + ": " + strings.Join(e.Errors, "; ")
	}
	return e.Err.Error()
}

func (e *QuoteError) Unwrap() error {
	return e.Err
}

func NewQuoteError(baseErr error, code string, errs []string) *QuoteError {
	return &QuoteError{
		Err:    baseErr,
		Code:   code,
		Errors: errs,
	}
}
