// Package validation concentra a instância compartilhada do validator
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Erros reportam o nome do campo no JSON
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldError descreve um campo rejeitado
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Struct valida v e retorna os campos rejeitados, na ordem de declaração
func Struct(v any) ([]FieldError, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return fields, nil
}

// Missing retorna apenas os campos obrigatórios ausentes
func Missing(fields []FieldError) []string {
	missing := make([]string, 0)
	for _, f := range fields {
		if f.Rule == "required" {
			missing = append(missing, f.Field)
		}
	}
	return missing
}

// Names retorna os nomes dos campos rejeitados
func Names(fields []FieldError) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}
