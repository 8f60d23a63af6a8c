package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L.WithError(err).Error("Erro ao enviar resposta")
	}
}

// readBody lê o corpo bruto respeitando o limite de tamanho
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, target)
}

// writeServiceError converte os erros tipados dos casos de uso para o payload da API
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var dashErr *dashboard.DashboardError
	if errors.As(err, &dashErr) {
		if !dashboard.IsValidationError(dashErr) {
			log.ForContext(r.Context()).WithError(dashErr.Err).Error("Erro ao processar operação do painel")
		}
		apiErrors.WriteError(w, dashErr.Code, dashErr.Error(), dashErr.Details)
		return
	}

	var quoteErr *quoting.QuoteError
	if errors.As(err, &quoteErr) {
		var details any
		if len(quoteErr.Errors) > 0 {
			details = map[string]any{"errors": quoteErr.Errors}
		}
		apiErrors.WriteError(w, quoteErr.Code, quoteErr.Err.Error(), details)
		return
	}

	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		apiErrors.WriteError(w, authErr.Code, authErr.Error(), nil)
		return
	}

	log.ForContext(r.Context()).WithError(err).Error("Erro inesperado")
	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno no servidor", nil)
}
