package handler

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/webhook"
)

// CalendlyWebhook valida a assinatura sobre o corpo bruto antes de qualquer acesso ao estado
func CalendlyWebhook(manager dashboard.Manager, auditor auditing.Auditor, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		rawBody, err := readBody(w, r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Não foi possível ler o corpo da requisição", nil)
			return
		}

		if !webhook.VerifySignature(rawBody, r.Header.Get(webhook.SignatureHeader), secret) {
			logger.Warn("Assinatura do Calendly inválida")
			metrics.WebhookEvents.WithLabelValues("calendly", "rejected").Inc()
			auditor.Record(r.Context(), auditing.Security(domain.AuditActorWebhook, "security", "Invalid Calendly signature"))
			apiErrors.WriteError(w, apiErrors.ErrInvalidSignature, "Assinatura inválida", nil)
			return
		}

		var event domain.CalendlyWebhook
		if err := json.Unmarshal(rawBody, &event); err != nil {
			logger.WithError(err).Warn("Payload do Calendly inválido")
			metrics.WebhookEvents.WithLabelValues("calendly", "error").Inc()
			auditor.Record(r.Context(), auditing.Failure(domain.AuditActorWebhook, "error", err))
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Payload do webhook inválido", nil)
			return
		}

		result, err := manager.HandleCalendlyEvent(r.Context(), event)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
