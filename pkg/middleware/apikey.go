package middleware

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
)

const (
	APIKeyHeader     = "X-API-Key"
	apiKeyQueryParam = "api_key"
)

// RequireAPIKey aceita a chave no cabeçalho X-API-Key ou no parâmetro api_key
func RequireAPIKey(authService authenticating.Authenticator, auditor auditing.Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				key = r.URL.Query().Get(apiKeyQueryParam)
			}

			if err := authService.ValidateAPIKey(key); err != nil {
				log.ForContext(r.Context()).WithField("path", r.URL.Path).Warn("Chave de API inválida")
				metrics.WebhookEvents.WithLabelValues("bookings", "rejected").Inc()
				auditor.Record(r.Context(), auditing.Security(domain.AuditActorWebhook, "security", "Unauthorized booking API access attempt"))
				apiErrors.WriteError(w, apiErrors.ErrInvalidAPIKey, "Chave de API inválida", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
