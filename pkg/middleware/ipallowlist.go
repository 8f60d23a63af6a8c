package middleware

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/utils"
)

// IPAllowlist restringe o acesso aos IPs configurados. Lista vazia libera todos.
func IPAllowlist(allowedIPs []string, auditor auditing.Auditor) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedIPs))
	for _, ip := range allowedIPs {
		allowed[ip] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := utils.ClientIP(r)
			if _, ok := allowed[clientIP]; !ok {
				log.ForContext(r.Context()).WithField("client_ip", clientIP).Warn("IP bloqueado")
				metrics.WebhookEvents.WithLabelValues("calendly", "rejected").Inc()
				auditor.Record(r.Context(), auditing.Security(domain.AuditActorWebhook, "security", "Blocked IP: "+clientIP))
				apiErrors.WriteError(w, apiErrors.ErrForbiddenIP, "Acesso negado", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
