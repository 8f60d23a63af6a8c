package middleware

import (
	"fmt"
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/utils"
)

// AdminOnly permite acesso apenas com sessão administrativa válida
func AdminOnly(auditor auditing.Auditor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.User != domain.AdminUser {
				clientIP := utils.ClientIP(r)
				log.ForContext(r.Context()).WithFields(log.Fields{
					"path":      r.URL.Path,
					"client_ip": clientIP,
				}).Warn("Tentativa de acesso administrativo sem autenticação")

				auditor.Record(r.Context(), auditing.Security(domain.AuditActorAdmin, "auth",
					fmt.Sprintf("Unauthenticated %s %s from %s", r.Method, r.URL.Path, clientIP)))

				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Autenticação obrigatória", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
