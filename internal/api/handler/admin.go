package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/middleware"
	"github.com/inkchamber/dashboard-api/pkg/utils"
)

const maxAuditLogLimit = 500

// Login troca a senha administrativa por um cookie de sessão assinado
func Login(authService authenticating.Authenticator, auditor auditing.Auditor, secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if err := decodeBody(w, r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		session, err := authService.Login(req.Password)
		if err != nil {
			clientIP := utils.ClientIP(r)
			log.ForContext(r.Context()).WithError(err).WithField("client_ip", clientIP).Warn("Falha no login administrativo")
			auditor.Record(r.Context(), auditing.Security(domain.AuditActorAdmin, "login", "Failed admin login attempt from "+clientIP))
			writeServiceError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			MaxAge:   int(authService.SessionTTL().Seconds()),
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteStrictMode,
		})

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"expiresAt": session.ExpiresAt,
		})
	}
}

// Logout expira o cookie de sessão
func Logout(secureCookies bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteStrictMode,
		})

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// AuthCheck não audita: o painel consulta esta rota a cada carregamento
func AuthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"authenticated": false,
				"error":         "Autenticação obrigatória",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          claims.User,
		})
	}
}

func UpdateMetric(manager dashboard.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.UpdateMetricRequest
		if err := decodeBody(w, r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de requisição inválido", nil)
			return
		}

		updated, err := manager.UpdateField(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, domain.StateMutationResponse{Success: true, State: updated})
	}
}

func ResetState(manager dashboard.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := manager.Reset(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, domain.StateMutationResponse{Success: true, State: updated})
	}
}

func RecalculateState(manager dashboard.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updated, err := manager.Recalculate(r.Context(), domain.AuditActorAdmin)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, domain.StateMutationResponse{Success: true, State: updated})
	}
}

// AuditLog lista as entradas mais recentes primeiro; ?limit=N (padrão 10)
func AuditLog(auditor auditing.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := auditing.DefaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro limit inválido", nil)
				return
			}
			if parsed < 1 || parsed > maxAuditLogLimit {
				apiErrors.WriteError(w, apiErrors.ErrValueOutOfRange, fmt.Sprintf("limit deve estar entre 1 e %d", maxAuditLogLimit), nil)
				return
			}
			limit = parsed
		}

		entries, err := auditor.Recent(r.Context(), limit)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao ler auditoria")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao ler o histórico de auditoria", nil)
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}
