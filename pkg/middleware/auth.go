package middleware

import (
	"context"
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
)

type contextKey string

const (
	ContextKeyUser contextKey = "user"

	SessionCookieName = "admin-session"
)

// AuthMiddleware resolve a sessão administrativa (cookie ou Basic) e guarda as claims no contexto.
// Não rejeita a requisição; rotas protegidas usam AdminOnly.
func AuthMiddleware(authService authenticating.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims := resolveClaims(authService, r); claims != nil {
				ctx := context.WithValue(r.Context(), ContextKeyUser, claims)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resolveClaims(authService authenticating.Authenticator, r *http.Request) *domain.Claims {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if claims, err := authService.ValidateSession(cookie.Value); err == nil {
			return claims
		}
	}

	if user, password, ok := r.BasicAuth(); ok {
		if claims, err := authService.ValidateBasic(user, password); err == nil {
			return claims
		}
	}

	return nil
}

// ClaimsFromContext retorna a sessão resolvida pelo AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyUser).(*domain.Claims)
	return claims, ok && claims != nil
}
