package middleware

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/utils"
)

// ClientIPMiddleware resolve o IP do cliente uma vez por requisição.
// Cabeçalhos de encaminhamento só valem quando a conexão vem de um dos proxies confiáveis.
func ClientIPMiddleware(trustedProxies []string) func(http.Handler) http.Handler {
	trusted, err := utils.ParseTrustedProxies(trustedProxies)
	if err != nil {
		log.L.WithError(err).Warn("Entrada de TRUSTED_PROXIES ignorada")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ResolveClientIP(r, trusted)
			next.ServeHTTP(w, r.WithContext(utils.WithClientIP(r.Context(), ip)))
		})
	}
}
