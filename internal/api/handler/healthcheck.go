package handler

import (
	"net/http"
	"time"

	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
)

// HealthcheckHandler confirma que o registro do painel pode ser lido
func HealthcheckHandler(manager dashboard.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current, err := manager.State(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Warn("error responding to healthcheck")
			apiErrors.WriteError(w, apiErrors.ErrCommunication, "Estado do painel indisponível", nil)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"time":           time.Now().UTC(),
			"stateUpdatedAt": current.UpdatedAt,
		})
	})
}
