package handler

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
)

// GetState retorna o registro atual do painel com os campos derivados atualizados
func GetState(manager dashboard.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := manager.State(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		w.Header().Set("Cache-Control", "s-maxage=5, stale-while-revalidate")
		writeJSON(w, http.StatusOK, current)
	}
}
