package handler

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/scheduler"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/julienschmidt/httprouter"
)

const (
	CronJobTypeStateRecalculate = "state-recalculate"
	CronJobTypeAll              = "all"
)

// CronJobServices contém os jobs que podem ser executados manualmente
type CronJobServices struct {
	StateRecalculateService *scheduler.StateRecalculateService
}

// RunCronJob executa manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		var started bool
		switch cronType {
		case CronJobTypeStateRecalculate, CronJobTypeAll:
			if services.StateRecalculateService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de recálculo do painel não disponível", nil)
				return
			}
			started = services.StateRecalculateService.TriggerManualSync()
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: state-recalculate, all", nil)
			return
		}

		log.ForContext(r.Context()).WithFields(log.Fields{
			"type":    cronType,
			"started": started,
		}).Info("Execução manual de cron job solicitada")

		message := "Cron job iniciada com sucesso"
		if !started {
			message = "Cron job já está em execução"
		}

		writeJSON(w, http.StatusAccepted, map[string]any{
			"message": message,
			"type":    cronType,
			"started": started,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		if services.StateRecalculateService != nil {
			status[CronJobTypeStateRecalculate] = services.StateRecalculateService.GetStatus()
		}

		writeJSON(w, http.StatusOK, status)
	}
}
