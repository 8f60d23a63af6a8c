package handler

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/utils"
)

func EstimateQuote(quoter quoting.Quoter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var inputs domain.QuoteInputs
		if err := decodeBody(w, r, &inputs); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de requisição inválido", nil)
			return
		}

		estimate, err := quoter.Estimate(inputs)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, estimate)
	}
}

func CaptureLead(quoter quoting.Quoter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var submission domain.LeadSubmission
		if err := decodeBody(w, r, &submission); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de requisição inválido", nil)
			return
		}

		response, err := quoter.CaptureLead(r.Context(), submission, quoting.LeadMetadata{
			IP:        utils.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, response)
	}
}
