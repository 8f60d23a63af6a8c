package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
)

func CreateBooking(manager dashboard.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data domain.BookingData
		if err := decodeBody(w, r, &data); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de requisição inválido", nil)
			return
		}

		response, err := manager.RecordBooking(r.Context(), data)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, response)
	}
}

// BookingAPIInfo documenta o contrato de POST /v1/bookings. Com ?test=true retorna um exemplo.
func BookingAPIInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("test") == "true" {
			now := time.Now().UTC()
			example := domain.BookingData{
				Event:           domain.BookingEventCreated,
				BookingID:       fmt.Sprintf("test-%d", now.UnixMilli()),
				ClientName:      "Test Client",
				ClientEmail:     "test@example.com",
				AppointmentDate: now.Format(time.DateOnly),
				AppointmentTime: "10:00",
				ServiceType:     "Consultation",
				Notes:           "Test booking via API",
			}

			writeJSON(w, http.StatusOK, map[string]any{
				"message": "Test booking data structure",
				"example": example,
				"usage": map[string]any{
					"method":  http.MethodPost,
					"headers": map[string]string{"Content-Type": "application/json", "X-API-Key": "<api key>"},
					"body":    example,
				},
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Ink Chamber Dashboard Booking API",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"POST /v1/bookings":          "Create or cancel a booking",
				"GET /v1/bookings?test=true": "Get test data structure",
			},
			"authentication": map[string]string{
				"method": "API Key",
				"header": "X-API-Key",
				"query":  "api_key",
			},
			"schema": map[string]string{
				"event":           "booking_created | booking_canceled",
				"bookingId":       "string (required)",
				"clientName":      "string (required)",
				"clientEmail":     "string (required)",
				"appointmentDate": "string (required)",
				"appointmentTime": "string (required)",
				"serviceType":     "string (optional)",
				"value":           "number (optional)",
				"notes":           "string (optional)",
			},
		})
	}
}
