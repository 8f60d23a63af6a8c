package domain

// Eventos aceitos pela API de agendamentos
const (
	BookingEventCreated  = "booking_created"
	BookingEventCanceled = "booking_canceled"
)

// Eventos do webhook do Calendly
const (
	CalendlyEventInviteeCreated  = "invitee.created"
	CalendlyEventInviteeCanceled = "invitee.canceled"
)

// BookingData é o payload recebido em POST /v1/bookings
type BookingData struct {
	Event           string  `json:"event" validate:"required"`
	BookingID       string  `json:"bookingId" validate:"required"`
	ClientName      string  `json:"clientName" validate:"required"`
	ClientEmail     string  `json:"clientEmail" validate:"required"`
	AppointmentDate string  `json:"appointmentDate" validate:"required"`
	AppointmentTime string  `json:"appointmentTime" validate:"required"`
	ServiceType     string  `json:"serviceType,omitempty"`
	Value           float64 `json:"value,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type BookingResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	BookingID    string              `json:"bookingId"`
	ClientName   string              `json:"clientName"`
	UpdatedState BookingStateSummary `json:"updatedState"`
}

type BookingStateSummary struct {
	BookedAppointments int64   `json:"bookedAppointments"`
	RevenueAutopilot   int64   `json:"revenueAutopilot"`
	BookingRate        float64 `json:"bookingRate"`
}

// CalendlyWebhook é o envelope mínimo do webhook do Calendly
type CalendlyWebhook struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// WebhookResult descreve o resultado do processamento de um evento externo
type WebhookResult struct {
	Received bool            `json:"received"`
	Message  string          `json:"message,omitempty"`
	State    *DashboardState `json:"-"`
}
