// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import "time"

// DefaultValuePerBooking é o valor (CAD) atribuído a cada agendamento quando não há registro anterior
const DefaultValuePerBooking int64 = 100

// EventStateUpdate é o evento publicado a cada escrita confirmada do painel
const EventStateUpdate = "state:update"

// MaxEditableValue é o maior valor aceito em uma edição administrativa
const MaxEditableValue int64 = 1_000_000_000

// Campos do painel
const (
	FieldBookedAppointments        = "bookedAppointments"
	FieldValuePerBooking           = "valuePerBooking"
	FieldWebsiteClicks             = "websiteClicks"
	FieldEstimatedRevenueForClient = "estimatedRevenueForClient"
	FieldRevenueAutopilot          = "revenueAutopilot"
	FieldBookingRate               = "bookingRate"
)

// EditableFields são os campos primários que o administrador pode sobrescrever
var EditableFields = []string{
	FieldBookedAppointments,
	FieldValuePerBooking,
	FieldWebsiteClicks,
	FieldEstimatedRevenueForClient,
}

// DashboardState é o registro único com as métricas do painel.
// RevenueAutopilot e BookingRate são derivados e nunca definidos diretamente.
type DashboardState struct {
	BookedAppointments        int64     `json:"bookedAppointments"`
	ValuePerBooking           int64     `json:"valuePerBooking"`
	RevenueAutopilot          int64     `json:"revenueAutopilot"`
	WebsiteClicks             int64     `json:"websiteClicks"`
	EstimatedRevenueForClient int64     `json:"estimatedRevenueForClient"`
	BookingRate               float64   `json:"bookingRate"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

// DefaultState retorna o registro padrão usado na inicialização e no reset
func DefaultState(now time.Time) DashboardState {
	return DashboardState{
		ValuePerBooking: DefaultValuePerBooking,
		UpdatedAt:       now.UTC(),
	}
}

// Recompute recalcula os campos derivados a partir dos campos primários.
// Contadores negativos são ajustados para zero antes da derivação.
func Recompute(state DashboardState) DashboardState {
	if state.BookedAppointments < 0 {
		state.BookedAppointments = 0
	}
	if state.WebsiteClicks < 0 {
		state.WebsiteClicks = 0
	}

	state.RevenueAutopilot = state.BookedAppointments * state.ValuePerBooking

	state.BookingRate = 0
	if state.WebsiteClicks > 0 {
		state.BookingRate = float64(state.BookedAppointments) / float64(state.WebsiteClicks) * 100
	}

	return state
}

// IsEditableField verifica se o campo pode ser alterado pelo painel administrativo
func IsEditableField(field string) bool {
	for _, f := range EditableFields {
		if f == field {
			return true
		}
	}
	return false
}

// FieldValue retorna o valor atual de um campo primário
func (s DashboardState) FieldValue(field string) (int64, bool) {
	switch field {
	case FieldBookedAppointments:
		return s.BookedAppointments, true
	case FieldValuePerBooking:
		return s.ValuePerBooking, true
	case FieldWebsiteClicks:
		return s.WebsiteClicks, true
	case FieldEstimatedRevenueForClient:
		return s.EstimatedRevenueForClient, true
	}
	return 0, false
}

// SetField altera um campo primário; retorna false se o campo não for editável
func (s *DashboardState) SetField(field string, value int64) bool {
	switch field {
	case FieldBookedAppointments:
		s.BookedAppointments = value
	case FieldValuePerBooking:
		s.ValuePerBooking = value
	case FieldWebsiteClicks:
		s.WebsiteClicks = value
	case FieldEstimatedRevenueForClient:
		s.EstimatedRevenueForClient = value
	default:
		return false
	}
	return true
}

// Equal compara os campos de métricas, ignorando UpdatedAt
func (s DashboardState) Equal(other DashboardState) bool {
	return s.BookedAppointments == other.BookedAppointments &&
		s.ValuePerBooking == other.ValuePerBooking &&
		s.RevenueAutopilot == other.RevenueAutopilot &&
		s.WebsiteClicks == other.WebsiteClicks &&
		s.EstimatedRevenueForClient == other.EstimatedRevenueForClient &&
		s.BookingRate == other.BookingRate
}
