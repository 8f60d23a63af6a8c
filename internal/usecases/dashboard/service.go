package dashboard

import (
	"context"
	"fmt"
	"math"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/internal/state"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/validation"
)

const (
	sourceBookings = "bookings"
	sourceCalendly = "calendly"

	auditFieldAll            = "all"
	auditFieldUnhandledEvent = "unhandledEvent"
)

// StateStore é o subconjunto do store exclusivo usado pelas operações do painel
type StateStore interface {
	Read(ctx context.Context) (domain.DashboardState, error)
	Update(ctx context.Context, mutate state.Mutator) (before, after domain.DashboardState, err error)
	DefaultState() domain.DashboardState
}

type Manager interface {
	State(ctx context.Context) (domain.DashboardState, error)
	RecordBooking(ctx context.Context, data domain.BookingData) (*domain.BookingResponse, error)
	HandleCalendlyEvent(ctx context.Context, event domain.CalendlyWebhook) (*domain.WebhookResult, error)
	UpdateField(ctx context.Context, request domain.UpdateMetricRequest) (domain.DashboardState, error)
	Reset(ctx context.Context) (domain.DashboardState, error)
	Recalculate(ctx context.Context, actor domain.AuditActor) (domain.DashboardState, error)
}

type Service struct {
	store   StateStore
	auditor auditing.Auditor
}

func NewService(store StateStore, auditor auditing.Auditor) Manager {
	return &Service{
		store:   store,
		auditor: auditor,
	}
}

func (s *Service) State(ctx context.Context) (domain.DashboardState, error) {
	current, err := s.store.Read(ctx)
	if err != nil {
		return current, fromStateError(err)
	}
	return current, nil
}

func (s *Service) RecordBooking(ctx context.Context, data domain.BookingData) (*domain.BookingResponse, error) {
	fields, err := validation.Struct(data)
	if err != nil {
		return nil, err
	}

	if missing := validation.Missing(fields); len(missing) > 0 {
		metrics.WebhookEvents.WithLabelValues(sourceBookings, "rejected").Inc()
		s.auditor.Record(ctx, auditing.Validation(domain.AuditActorAPI, "validation", nil, "Failed to validate booking data structure"))
		return nil, NewDashboardError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "", map[string]any{"missing": missing})
	}

	mutate, action, ok := bookingMutation(data.Event)
	if !ok {
		metrics.WebhookEvents.WithLabelValues(sourceBookings, "rejected").Inc()
		s.auditor.Record(ctx, auditing.Validation(domain.AuditActorAPI, "event", data.Event, "Invalid booking event type"))
		return nil, NewDashboardError(ErrInvalidEvent, apiErrors.ErrInvalidRequest, "event", map[string]any{
			"allowed": []string{domain.BookingEventCreated, domain.BookingEventCanceled},
		})
	}

	before, after, err := s.store.Update(ctx, mutate)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(sourceBookings, "error").Inc()
		s.auditor.Record(ctx, auditing.Failure(domain.AuditActorAPI, domain.FieldBookedAppointments, err))
		return nil, fromStateError(err)
	}

	entry := auditing.Change(domain.AuditActorAPI, action, domain.FieldBookedAppointments, before.BookedAppointments, after.BookedAppointments)
	entry.Details = fmt.Sprintf("%s: %s (%s) - %s %s", data.Event, data.ClientName, data.ClientEmail, data.AppointmentDate, data.AppointmentTime)
	s.auditor.Record(ctx, entry)

	metrics.WebhookEvents.WithLabelValues(sourceBookings, "applied").Inc()
	log.ForContext(ctx).WithFields(log.Fields{
		"booking_id": data.BookingID,
		"event":      data.Event,
		"booked":     after.BookedAppointments,
	}).Info("Agendamento processado")

	return &domain.BookingResponse{
		Success:    true,
		Message:    fmt.Sprintf("Booking %s processed successfully", data.Event),
		BookingID:  data.BookingID,
		ClientName: data.ClientName,
		UpdatedState: domain.BookingStateSummary{
			BookedAppointments: after.BookedAppointments,
			RevenueAutopilot:   after.RevenueAutopilot,
			BookingRate:        after.BookingRate,
		},
	}, nil
}

func bookingMutation(event string) (state.Mutator, domain.AuditAction, bool) {
	switch event {
	case domain.BookingEventCreated:
		return state.AddBooked(1), domain.AuditActionIncrement, true
	case domain.BookingEventCanceled:
		return state.RemoveBooked(1), domain.AuditActionDecrement, true
	}
	return nil, "", false
}

// HandleCalendlyEvent aplica um evento já autenticado do Calendly.
// Eventos desconhecidos são confirmados sem alterar o registro.
func (s *Service) HandleCalendlyEvent(ctx context.Context, event domain.CalendlyWebhook) (*domain.WebhookResult, error) {
	var (
		mutate state.Mutator
		action domain.AuditAction
	)

	switch event.Event {
	case domain.CalendlyEventInviteeCreated:
		mutate, action = state.AddBooked(1), domain.AuditActionIncrement
	case domain.CalendlyEventInviteeCanceled:
		mutate, action = state.RemoveBooked(1), domain.AuditActionDecrement
	default:
		metrics.WebhookEvents.WithLabelValues(sourceCalendly, "ignored").Inc()
		log.ForContext(ctx).WithField("event", event.Event).Info("Evento do Calendly não tratado")
		s.auditor.Record(ctx, domain.AuditEntry{
			Actor:    domain.AuditActorWebhook,
			Action:   domain.AuditActionUpdate,
			Field:    auditFieldUnhandledEvent,
			OldValue: event.Event,
			NewValue: nil,
		})
		return &domain.WebhookResult{
			Received: true,
			Message:  fmt.Sprintf("Unhandled event type: %s", event.Event),
		}, nil
	}

	before, after, err := s.store.Update(ctx, mutate)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(sourceCalendly, "error").Inc()
		s.auditor.Record(ctx, auditing.Failure(domain.AuditActorWebhook, domain.FieldBookedAppointments, err))
		return nil, fromStateError(err)
	}

	s.auditor.Record(ctx, auditing.Change(domain.AuditActorWebhook, action, domain.FieldBookedAppointments, before.BookedAppointments, after.BookedAppointments))
	metrics.WebhookEvents.WithLabelValues(sourceCalendly, "applied").Inc()

	return &domain.WebhookResult{Received: true, State: &after}, nil
}

// UpdateField sobrescreve um campo primário com um inteiro entre 0 e MaxEditableValue
func (s *Service) UpdateField(ctx context.Context, request domain.UpdateMetricRequest) (domain.DashboardState, error) {
	value, err := s.validateUpdate(ctx, request)
	if err != nil {
		return domain.DashboardState{}, err
	}

	before, after, err := s.store.Update(ctx, func(current *domain.DashboardState) error {
		current.SetField(request.Field, value)
		return nil
	})
	if err != nil {
		s.auditor.Record(ctx, auditing.Failure(domain.AuditActorAdmin, request.Field, err))
		return after, fromStateError(err)
	}

	oldValue, _ := before.FieldValue(request.Field)
	s.auditor.Record(ctx, auditing.Change(domain.AuditActorAdmin, domain.AuditActionUpdate, request.Field, oldValue, value))

	return after, nil
}

func (s *Service) validateUpdate(ctx context.Context, request domain.UpdateMetricRequest) (int64, error) {
	if request.Field == "" || request.Value == nil {
		return 0, NewDashboardError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, request.Field, "Missing field or value")
	}

	raw := *request.Value

	var validationErr *DashboardError
	switch {
	case !domain.IsEditableField(request.Field):
		validationErr = NewDashboardError(ErrInvalidField, apiErrors.ErrInvalidField, request.Field, map[string]any{"editable": domain.EditableFields})
	case math.IsNaN(raw) || math.IsInf(raw, 0) || raw != math.Trunc(raw):
		validationErr = NewDashboardError(ErrNotWholeNumber, apiErrors.ErrInvalidFormat, request.Field, nil)
	case raw < 0:
		validationErr = NewDashboardError(ErrNegativeValue, apiErrors.ErrValueOutOfRange, request.Field, nil)
	case raw > float64(domain.MaxEditableValue):
		validationErr = NewDashboardError(ErrValueTooHigh, apiErrors.ErrValueOutOfRange, request.Field, map[string]any{"max": domain.MaxEditableValue})
	}

	if validationErr != nil {
		s.auditor.Record(ctx, auditing.Validation(domain.AuditActorAdmin, request.Field, raw, validationErr.Err.Error()))
		return 0, validationErr
	}

	return int64(raw), nil
}

// Reset sobrescreve o registro com o padrão, registrando os valores anteriores
func (s *Service) Reset(ctx context.Context) (domain.DashboardState, error) {
	before, after, err := s.store.Update(ctx, func(current *domain.DashboardState) error {
		*current = s.store.DefaultState()
		return nil
	})
	if err != nil {
		s.auditor.Record(ctx, auditing.Failure(domain.AuditActorAdmin, auditFieldAll, err))
		return after, fromStateError(err)
	}

	s.auditor.Record(ctx, domain.AuditEntry{
		Actor:    domain.AuditActorAdmin,
		Action:   domain.AuditActionReset,
		Field:    auditFieldAll,
		OldValue: summarize(before),
		NewValue: summarize(after),
		Details:  "Dashboard state reset to default values.",
	})

	log.ForContext(ctx).Warn("Painel redefinido para os valores padrão")
	return after, nil
}

// Recalculate regrava o registro atual, derivando novamente os campos calculados
func (s *Service) Recalculate(ctx context.Context, actor domain.AuditActor) (domain.DashboardState, error) {
	before, after, err := s.store.Update(ctx, func(*domain.DashboardState) error {
		return nil
	})
	if err != nil {
		s.auditor.Record(ctx, auditing.Failure(actor, auditFieldAll, err))
		return after, fromStateError(err)
	}

	if actor != domain.AuditActorSystem || !before.Equal(after) {
		s.auditor.Record(ctx, domain.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditActionRecalculate,
			Field:    auditFieldAll,
			OldValue: derivedSummary(before),
			NewValue: derivedSummary(after),
		})
	}

	return after, nil
}

func summarize(s domain.DashboardState) string {
	return fmt.Sprintf("Booked: %d, Clicks: %d, Est. Revenue: %d", s.BookedAppointments, s.WebsiteClicks, s.EstimatedRevenueForClient)
}

func derivedSummary(s domain.DashboardState) string {
	return fmt.Sprintf("Revenue: %d, Booking rate: %.2f", s.RevenueAutopilot, s.BookingRate)
}
