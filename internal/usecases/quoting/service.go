package quoting

import (
	"context"
	"time"

	"github.com/inkchamber/dashboard-api/infrastructure/repository"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	"github.com/inkchamber/dashboard-api/pkg/utils"
	"github.com/inkchamber/dashboard-api/pkg/validation"
)

const leadIDPrefix = "LEAD"

// Mensagens exibidas pela calculadora para cada campo obrigatório
var requiredMessages = map[string]string{
	"gender":        "Gender selection is required",
	"age_band":      "Age band is required",
	"concern":       "Hair concern is required",
	"coverage_area": "Coverage area is required",
	"finish":        "Finish preference is required",
	"timing":        "Timing preference is required",
}

type leadContact struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Consent bool   `json:"consent" validate:"required"`
}

// LeadMetadata são os dados da requisição guardados com o lead
type LeadMetadata struct {
	IP        string
	UserAgent string
}

type Quoter interface {
	ValidateInputs(inputs domain.QuoteInputs) []string
	Estimate(inputs domain.QuoteInputs) (*domain.PriceEstimate, error)
	CaptureLead(ctx context.Context, submission domain.LeadSubmission, meta LeadMetadata) (*domain.LeadResponse, error)
}

type Service struct {
	leadRepo repository.LeadRepository
	notifier Notifier
	now      func() time.Time
}

func NewService(leadRepo repository.LeadRepository, notifier Notifier) Quoter {
	return &Service{
		leadRepo: leadRepo,
		notifier: notifier,
		now:      time.Now,
	}
}

// ValidateInputs retorna as mensagens de erro das respostas; vazio quando válidas
func (s *Service) ValidateInputs(inputs domain.QuoteInputs) []string {
	fields, err := validation.Struct(inputs)
	if err != nil {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Rule == "required" {
			messages = append(messages, requiredMessages[f.Field])
			continue
		}
		messages = append(messages, "Invalid value for "+f.Field)
	}
	return messages
}

func (s *Service) Estimate(inputs domain.QuoteInputs) (*domain.PriceEstimate, error) {
	if errs := s.ValidateInputs(inputs); len(errs) > 0 {
		return nil, NewQuoteError(ErrInvalidInputs, apiErrors.ErrMissingRequiredData, errs)
	}

	estimate := Calculate(inputs)
	return &estimate, nil
}

// CaptureLead grava o contato com o orçamento recalculado no servidor.
// Se as respostas estiverem incompletas, o orçamento enviado pelo cliente é mantido.
func (s *Service) CaptureLead(ctx context.Context, submission domain.LeadSubmission, meta LeadMetadata) (*domain.LeadResponse, error) {
	inputs := submission.Inputs

	fields, err := validation.Struct(leadContact{
		Name:    inputs.Name,
		Email:   inputs.Email,
		Phone:   inputs.Phone,
		Consent: inputs.Consent,
	})
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, NewQuoteError(ErrMissingContact, apiErrors.ErrMissingRequiredData, validation.Names(fields))
	}

	var estimate domain.PriceEstimate
	switch {
	case len(s.ValidateInputs(inputs)) == 0:
		estimate = Calculate(inputs)
	case submission.Estimate != nil:
		estimate = *submission.Estimate
	default:
		return nil, NewQuoteError(ErrMissingQuote, apiErrors.ErrMissingRequiredData, s.ValidateInputs(inputs))
	}

	id, err := utils.GeneratePrefixedID(leadIDPrefix)
	if err != nil {
		return nil, NewQuoteError(err, apiErrors.ErrInternalServer, nil)
	}

	timestamp := s.now().UTC()
	if submission.Timestamp != nil {
		timestamp = submission.Timestamp.UTC()
	}

	lead := domain.Lead{
		ID:        id,
		Inputs:    inputs,
		Estimate:  estimate,
		Timestamp: timestamp,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if err := s.leadRepo.Save(ctx, &lead); err != nil {
		log.ForContext(ctx).WithError(err).Error("Erro ao salvar lead")
		return nil, NewQuoteError(ErrSaveLead, apiErrors.ErrDatabaseOperation, nil)
	}

	if err := s.notifier.NotifyLead(ctx, lead); err != nil {
		// O lead já está salvo; falha de notificação não invalida a captura
		log.ForContext(ctx).WithError(err).WithField("lead_id", lead.ID).Warn("Erro ao notificar lead")
	}

	return &domain.LeadResponse{
		Success: true,
		LeadID:  lead.ID,
		Message: "Your estimate has been sent to " + inputs.Email,
	}, nil
}
