package quoting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	repomocks "github.com/inkchamber/dashboard-api/infrastructure/repository/mocks"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting/mocks"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func contactInputs() domain.QuoteInputs {
	in := baseInputs()
	in.Name = "Sam"
	in.Email = "sam@example.com"
	in.Phone = "+1 604 555 0100"
	in.Consent = true
	return in
}

func TestService_ValidateInputs(t *testing.T) {
	service := NewService(nil, nil)

	assert.Empty(t, service.ValidateInputs(baseInputs()))

	errs := service.ValidateInputs(domain.QuoteInputs{Gender: "male", AgeBand: "35-44"})
	assert.Equal(t, []string{
		"Hair concern is required",
		"Coverage area is required",
		"Finish preference is required",
		"Timing preference is required",
	}, errs)

	invalid := baseInputs()
	invalid.CoverageArea = "eyebrows"
	assert.Equal(t, []string{"Invalid value for coverage_area"}, service.ValidateInputs(invalid))

	optional := baseInputs()
	optional.Norwood = ""
	optional.Finish = "density_only"
	assert.Empty(t, service.ValidateInputs(optional))
}

func TestService_Estimate(t *testing.T) {
	service := NewService(nil, nil)

	estimate, err := service.Estimate(baseInputs())
	require.NoError(t, err)
	assert.Equal(t, int64(1200), estimate.Mid)

	_, err = service.Estimate(domain.QuoteInputs{})
	var quoteErr *QuoteError
	require.ErrorAs(t, err, &quoteErr)
	assert.Equal(t, apiErrors.ErrMissingRequiredData, quoteErr.Code)
	assert.Len(t, quoteErr.Errors, 6)
}

func TestService_CaptureLead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repomocks.NewMockLeadRepository(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	fixed := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	service := &Service{
		leadRepo: mockRepo,
		notifier: mockNotifier,
		now:      func() time.Time { return fixed },
	}

	clientEstimate := &domain.PriceEstimate{Low: 1, High: 2, Mid: 1, Currency: "CAD"}

	tests := []struct {
		name       string
		submission domain.LeadSubmission
		setup      func()
		validate   func(t *testing.T, resp *domain.LeadResponse, err error)
	}{
		{
			name:       "Lead completo com orçamento recalculado",
			submission: domain.LeadSubmission{Inputs: contactInputs(), Estimate: clientEstimate},
			setup: func() {
				mockRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, lead *domain.Lead) error {
						assert.True(t, strings.HasPrefix(lead.ID, "LEAD-"))
						assert.Len(t, lead.ID, len("LEAD-")+10)
						assert.Equal(t, int64(1200), lead.Estimate.Mid)
						assert.Equal(t, fixed, lead.Timestamp)
						assert.Equal(t, "203.0.113.9", lead.IP)
						assert.Equal(t, "jest", lead.UserAgent)
						return nil
					})
				mockNotifier.EXPECT().NotifyLead(gomock.Any(), gomock.Any()).Return(nil)
			},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				require.NoError(t, err)
				assert.True(t, resp.Success)
				assert.Equal(t, "Your estimate has been sent to sam@example.com", resp.Message)
			},
		},
		{
			name: "Respostas incompletas mantêm o orçamento do cliente",
			submission: domain.LeadSubmission{
				Inputs:   domain.QuoteInputs{Name: "Sam", Email: "sam@example.com", Phone: "1", Consent: true},
				Estimate: clientEstimate,
			},
			setup: func() {
				mockRepo.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, lead *domain.Lead) error {
						assert.Equal(t, *clientEstimate, lead.Estimate)
						return nil
					})
				mockNotifier.EXPECT().NotifyLead(gomock.Any(), gomock.Any()).Return(nil)
			},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				require.NoError(t, err)
				assert.True(t, resp.Success)
			},
		},
		{
			name:       "Sem consentimento",
			submission: domain.LeadSubmission{Inputs: func() domain.QuoteInputs { in := contactInputs(); in.Consent = false; return in }()},
			setup:      func() {},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				assert.Nil(t, resp)
				var quoteErr *QuoteError
				require.ErrorAs(t, err, &quoteErr)
				assert.ErrorIs(t, err, ErrMissingContact)
				assert.Equal(t, []string{"consent"}, quoteErr.Errors)
			},
		},
		{
			name:       "Email inválido",
			submission: domain.LeadSubmission{Inputs: func() domain.QuoteInputs { in := contactInputs(); in.Email = "sam"; return in }()},
			setup:      func() {},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				var quoteErr *QuoteError
				require.ErrorAs(t, err, &quoteErr)
				assert.Equal(t, []string{"email"}, quoteErr.Errors)
			},
		},
		{
			name:       "Sem respostas nem orçamento",
			submission: domain.LeadSubmission{Inputs: domain.QuoteInputs{Name: "Sam", Email: "sam@example.com", Phone: "1", Consent: true}},
			setup:      func() {},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				assert.ErrorIs(t, err, ErrMissingQuote)
			},
		},
		{
			name:       "Falha ao salvar",
			submission: domain.LeadSubmission{Inputs: contactInputs()},
			setup: func() {
				mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disco cheio"))
			},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				var quoteErr *QuoteError
				require.ErrorAs(t, err, &quoteErr)
				assert.Equal(t, apiErrors.ErrDatabaseOperation, quoteErr.Code)
			},
		},
		{
			name:       "Falha de notificação não invalida o lead",
			submission: domain.LeadSubmission{Inputs: contactInputs()},
			setup: func() {
				mockRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				mockNotifier.EXPECT().NotifyLead(gomock.Any(), gomock.Any()).Return(errors.New("smtp fora do ar"))
			},
			validate: func(t *testing.T, resp *domain.LeadResponse, err error) {
				require.NoError(t, err)
				assert.True(t, resp.Success)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			resp, err := service.CaptureLead(context.Background(), tt.submission, LeadMetadata{IP: "203.0.113.9", UserAgent: "jest"})
			tt.validate(t, resp, err)
		})
	}
}

func TestEstimateRange(t *testing.T) {
	assert.Equal(t, "CAD $1020 - $1380", EstimateRange(domain.PriceEstimate{Low: 1020, High: 1380, Currency: "CAD"}))
	assert.NoError(t, NewLogNotifier().NotifyLead(context.Background(), domain.Lead{ID: "LEAD-1"}))
}
