package quoting

import (
	"context"
	"fmt"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/pkg/log"
)

//go:generate mockgen -source=notifier.go -destination=mocks/notifier_mock.go -package=mocks

// Notifier avisa o prospect e a equipe sobre um novo lead
type Notifier interface {
	NotifyLead(ctx context.Context, lead domain.Lead) error
}

// LogNotifier apenas registra o lead no log; o envio de email e SMS fica fora da API
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) NotifyLead(ctx context.Context, lead domain.Lead) error {
	log.ForContext(ctx).WithFields(log.Fields{
		"lead_id":  lead.ID,
		"coverage": Label("coverage_area", lead.Inputs.CoverageArea),
		"finish":   Label("finish", lead.Inputs.Finish),
		"timing":   Label("timing", lead.Inputs.Timing),
		"range":    EstimateRange(lead.Estimate),
	}).Info("Novo lead capturado")
	return nil
}

// EstimateRange formata a faixa, ex.: "CAD $1020 - $1380"
func EstimateRange(estimate domain.PriceEstimate) string {
	return fmt.Sprintf("%s $%d - $%d", estimate.Currency, estimate.Low, estimate.High)
}
