package auditing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inkchamber/dashboard-api/infrastructure/repository"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/pkg/log"
)

//go:generate mockgen -source=service.go -destination=mocks/auditor_mock.go -package=mocks

// DefaultRecentLimit é a quantidade de entradas retornadas quando nenhum limite é informado
const DefaultRecentLimit = 10

// Auditor registra mutações e rejeições de segurança.
// Record nunca falha para quem chama: erros de gravação são apenas logados.
type Auditor interface {
	Record(ctx context.Context, entry domain.AuditEntry)
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type Service struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewService(repo repository.AuditRepository) Auditor {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Record(ctx context.Context, entry domain.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		metrics.AuditWriteErrors.Inc()
		log.ForContext(ctx).WithError(err).WithFields(log.Fields{
			"action": entry.Action,
			"field":  entry.Field,
		}).Error("Erro ao gravar entrada de auditoria")
	}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	return s.repo.Recent(ctx, limit)
}
