package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/sirupsen/logrus"
)

const recalculateTimeout = 30 * time.Second

// Recalculator é a operação de rederivação exclusiva do painel
type Recalculator interface {
	Recalculate(ctx context.Context, actor domain.AuditActor) (domain.DashboardState, error)
}

type StateRecalculateConfig struct {
	CronSchedule string
	SyncEnabled  bool
}

// StateRecalculateService agenda a rederivação periódica do estado do painel
type StateRecalculateService struct {
	scheduler           *gocron.Scheduler
	config              StateRecalculateConfig
	recalculator        Recalculator
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncError       string
	runs                int
}

func NewStateRecalculateService(recalculator Recalculator, appConfig *config.Config) *StateRecalculateService {
	recalculateConfig := StateRecalculateConfig{
		CronSchedule: appConfig.StateRecalculate.CronSchedule,
		SyncEnabled:  appConfig.StateRecalculate.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": recalculateConfig.CronSchedule,
		"sync_enabled":  recalculateConfig.SyncEnabled,
	}).Info("Configuração do agendador de recálculo do painel carregada")

	return &StateRecalculateService{
		scheduler:    gocron.NewScheduler(time.UTC),
		config:       recalculateConfig,
		recalculator: recalculator,
	}
}

// Start agenda o job e para o agendador quando o contexto é cancelado
func (s *StateRecalculateService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Recálculo agendado do painel desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de recálculo do painel")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.recalculate(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar recálculo do painel: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de recálculo do painel")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *StateRecalculateService) recalculate(parent context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Recálculo do painel já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	var runErr error
	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.runs++
		s.lastSyncCompletedAt = time.Now()
		s.lastSyncError = ""
		if runErr != nil {
			s.lastSyncError = runErr.Error()
		}
		s.syncMutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), recalculateTimeout)
	defer cancel()

	startTime := time.Now()
	current, err := s.recalculator.Recalculate(ctx, domain.AuditActorSystem)
	if err != nil {
		runErr = err
		logrus.WithError(err).Error("Erro ao recalcular o estado do painel")
		return
	}

	logrus.WithFields(logrus.Fields{
		"duration":            time.Since(startTime).String(),
		"booked_appointments": current.BookedAppointments,
		"revenue_autopilot":   current.RevenueAutopilot,
	}).Info("Recálculo do painel concluído")
}

// TriggerManualSync dispara o recálculo fora do agendamento
func (s *StateRecalculateService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Recálculo do painel já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando recálculo manual do painel")
	go s.recalculate(context.Background())
	return true
}

// GetStatus retorna o status atual do job
func (s *StateRecalculateService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_error":        s.lastSyncError,
		"runs":                   s.runs,
	}
}
