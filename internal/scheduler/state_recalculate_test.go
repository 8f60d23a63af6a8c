package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecalculator struct {
	calls   atomic.Int32
	actors  sync.Map
	err     error
	release chan struct{}
}

func (f *fakeRecalculator) Recalculate(ctx context.Context, actor domain.AuditActor) (domain.DashboardState, error) {
	f.calls.Add(1)
	f.actors.Store(actor, true)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return domain.DashboardState{}, ctx.Err()
		}
	}
	return domain.DashboardState{BookedAppointments: 3, ValuePerBooking: 100, RevenueAutopilot: 300}, f.err
}

func newTestRecalculateService(recalculator Recalculator, enabled bool) *StateRecalculateService {
	return NewStateRecalculateService(recalculator, &config.Config{
		StateRecalculate: config.StateRecalculate{CronSchedule: "*/15 * * * *", Enabled: enabled},
	})
}

func TestStateRecalculateService_TriggerManualSync(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		validate func(t *testing.T, status map[string]any)
	}{
		{
			name: "Recálculo bem-sucedido",
			validate: func(t *testing.T, status map[string]any) {
				assert.Equal(t, "", status["last_sync_error"])
			},
		},
		{
			name: "Erro no recálculo fica registrado no status",
			err:  errors.New("bloqueio expirado"),
			validate: func(t *testing.T, status map[string]any) {
				assert.Equal(t, "bloqueio expirado", status["last_sync_error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recalculator := &fakeRecalculator{err: tt.err}
			service := newTestRecalculateService(recalculator, true)

			require.True(t, service.TriggerManualSync())

			require.Eventually(t, func() bool {
				return service.GetStatus()["runs"] == 1
			}, time.Second, 5*time.Millisecond)

			status := service.GetStatus()
			assert.Equal(t, false, status["sync_running"])
			assert.Equal(t, "*/15 * * * *", status["sync_cron"])
			_, bySystem := recalculator.actors.Load(domain.AuditActorSystem)
			assert.True(t, bySystem)
			tt.validate(t, status)
		})
	}
}

func TestStateRecalculateService_IgnoresConcurrentRuns(t *testing.T) {
	recalculator := &fakeRecalculator{release: make(chan struct{})}
	service := newTestRecalculateService(recalculator, true)

	require.True(t, service.TriggerManualSync())
	require.Eventually(t, func() bool {
		return service.GetStatus()["sync_running"] == true
	}, time.Second, 5*time.Millisecond)

	assert.False(t, service.TriggerManualSync())

	close(recalculator.release)
	require.Eventually(t, func() bool {
		return service.GetStatus()["runs"] == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), recalculator.calls.Load())
}

func TestStateRecalculateService_Start(t *testing.T) {
	t.Run("Desabilitado não agenda", func(t *testing.T) {
		service := newTestRecalculateService(&fakeRecalculator{}, false)
		require.NoError(t, service.Start(context.Background()))
		assert.Empty(t, service.scheduler.Jobs())
	})

	t.Run("Cron inválido retorna erro", func(t *testing.T) {
		service := NewStateRecalculateService(&fakeRecalculator{}, &config.Config{
			StateRecalculate: config.StateRecalculate{CronSchedule: "não é cron", Enabled: true},
		})
		assert.Error(t, service.Start(context.Background()))
	})

	t.Run("Agenda o job e para com o contexto", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		service := newTestRecalculateService(&fakeRecalculator{}, true)

		require.NoError(t, service.Start(ctx))
		assert.Len(t, service.scheduler.Jobs(), 1)

		cancel()
		require.Eventually(t, func() bool {
			return !service.scheduler.IsRunning()
		}, time.Second, 5*time.Millisecond)
	})
}
