// Package state mantém o registro único do painel com acesso exclusivo para mutações
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Publisher recebe o registro confirmado após cada escrita
type Publisher interface {
	Publish(event string, state domain.DashboardState)
}

// Mutator altera o registro dentro de Update. Retornar erro aborta sem gravar.
type Mutator func(state *domain.DashboardState) error

type Option func(*Store)

// WithClock substitui o relógio usado para carimbar UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithDefaultValuePerBooking define o valor por agendamento do registro padrão
func WithDefaultValuePerBooking(value int64) Option {
	return func(s *Store) {
		if value > 0 {
			s.defaultValuePerBooking = value
		}
	}
}

// Store é o dono do registro do painel. Leituras nunca aguardam o bloqueio;
// mutações compostas passam por Lock/Update.
type Store struct {
	backend   Backend
	locker    Locker
	publisher Publisher
	now       func() time.Time

	defaultValuePerBooking int64

	// commitMu serializa gravação + publicação para que a ordem no barramento
	// seja a ordem de confirmação.
	commitMu sync.Mutex
}

func NewStore(backend Backend, locker Locker, publisher Publisher, opts ...Option) *Store {
	s := &Store{
		backend:                backend,
		locker:                 locker,
		publisher:              publisher,
		now:                    time.Now,
		defaultValuePerBooking: domain.DefaultValuePerBooking,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DefaultState retorna o registro padrão usado na inicialização e no reset
func (s *Store) DefaultState() domain.DashboardState {
	state := domain.DefaultState(s.now())
	state.ValuePerBooking = s.defaultValuePerBooking
	return state
}

// Read retorna o último registro confirmado, com os campos derivados recalculados.
// No primeiro acesso o registro padrão é persistido se o bloqueio estiver livre.
func (s *Store) Read(ctx context.Context) (domain.DashboardState, error) {
	state, found, err := s.backend.Load(ctx)
	if err != nil {
		return domain.DashboardState{}, &PersistenceError{Op: "read", Err: err}
	}

	if found {
		return domain.Recompute(state), nil
	}

	return s.initialize(ctx), nil
}

func (s *Store) initialize(ctx context.Context) domain.DashboardState {
	defaults := s.DefaultState()

	acquired, err := s.locker.TryAcquire()
	if err != nil {
		logrus.WithError(err).Warn("Não foi possível tentar o bloqueio para inicializar o estado")
		return defaults
	}
	if !acquired {
		// Quem detém o bloqueio vai persistir o registro
		return defaults
	}
	defer s.release()

	state, found, err := s.backend.Load(ctx)
	if err == nil && found {
		return domain.Recompute(state)
	}

	if err := s.backend.Save(ctx, defaults); err != nil {
		logrus.WithError(err).Error("Erro ao persistir o estado padrão")
		return defaults
	}

	logrus.Info("Estado do painel inicializado com valores padrão")
	return defaults
}

// Write recalcula, carimba UpdatedAt, persiste e publica o registro.
// Para leitura-modificação-escrita o chamador deve deter o bloqueio.
func (s *Store) Write(ctx context.Context, state domain.DashboardState) (domain.DashboardState, error) {
	next := domain.Recompute(state)
	next.UpdatedAt = s.now().UTC()

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if err := s.backend.Save(ctx, next); err != nil {
		metrics.StateWrites.WithLabelValues("error").Inc()
		logrus.WithError(err).Error("Erro ao persistir o estado do painel")
		return domain.DashboardState{}, &PersistenceError{Op: "write", Err: err}
	}

	metrics.StateWrites.WithLabelValues("ok").Inc()

	if s.publisher != nil {
		s.publisher.Publish(domain.EventStateUpdate, next)
	}

	return next, nil
}

// Lock obtém o bloqueio exclusivo, aguardando enquanto outro mutador o detém
func (s *Store) Lock(ctx context.Context) error {
	start := time.Now()
	err := s.locker.Acquire(ctx)
	metrics.ObserveLockWait(time.Since(start))

	if err != nil {
		if errors.Is(err, ErrLockTimeout) {
			metrics.LockTimeouts.Inc()
		}
		return err
	}

	return nil
}

func (s *Store) Unlock() error {
	return s.locker.Release()
}

func (s *Store) release() {
	if err := s.locker.Release(); err != nil {
		logrus.WithError(err).Error("Erro ao liberar o bloqueio do estado")
	}
}

// Update executa leitura-modificação-escrita sob o bloqueio exclusivo.
// O bloqueio é liberado em qualquer caminho, inclusive erro e panic.
func (s *Store) Update(ctx context.Context, mutate Mutator) (before, after domain.DashboardState, err error) {
	if err = s.Lock(ctx); err != nil {
		return before, after, err
	}
	defer s.release()

	before, err = s.Read(ctx)
	if err != nil {
		return before, after, err
	}

	next := before
	if err = mutate(&next); err != nil {
		return before, before, err
	}

	after, err = s.Write(ctx, next)
	return before, after, err
}

// AddBooked soma amount agendamentos (1 quando amount <= 0)
func AddBooked(amount int64) Mutator {
	if amount <= 0 {
		amount = 1
	}

	return func(state *domain.DashboardState) error {
		state.BookedAppointments += amount
		return nil
	}
}

// RemoveBooked subtrai amount agendamentos (1 quando amount <= 0), nunca abaixo de zero
func RemoveBooked(amount int64) Mutator {
	if amount <= 0 {
		amount = 1
	}

	return func(state *domain.DashboardState) error {
		state.BookedAppointments -= amount
		if state.BookedAppointments < 0 {
			state.BookedAppointments = 0
		}
		return nil
	}
}

func (s *Store) IncrementBooked(ctx context.Context, amount int64) (domain.DashboardState, error) {
	_, after, err := s.Update(ctx, AddBooked(amount))
	return after, err
}

func (s *Store) DecrementBooked(ctx context.Context, amount int64) (domain.DashboardState, error) {
	_, after, err := s.Update(ctx, RemoveBooked(amount))
	return after, err
}
