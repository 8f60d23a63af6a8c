package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkchamber/dashboard-api/infrastructure/database/postgres"
	"github.com/inkchamber/dashboard-api/infrastructure/repository"
	"github.com/inkchamber/dashboard-api/internal/api"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/realtime"
	"github.com/inkchamber/dashboard-api/internal/scheduler"
	"github.com/inkchamber/dashboard-api/internal/state"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pgConn *postgres.Connection
	if cfg.RequiresDatabase() {
		pgConn = pgconn(ctx, cfg.Database)
		defer pgConn.Close()
	}

	auditRepo := auditRepository(cfg, pgConn)
	leadRepo := leadRepository(cfg, pgConn)

	bus := realtime.NewBus()
	store := state.NewStore(
		stateBackend(cfg),
		stateLocker(cfg),
		bus,
		state.WithDefaultValuePerBooking(cfg.State.DefaultValuePerBooking),
	)

	gateway := realtime.NewGateway(store, bus,
		realtime.WithHeartbeatInterval(cfg.Stream.HeartbeatInterval),
		realtime.WithClientBuffer(cfg.Stream.ClientBuffer),
	)

	auditor := auditing.NewService(auditRepo)
	authenticator := authenticating.NewService(cfg)
	dashboardService := dashboard.NewService(store, auditor)
	quoter := quoting.NewService(leadRepo, quoting.NewLogNotifier())

	stateRecalculateService := scheduler.NewStateRecalculateService(dashboardService, cfg)

	server, err := api.New(cfg, api.Services{
		Dashboard:        dashboardService,
		Auditor:          auditor,
		Authenticator:    authenticator,
		Quoter:           quoter,
		Gateway:          gateway,
		StateRecalculate: stateRecalculateService,
	})
	if err != nil {
		logrus.Fatal(err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := stateRecalculateService.Start(groupCtx); err != nil {
			logrus.WithError(err).Error("Erro ao iniciar o agendador de recálculo do painel")
			return nil
		}
		logrus.Info("Agendador de recálculo do painel iniciado com sucesso")
		return nil
	})

	group.Go(func() error {
		return server.Run(groupCtx)
	})

	if err := group.Wait(); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria a conexão com o banco de dados e aplica as migrações
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	if err := postgres.Migrate(dbConfig.DSN); err != nil {
		logrus.WithError(err).Fatal("Erro ao aplicar migrações do PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

func stateBackend(cfg *config.Config) state.Backend {
	if cfg.State.Backend == config.BackendMemory {
		logrus.Warn("Estado do painel em memória: cada instância terá sua própria cópia")
		return state.NewMemoryBackend()
	}

	backend, err := state.NewFileBackend(cfg.State.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao preparar o diretório de estado")
	}
	return backend
}

func stateLocker(cfg *config.Config) state.Locker {
	if cfg.State.Lock == config.LockFile {
		backend, err := state.NewFileBackend(cfg.State.Dir)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao preparar o diretório de estado")
		}
		return state.NewFileLocker(backend.LockPath(), cfg.State.LockRetryInterval, cfg.State.LockMaxWait)
	}

	return state.NewMutexLocker().WithMaxWait(cfg.State.LockMaxWait)
}

func auditRepository(cfg *config.Config, conn *postgres.Connection) repository.AuditRepository {
	switch cfg.Audit.Backend {
	case config.BackendPostgres:
		return repository.NewAuditRepository(conn)
	case config.BackendMemory:
		return repository.NewMemoryAuditRepository(cfg.Audit.MemoryLimit)
	}

	repo, err := repository.NewFileAuditRepository(cfg.State.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao preparar o arquivo de auditoria")
	}
	return repo
}

func leadRepository(cfg *config.Config, conn *postgres.Connection) repository.LeadRepository {
	if cfg.Leads.Backend == config.BackendPostgres {
		return repository.NewLeadRepository(conn)
	}

	repo, err := repository.NewFileLeadRepository(cfg.Leads.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao preparar o diretório de leads")
	}
	return repo
}
