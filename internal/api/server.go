package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/inkchamber/dashboard-api/internal/api/handler"
	"github.com/inkchamber/dashboard-api/internal/api/handler/router"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/realtime"
	"github.com/inkchamber/dashboard-api/internal/scheduler"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting"
	"github.com/inkchamber/dashboard-api/pkg/middleware"
	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

// Services agrupa as dependências das rotas
type Services struct {
	Dashboard        dashboard.Manager
	Auditor          auditing.Auditor
	Authenticator    authenticating.Authenticator
	Quoter           quoting.Quoter
	Gateway          *realtime.Gateway
	StateRecalculate *scheduler.StateRecalculateService
}

// NewHandler monta o router com a cadeia global de middlewares
func NewHandler(cfg *config.Config, services Services) http.Handler {
	cronServices := handler.CronJobServices{
		StateRecalculateService: services.StateRecalculate,
	}

	limiter := middleware.NewIPRateLimiter(cfg.Webhook.RatePerSecond, cfg.Webhook.RateBurst)

	rt := router.New(
		router.WithRoutes(handler.Healthcheck(services.Dashboard)...),
		router.WithRoutes(handler.State(services.Dashboard, services.Gateway)...),
		router.WithRoutes(handler.Webhooks(services.Dashboard, services.Auditor, cfg.Webhook, limiter)...),
		router.WithRoutes(handler.Bookings(services.Dashboard, services.Authenticator, services.Auditor)...),
		router.WithRoutes(handler.Admin(services.Dashboard, services.Authenticator, services.Auditor, cfg.Auth)...),
		router.WithRoutes(handler.Leads(services.Quoter)...),
		router.WithRoutes(handler.CronJobs(cronServices, services.Auditor)...),
	)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.ClientIPMiddleware(cfg.Server.TrustedProxies),
		middleware.LoggingMiddleware(),
		middleware.Cors(cfg.Server.AllowedOrigins),
		middleware.AuthMiddleware(services.Authenticator),
	}

	return alice.New(middlewares...).Then(rt)
}

func New(cfg *config.Config, services Services) (*Server, error) {
	if services.Gateway == nil {
		return nil, fmt.Errorf("gateway de streaming não configurado")
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           NewHandler(cfg, services),
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Conexões SSE não terminam sozinhas; o Shutdown precisa encerrá-las
	httpServer.RegisterOnShutdown(services.Gateway.Close)

	return &Server{httpServer: httpServer}, nil
}

// Run atende até o contexto ser cancelado e então desliga o servidor
func (s Server) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
			return err
		}
		return nil
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": shutdownTimeout.String(),
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

func (s Server) Shutdown(ctx context.Context) error {
	logrus.Info("Executando operações de limpeza antes do desligamento")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	logrus.Info("Servidor HTTP desligado com sucesso")
	return nil
}
