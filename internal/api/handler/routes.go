package handler

import (
	"net/http"

	"github.com/inkchamber/dashboard-api/internal/api/handler/router"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting"
	"github.com/inkchamber/dashboard-api/pkg/middleware"
)

func Healthcheck(manager dashboard.Manager) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(manager),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: metrics.Handler(),
		},
	}
}

// State expõe o snapshot e o feed SSE do painel
func State(manager dashboard.Manager, stream http.Handler) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/state",
			Method:  http.MethodGet,
			Handler: GetState(manager),
		},
		{
			Path:    "/v1/stream",
			Method:  http.MethodGet,
			Handler: stream,
		},
	}
}

func Webhooks(manager dashboard.Manager, auditor auditing.Auditor, cfg config.Webhook, limiter *middleware.IPRateLimiter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/webhooks/calendly",
			Method:  http.MethodPost,
			Handler: CalendlyWebhook(manager, auditor, cfg.CalendlySecret),
			Middlewares: []func(http.Handler) http.Handler{
				middleware.IPAllowlist(cfg.AllowedIPs, auditor),
				middleware.RateLimit(limiter, auditor),
			},
		},
	}
}

func Bookings(manager dashboard.Manager, authService authenticating.Authenticator, auditor auditing.Auditor) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/bookings",
			Method:      http.MethodPost,
			Handler:     CreateBooking(manager),
			Middlewares: []func(http.Handler) http.Handler{middleware.RequireAPIKey(authService, auditor)},
		},
		{
			Path:    "/v1/bookings",
			Method:  http.MethodGet,
			Handler: BookingAPIInfo(),
		},
	}
}

func Admin(manager dashboard.Manager, authService authenticating.Authenticator, auditor auditing.Auditor, cfg config.Auth) []router.Route {
	adminOnly := []func(http.Handler) http.Handler{middleware.AdminOnly(auditor)}

	return []router.Route{
		{
			Path:    "/v1/admin/login",
			Method:  http.MethodPost,
			Handler: Login(authService, auditor, cfg.SecureCookies),
		},
		{
			Path:    "/v1/admin/logout",
			Method:  http.MethodPost,
			Handler: Logout(cfg.SecureCookies),
		},
		{
			Path:    "/v1/admin/auth-check",
			Method:  http.MethodGet,
			Handler: AuthCheck(),
		},
		{
			Path:        "/v1/admin/metrics",
			Method:      http.MethodPatch,
			Handler:     UpdateMetric(manager),
			Middlewares: adminOnly,
		},
		{
			Path:        "/v1/admin/reset",
			Method:      http.MethodPost,
			Handler:     ResetState(manager),
			Middlewares: adminOnly,
		},
		{
			Path:        "/v1/admin/recalculate",
			Method:      http.MethodPost,
			Handler:     RecalculateState(manager),
			Middlewares: adminOnly,
		},
		{
			Path:        "/v1/admin/audit-log",
			Method:      http.MethodGet,
			Handler:     AuditLog(auditor),
			Middlewares: adminOnly,
		},
	}
}

func Leads(quoter quoting.Quoter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/leads",
			Method:  http.MethodPost,
			Handler: CaptureLead(quoter),
		},
		{
			Path:    "/v1/quotes/estimate",
			Method:  http.MethodPost,
			Handler: EstimateQuote(quoter),
		},
	}
}

// CronJobs: o status fica em /v1/cron porque o httprouter não aceita
// segmento estático e curinga na mesma posição.
func CronJobs(services CronJobServices, auditor auditing.Auditor) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly(auditor)},
		},
		{
			Path:        "/v1/cron",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly(auditor)},
		},
	}
}
