package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkchamber/dashboard-api/infrastructure/repository"
	"github.com/inkchamber/dashboard-api/internal/api/handler/router"
	"github.com/inkchamber/dashboard-api/internal/config"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/realtime"
	"github.com/inkchamber/dashboard-api/internal/scheduler"
	"github.com/inkchamber/dashboard-api/internal/state"
	"github.com/inkchamber/dashboard-api/internal/usecases/auditing"
	"github.com/inkchamber/dashboard-api/internal/usecases/authenticating"
	"github.com/inkchamber/dashboard-api/internal/usecases/dashboard"
	"github.com/inkchamber/dashboard-api/internal/usecases/quoting"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/middleware"
	"github.com/inkchamber/dashboard-api/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookSecret = "segredo-calendly"
	testAPIKey        = "chave-123"
	testPassword      = "admin123"
)

type testApp struct {
	handler  http.Handler
	store    *state.Store
	auditor  auditing.Auditor
	recalc   *scheduler.StateRecalculateService
	leadsDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := &config.Config{
		Webhook: config.Webhook{
			CalendlySecret: testWebhookSecret,
			APIKey:         testAPIKey,
			RatePerSecond:  100,
			RateBurst:      100,
		},
		Auth: config.Auth{
			AdminPassword: testPassword,
			SessionSecret: "segredo-de-sessao",
			SessionTTL:    time.Hour,
		},
		StateRecalculate: config.StateRecalculate{CronSchedule: "*/15 * * * *", Enabled: true},
	}

	bus := realtime.NewBus()
	store := state.NewStore(state.NewMemoryBackend(), state.NewMutexLocker(), bus)
	gateway := realtime.NewGateway(store, bus)
	t.Cleanup(gateway.Close)

	auditor := auditing.NewService(repository.NewMemoryAuditRepository(100))
	authService := authenticating.NewService(cfg)
	manager := dashboard.NewService(store, auditor)

	leadsDir := t.TempDir()
	leadRepo, err := repository.NewFileLeadRepository(leadsDir)
	require.NoError(t, err)
	quoter := quoting.NewService(leadRepo, quoting.NewLogNotifier())

	recalc := scheduler.NewStateRecalculateService(manager, cfg)

	rt := router.New(
		router.WithRoutes(Healthcheck(manager)...),
		router.WithRoutes(State(manager, gateway)...),
		router.WithRoutes(Webhooks(manager, auditor, cfg.Webhook, middleware.NewIPRateLimiter(cfg.Webhook.RatePerSecond, cfg.Webhook.RateBurst))...),
		router.WithRoutes(Bookings(manager, authService, auditor)...),
		router.WithRoutes(Admin(manager, authService, auditor, cfg.Auth)...),
		router.WithRoutes(Leads(quoter)...),
		router.WithRoutes(CronJobs(CronJobServices{StateRecalculateService: recalc}, auditor)...),
	)

	return &testApp{
		handler:  middleware.AuthMiddleware(authService)(rt),
		store:    store,
		auditor:  auditor,
		recalc:   recalc,
		leadsDir: leadsDir,
	}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) current(t *testing.T) domain.DashboardState {
	t.Helper()
	current, err := a.store.Read(context.Background())
	require.NoError(t, err)
	return current
}

func (a *testApp) lastAudit(t *testing.T) domain.AuditEntry {
	t.Helper()
	entries, err := a.auditor.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func calendlyRequest(body, signature string) *http.Request {
	req := jsonRequest(http.MethodPost, "/v1/webhooks/calendly", body)
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	return req
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	t.Helper()
	var body apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetState(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/v1/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.DashboardState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.DefaultValuePerBooking, body.ValuePerBooking)
	assert.Equal(t, int64(0), body.BookedAppointments)
	assert.Equal(t, "s-maxage=5, stale-while-revalidate", rec.Header().Get("Cache-Control"))
}

func TestCalendlyWebhook(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		signature      func(body string) string
		expectedStatus int
		validate       func(t *testing.T, app *testApp, rec *httptest.ResponseRecorder)
	}{
		{
			name:           "invitee.created incrementa os agendamentos",
			body:           `{"event":"invitee.created","payload":{"email":"a@b.com"}}`,
			signature:      func(body string) string { return webhook.Sign([]byte(body), testWebhookSecret) },
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, app *testApp, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"received":true}`, rec.Body.String())
				assert.Equal(t, int64(1), app.current(t).BookedAppointments)

				entry := app.lastAudit(t)
				assert.Equal(t, domain.AuditActorWebhook, entry.Actor)
				assert.Equal(t, domain.AuditActionIncrement, entry.Action)
			},
		},
		{
			name:           "invitee.canceled nunca deixa o contador negativo",
			body:           `{"event":"invitee.canceled"}`,
			signature:      func(body string) string { return webhook.Sign([]byte(body), testWebhookSecret) },
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, app *testApp, _ *httptest.ResponseRecorder) {
				assert.Equal(t, int64(0), app.current(t).BookedAppointments)
			},
		},
		{
			name:           "Assinatura inválida é rejeitada sem tocar no estado",
			body:           `{"event":"invitee.created"}`,
			signature:      func(string) string { return "deadbeef" },
			expectedStatus: http.StatusUnauthorized,
			validate: func(t *testing.T, app *testApp, rec *httptest.ResponseRecorder) {
				assert.Equal(t, apiErrors.ErrInvalidSignature, decodeAPIError(t, rec).Code)
				assert.Equal(t, int64(0), app.current(t).BookedAppointments)

				entry := app.lastAudit(t)
				assert.Equal(t, domain.AuditActionSecurity, entry.Action)
				assert.Equal(t, "Invalid Calendly signature", entry.Details)
			},
		},
		{
			name:           "Sem assinatura é rejeitado",
			body:           `{"event":"invitee.created"}`,
			signature:      func(string) string { return "" },
			expectedStatus: http.StatusUnauthorized,
			validate: func(t *testing.T, app *testApp, _ *httptest.ResponseRecorder) {
				assert.Equal(t, int64(0), app.current(t).BookedAppointments)
			},
		},
		{
			name:           "Evento desconhecido é confirmado sem mutação",
			body:           `{"event":"routing_form_submission.created"}`,
			signature:      func(body string) string { return webhook.Sign([]byte(body), testWebhookSecret) },
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, app *testApp, rec *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"received":true,"message":"Unhandled event type: routing_form_submission.created"}`, rec.Body.String())
				assert.Equal(t, int64(0), app.current(t).BookedAppointments)
				assert.Equal(t, "unhandledEvent", app.lastAudit(t).Field)
			},
		},
		{
			name:           "JSON inválido com assinatura válida",
			body:           `{"event":`,
			signature:      func(body string) string { return webhook.Sign([]byte(body), testWebhookSecret) },
			expectedStatus: http.StatusBadRequest,
			validate: func(t *testing.T, app *testApp, rec *httptest.ResponseRecorder) {
				assert.Equal(t, apiErrors.ErrInvalidFormat, decodeAPIError(t, rec).Code)
				assert.Equal(t, domain.AuditActionError, app.lastAudit(t).Action)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			rec := app.do(t, calendlyRequest(tt.body, tt.signature(tt.body)))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			tt.validate(t, app, rec)
		})
	}
}

func TestCreateBooking(t *testing.T) {
	validBody := `{"event":"booking_created","bookingId":"b-1","clientName":"Ana","clientEmail":"ana@example.com","appointmentDate":"2025-03-01","appointmentTime":"10:00"}`

	t.Run("Sem chave de API", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, jsonRequest(http.MethodPost, "/v1/bookings", validBody))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidAPIKey, decodeAPIError(t, rec).Code)
		assert.Equal(t, int64(0), app.current(t).BookedAppointments)
	})

	t.Run("Agendamento criado", func(t *testing.T) {
		app := newTestApp(t)
		req := jsonRequest(http.MethodPost, "/v1/bookings", validBody)
		req.Header.Set(middleware.APIKeyHeader, testAPIKey)

		rec := app.do(t, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body domain.BookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "b-1", body.BookingID)
		assert.Equal(t, int64(1), body.UpdatedState.BookedAppointments)
		assert.Equal(t, int64(100), body.UpdatedState.RevenueAutopilot)
	})

	t.Run("Campos obrigatórios ausentes", func(t *testing.T) {
		app := newTestApp(t)
		req := jsonRequest(http.MethodPost, "/v1/bookings?api_key="+testAPIKey, `{"event":"booking_created"}`)

		rec := app.do(t, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrMissingRequiredData, decodeAPIError(t, rec).Code)
	})

	t.Run("Documentação da API", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, httptest.NewRequest(http.MethodGet, "/v1/bookings?test=true", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Test booking data structure")
	})
}

func login(t *testing.T, app *testApp) *http.Cookie {
	t.Helper()

	rec := app.do(t, jsonRequest(http.MethodPost, "/v1/admin/login", `{"password":"`+testPassword+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("cookie de sessão ausente")
	return nil
}

func TestAdminLogin(t *testing.T) {
	t.Run("Senha correta define cookie seguro", func(t *testing.T) {
		app := newTestApp(t)
		cookie := login(t, app)

		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)

		req := httptest.NewRequest(http.MethodGet, "/v1/admin/auth-check", nil)
		req.AddCookie(cookie)
		rec := app.do(t, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"authenticated":true,"user":"admin"}`, rec.Body.String())
	})

	t.Run("Senha errada é auditada", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, jsonRequest(http.MethodPost, "/v1/admin/login", `{"password":"errada"}`))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidCredentials, decodeAPIError(t, rec).Code)
		assert.Equal(t, "login", app.lastAudit(t).Field)
	})

	t.Run("auth-check sem sessão", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, httptest.NewRequest(http.MethodGet, "/v1/admin/auth-check", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUpdateMetric(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		authenticated  bool
		expectedStatus int
		expectedCode   string
		validate       func(t *testing.T, app *testApp)
	}{
		{
			name:           "Sem sessão",
			body:           `{"field":"websiteClicks","value":10}`,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   apiErrors.ErrInvalidToken,
		},
		{
			name:           "Atualiza campo e recalcula derivados",
			body:           `{"field":"websiteClicks","value":50}`,
			authenticated:  true,
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, app *testApp) {
				assert.Equal(t, int64(50), app.current(t).WebsiteClicks)

				entry := app.lastAudit(t)
				assert.Equal(t, domain.AuditActorAdmin, entry.Actor)
				assert.Equal(t, "websiteClicks", entry.Field)
			},
		},
		{
			name:           "Campo não editável",
			body:           `{"field":"revenueAutopilot","value":10}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrInvalidField,
		},
		{
			name:           "Valor fracionário",
			body:           `{"field":"websiteClicks","value":1.5}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrInvalidFormat,
		},
		{
			name:           "Valor negativo",
			body:           `{"field":"websiteClicks","value":-1}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrValueOutOfRange,
		},
		{
			name:           "Valor acima do limite",
			body:           `{"field":"websiteClicks","value":1000000001}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrValueOutOfRange,
		},
		{
			name:           "Valor ausente",
			body:           `{"field":"websiteClicks"}`,
			authenticated:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apiErrors.ErrMissingRequiredData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			req := jsonRequest(http.MethodPatch, "/v1/admin/metrics", tt.body)
			if tt.authenticated {
				req.AddCookie(login(t, app))
			}

			rec := app.do(t, req)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeAPIError(t, rec).Code)
				assert.Equal(t, int64(0), app.current(t).WebsiteClicks)
			}
			if tt.validate != nil {
				tt.validate(t, app)
			}
		})
	}
}

func TestResetAndRecalculate(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	for i := 0; i < 3; i++ {
		_, err := app.store.IncrementBooked(context.Background(), 1)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/recalculate", nil)
	req.AddCookie(cookie)
	rec := app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var recalculated domain.StateMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recalculated))
	assert.Equal(t, int64(300), recalculated.State.RevenueAutopilot)
	assert.Equal(t, domain.AuditActionRecalculate, app.lastAudit(t).Action)

	req = httptest.NewRequest(http.MethodPost, "/v1/admin/reset", nil)
	req.AddCookie(cookie)
	rec = app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var reset domain.StateMutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.True(t, reset.Success)
	assert.True(t, reset.State.Equal(app.store.DefaultState()))

	entry := app.lastAudit(t)
	assert.Equal(t, domain.AuditActionReset, entry.Action)
	assert.Equal(t, "Booked: 3, Clicks: 0, Est. Revenue: 0", entry.OldValue)
}

func TestAuditLog(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	for i := 0; i < 12; i++ {
		_, err := app.store.IncrementBooked(context.Background(), 1)
		require.NoError(t, err)
		app.auditor.Record(context.Background(), auditing.Change(domain.AuditActorAPI, domain.AuditActionIncrement, domain.FieldBookedAppointments, i, i+1))
	}

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedLen    int
	}{
		{name: "Padrão retorna 10", target: "/v1/admin/audit-log", expectedStatus: http.StatusOK, expectedLen: 10},
		{name: "Limite explícito", target: "/v1/admin/audit-log?limit=3", expectedStatus: http.StatusOK, expectedLen: 3},
		{name: "Limite inválido", target: "/v1/admin/audit-log?limit=abc", expectedStatus: http.StatusBadRequest},
		{name: "Limite fora do intervalo", target: "/v1/admin/audit-log?limit=0", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.AddCookie(cookie)
			rec := app.do(t, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var entries []domain.AuditEntry
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
			require.Len(t, entries, tt.expectedLen)
			assert.Equal(t, float64(12), entries[0].NewValue)
		})
	}
}

func TestQuotesAndLeads(t *testing.T) {
	inputs := `{"gender":"male","age_band":"35-44","concern":"receding","coverage_area":"hairline_temples","finish":"natural","timing":"asap"}`

	t.Run("Estimativa", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, jsonRequest(http.MethodPost, "/v1/quotes/estimate", inputs))
		require.Equal(t, http.StatusOK, rec.Code)

		var estimate domain.PriceEstimate
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &estimate))
		assert.Equal(t, int64(1200), estimate.Mid)
		assert.Equal(t, "CAD", estimate.Currency)
	})

	t.Run("Estimativa com respostas incompletas", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, jsonRequest(http.MethodPost, "/v1/quotes/estimate", `{"gender":"male"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrMissingRequiredData, decodeAPIError(t, rec).Code)
	})

	t.Run("Lead capturado", func(t *testing.T) {
		app := newTestApp(t)
		body := `{"inputs":{"gender":"male","age_band":"35-44","concern":"receding","coverage_area":"hairline_temples","finish":"natural","timing":"asap","name":"Ana","email":"ana@example.com","phone":"555-0100","consent":true}}`

		rec := app.do(t, jsonRequest(http.MethodPost, "/v1/leads", body))
		require.Equal(t, http.StatusOK, rec.Code)

		var response domain.LeadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Regexp(t, `^LEAD-`, response.LeadID)
	})

	t.Run("Lead sem contato", func(t *testing.T) {
		app := newTestApp(t)
		rec := app.do(t, jsonRequest(http.MethodPost, "/v1/leads", `{"inputs":`+inputs+`}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCronJobs(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	req := httptest.NewRequest(http.MethodPost, "/v1/cron/desconhecido/run", nil)
	req.AddCookie(cookie)
	rec := app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/cron/state-recalculate/run", nil)
	req.AddCookie(cookie)
	rec = app.do(t, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return app.recalc.GetStatus()["runs"] == 1
	}, time.Second, 5*time.Millisecond)

	req = httptest.NewRequest(http.MethodGet, "/v1/cron", nil)
	req.AddCookie(cookie)
	rec = app.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), CronJobTypeStateRecalculate)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/v1/cron", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthcheckAndMetrics(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = app.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_")
}
