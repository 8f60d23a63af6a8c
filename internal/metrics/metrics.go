// Package metrics expõe as métricas Prometheus da API do painel
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

var (
	// StateWrites conta as escritas do registro. Labels: status (ok, error)
	StateWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "writes_total",
		Help:      "Total de escritas do registro do painel",
	}, []string{"status"})

	// LockWait mede o tempo aguardando o bloqueio exclusivo
	LockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "lock_wait_seconds",
		Help:      "Tempo aguardando o bloqueio exclusivo do registro",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// LockTimeouts conta as aquisições de bloqueio que expiraram
	LockTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "state",
		Name:      "lock_timeouts_total",
		Help:      "Total de aquisições de bloqueio expiradas",
	})

	// WebhookEvents conta os eventos externos recebidos.
	// Labels: source (calendly, bookings), outcome (applied, ignored, rejected)
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "events_total",
		Help:      "Total de eventos de agendamento recebidos",
	}, []string{"source", "outcome"})

	// StreamConnections mostra as conexões de streaming abertas
	StreamConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "active_connections",
		Help:      "Conexões SSE abertas",
	})

	// StreamDrops conta conexões encerradas por cliente lento
	StreamDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stream",
		Name:      "slow_client_drops_total",
		Help:      "Conexões SSE encerradas por fila cheia",
	})

	// BusHandlerPanics conta falhas de assinantes do barramento
	BusHandlerPanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bus",
		Name:      "handler_panics_total",
		Help:      "Total de panics recuperados em assinantes",
	}, []string{"event"})

	// AuditWriteErrors conta falhas ao gravar o log de auditoria
	AuditWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "write_errors_total",
		Help:      "Total de falhas ao gravar entradas de auditoria",
	})
)

// ObserveLockWait registra o tempo de espera pelo bloqueio
func ObserveLockWait(d time.Duration) {
	LockWait.Observe(d.Seconds())
}

// Handler retorna o handler HTTP do registro padrão
func Handler() http.Handler {
	return promhttp.Handler()
}
