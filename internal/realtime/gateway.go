package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/inkchamber/dashboard-api/pkg/apiErrors"
	"github.com/inkchamber/dashboard-api/pkg/log"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultClientBuffer      = 16
)

// Snapshotter fornece o registro atual para a primeira mensagem da conexão
type Snapshotter interface {
	Read(ctx context.Context) (domain.DashboardState, error)
}

// Subscriber é a parte do barramento usada pelo gateway
type Subscriber interface {
	Subscribe(event string, handler Handler) func()
}

// ConnectionState é a fase de vida de uma conexão de streaming
type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateStreaming
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

type streamMessage struct {
	Type  string                 `json:"type"`
	State *domain.DashboardState `json:"state,omitempty"`
}

type connection struct {
	id     string
	queue  chan domain.DashboardState
	done   chan struct{}
	once   sync.Once
	state  atomic.Int32
	reason atomic.Value
}

func newConnection(bufferSize int) *connection {
	return &connection{
		id:    uuid.New().String(),
		queue: make(chan domain.DashboardState, bufferSize),
		done:  make(chan struct{}),
	}
}

func (c *connection) setState(state ConnectionState) {
	c.state.Store(int32(state))
}

func (c *connection) close(reason string) {
	c.once.Do(func() {
		c.reason.Store(reason)
		c.setState(StateClosed)
		close(c.done)
	})
}

func (c *connection) closeReason() string {
	reason, _ := c.reason.Load().(string)
	return reason
}

// enqueue nunca bloqueia quem publica; fila cheia encerra a conexão
func (c *connection) enqueue(state domain.DashboardState) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.queue <- state:
	default:
		metrics.StreamDrops.Inc()
		c.close("cliente lento")
	}
}

type GatewayOption func(*Gateway)

func WithHeartbeatInterval(interval time.Duration) GatewayOption {
	return func(g *Gateway) {
		if interval > 0 {
			g.heartbeatInterval = interval
		}
	}
}

func WithClientBuffer(size int) GatewayOption {
	return func(g *Gateway) {
		if size > 0 {
			g.bufferSize = size
		}
	}
}

// Gateway mantém as conexões SSE e repassa cada alteração confirmada do painel
type Gateway struct {
	snapshots         Snapshotter
	bus               Subscriber
	heartbeatInterval time.Duration
	bufferSize        int

	mu     sync.Mutex
	conns  map[string]*connection
	closed bool
}

func NewGateway(snapshots Snapshotter, bus Subscriber, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		snapshots:         snapshots,
		bus:               bus,
		heartbeatInterval: DefaultHeartbeatInterval,
		bufferSize:        DefaultClientBuffer,
		conns:             make(map[string]*connection),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Gateway) register() (*connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, false
	}

	conn := newConnection(g.bufferSize)
	g.conns[conn.id] = conn
	metrics.StreamConnections.Inc()
	return conn, true
}

func (g *Gateway) remove(conn *connection) {
	conn.close("conexão finalizada")

	g.mu.Lock()
	if _, ok := g.conns[conn.id]; ok {
		delete(g.conns, conn.id)
		metrics.StreamConnections.Dec()
	}
	g.mu.Unlock()
}

// ServeHTTP atende uma conexão do início ao fim: snapshot, eventos e heartbeat
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.ForContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Streaming não suportado", nil)
		return
	}

	conn, ok := g.register()
	if !ok {
		apiErrors.WriteError(w, apiErrors.ErrCommunication, "Servidor em desligamento", nil)
		return
	}
	defer g.remove(conn)

	logger = logger.WithField("connection_id", conn.id)

	// Inscrição antes do snapshot para não perder alterações entre os dois passos
	unsubscribe := g.bus.Subscribe(domain.EventStateUpdate, conn.enqueue)
	defer unsubscribe()

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache, no-transform")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	snapshot, err := g.snapshots.Read(ctx)
	if err != nil {
		logger.WithError(err).Error("Erro ao ler estado inicial do streaming")
		return
	}

	if err := writeMessage(w, flusher, streamMessage{Type: domain.EventStateUpdate, State: &snapshot}); err != nil {
		logger.WithError(err).Warn("Erro ao enviar estado inicial do streaming")
		return
	}

	conn.setState(StateStreaming)
	logger.Info("Conexão de streaming aberta")

	ticker := time.NewTicker(g.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cliente encerrou a conexão de streaming")
			return

		case <-conn.done:
			logger.WithField("reason", conn.closeReason()).Info("Conexão de streaming encerrada pelo servidor")
			return

		// Eventos já refletidos no snapshot podem chegar de novo; o cliente substitui o estado inteiro
		case state := <-conn.queue:
			if err := writeMessage(w, flusher, streamMessage{Type: domain.EventStateUpdate, State: &state}); err != nil {
				logger.WithError(err).Warn("Erro ao enviar atualização do streaming")
				return
			}

		case <-ticker.C:
			if err := writeMessage(w, flusher, streamMessage{Type: "ping"}); err != nil {
				logger.WithError(err).Warn("Erro ao enviar heartbeat do streaming")
				return
			}
		}
	}
}

func writeMessage(w http.ResponseWriter, flusher http.Flusher, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}

	flusher.Flush()
	return nil
}

// ActiveConnections retorna o número de conexões abertas
func (g *Gateway) ActiveConnections() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.conns)
}

// Close encerra todas as conexões e recusa novas. Pode ser chamado mais de uma vez.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	conns := make([]*connection, 0, len(g.conns))
	for _, conn := range g.conns {
		conns = append(conns, conn)
	}
	g.mu.Unlock()

	for _, conn := range conns {
		conn.close("desligamento do servidor")
	}

	if len(conns) > 0 {
		log.L.WithField("connections", len(conns)).Info("Conexões de streaming encerradas para desligamento")
	}
}
