// Package realtime distribui as alterações do painel para os clientes conectados
package realtime

import (
	"sync"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/inkchamber/dashboard-api/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Handler recebe o registro publicado. É chamado de forma síncrona por Publish.
type Handler func(state domain.DashboardState)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus é o barramento de eventos em processo. Não há persistência nem replay:
// assinantes tardios só recebem eventos futuros.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]subscription
	nextID      uint64
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]subscription),
	}
}

// Subscribe registra o handler e retorna a função de cancelamento (idempotente)
func (b *Bus) Subscribe(event string, handler Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[event] = append(b.subscribers[event], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(event, id)
		})
	}
}

func (b *Bus) unsubscribe(event string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[event]
	for i, sub := range subs {
		if sub.id == id {
			b.subscribers[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}

	if len(b.subscribers[event]) == 0 {
		delete(b.subscribers, event)
	}
}

// Publish entrega o registro a todos os assinantes do evento, na ordem de inscrição.
// Um handler com panic é isolado; os demais continuam recebendo.
func (b *Bus) Publish(event string, state domain.DashboardState) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[event]))
	copy(subs, b.subscribers[event])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.dispatch(event, sub, state)
	}
}

func (b *Bus) dispatch(event string, sub subscription, state domain.DashboardState) {
	defer func() {
		if r := recover(); r != nil {
			metrics.BusHandlerPanics.WithLabelValues(event).Inc()
			logrus.WithFields(logrus.Fields{
				"event":         event,
				"subscriber_id": sub.id,
				"panic":         r,
			}).Error("Assinante do barramento falhou ao processar evento")
		}
	}()

	sub.handler(state)
}

// SubscriberCount retorna o número de assinantes ativos do evento
func (b *Bus) SubscriberCount(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[event])
}
