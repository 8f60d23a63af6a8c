package realtime

import (
	"testing"

	"github.com/inkchamber/dashboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()
	received := make([]string, 0)

	bus.Subscribe(domain.EventStateUpdate, func(domain.DashboardState) { received = append(received, "primeiro") })
	bus.Subscribe(domain.EventStateUpdate, func(domain.DashboardState) { received = append(received, "segundo") })
	bus.Subscribe("outro", func(domain.DashboardState) { received = append(received, "outro") })

	bus.Publish(domain.EventStateUpdate, domain.DashboardState{BookedAppointments: 1})

	assert.Equal(t, []string{"primeiro", "segundo"}, received)
}

func TestBus_PanicIsolation(t *testing.T) {
	bus := NewBus()
	var delivered []int64

	bus.Subscribe(domain.EventStateUpdate, func(domain.DashboardState) {
		panic("assinante com defeito")
	})
	bus.Subscribe(domain.EventStateUpdate, func(state domain.DashboardState) {
		delivered = append(delivered, state.BookedAppointments)
	})

	assert.NotPanics(t, func() {
		bus.Publish(domain.EventStateUpdate, domain.DashboardState{BookedAppointments: 7})
	})
	assert.Equal(t, []int64{7}, delivered)
}

func TestBus_UnsubscribeIdempotent(t *testing.T) {
	bus := NewBus()
	calls := 0

	unsubscribeFirst := bus.Subscribe(domain.EventStateUpdate, func(domain.DashboardState) { calls++ })
	unsubscribeSecond := bus.Subscribe(domain.EventStateUpdate, func(domain.DashboardState) { calls += 10 })
	assert.Equal(t, 2, bus.SubscriberCount(domain.EventStateUpdate))

	unsubscribeFirst()
	unsubscribeFirst()
	assert.Equal(t, 1, bus.SubscriberCount(domain.EventStateUpdate))

	bus.Publish(domain.EventStateUpdate, domain.DashboardState{})
	assert.Equal(t, 10, calls)

	unsubscribeSecond()
	assert.Equal(t, 0, bus.SubscriberCount(domain.EventStateUpdate))

	bus.Publish(domain.EventStateUpdate, domain.DashboardState{})
	assert.Equal(t, 10, calls)
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0

	var unsubscribe func()
	unsubscribe = bus.Subscribe(domain.EventStateUpdate, func(domain.DashboardState) {
		calls++
		unsubscribe()
	})

	bus.Publish(domain.EventStateUpdate, domain.DashboardState{})
	bus.Publish(domain.EventStateUpdate, domain.DashboardState{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.SubscriberCount(domain.EventStateUpdate))
}
