package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/logger"
	"paygate/internal/types"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)
	return New(log)
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := newTestBus(t)
	ch, unsub := bus.Subscribe("api", 4)
	defer unsub()

	bus.Publish(types.Event{Type: types.EventSessionCreated})
	bus.Publish(types.Event{Type: types.EventTransferDetected})
	bus.Publish(types.Event{Type: types.EventSessionCompleted})

	assert.Equal(t, types.EventSessionCreated, (<-ch).Type)
	assert.Equal(t, types.EventTransferDetected, (<-ch).Type)
	assert.Equal(t, types.EventSessionCompleted, (<-ch).Type)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := newTestBus(t)
	ch, unsub := bus.Subscribe("webhook", 1)
	defer unsub()

	bus.Publish(types.Event{Type: types.EventSessionCreated})
	bus.Publish(types.Event{Type: types.EventSessionExpired}) // dropped, queue full

	assert.Equal(t, uint64(1), bus.Lagged("webhook"))
	assert.Equal(t, types.EventSessionCreated, (<-ch).Type)

	select {
	case <-ch:
		t.Fatal("expected no second event, queue should have dropped it")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBusPublishNeverBlocksWithNoSubscribers(t *testing.T) {
	bus := newTestBus(t)
	done := make(chan struct{})
	go func() {
		bus.Publish(types.Event{Type: types.EventChainHalted})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := newTestBus(t)
	ch, unsub := bus.Subscribe("scanner", 1)
	unsub()

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}
