package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/infrastructure/config"
)

func testHub(t *testing.T, cfg config.RealtimeConfig) *Hub {
	t.Helper()
	hub := NewHub(cfg, nil)
	require.NoError(t, hub.Start())
	t.Cleanup(hub.Stop)
	return hub
}

func stockChanged(t *testing.T, storeID uuid.UUID, qty int64) *inventory.StockChangedEvent {
	t.Helper()
	item, err := inventory.NewStockItem(storeID, uuid.New())
	require.NoError(t, err)
	before := item.Quantity
	require.NoError(t, item.Receive(decimal.NewFromInt(qty), inventory.MovementTypeReceive, "GRN-1"))
	return inventory.NewStockChangedEvent(item, inventory.MovementTypeReceive,
		decimal.NewFromInt(qty), before, item.Quantity, "GRN-1")
}

type stockFrame struct {
	StoreID uuid.UUID     `json:"store_id"`
	Updates []StockUpdate `json:"updates"`
}

func TestHub_BroadcastsCoalescedFrame(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        10,
		ClientBuffer:      8,
		DebounceWindow:    20 * time.Millisecond,
		HeartbeatInterval: time.Minute,
	})

	storeID := uuid.New()
	client, err := hub.Register(storeID, "cashier-1")
	require.NoError(t, err)
	defer hub.Unregister(client)

	event := stockChanged(t, storeID, 10)
	require.NoError(t, hub.Handle(context.Background(), event))

	select {
	case msg := <-client.Chan:
		assert.Equal(t, "stock_changed", msg.Event)
		var frame stockFrame
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &frame))
		assert.Equal(t, storeID, frame.StoreID)
		require.Len(t, frame.Updates, 1)
		assert.Equal(t, event.ProductID, frame.Updates[0].ProductID)
		assert.True(t, frame.Updates[0].Quantity.Equal(decimal.NewFromInt(10)))
	case <-time.After(time.Second):
		t.Fatal("no frame received before timeout")
	}
}

func TestHub_CoalescesBurstWithinWindow(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        10,
		ClientBuffer:      8,
		DebounceWindow:    50 * time.Millisecond,
		HeartbeatInterval: time.Minute,
	})

	storeID := uuid.New()
	client, err := hub.Register(storeID, "cashier-1")
	require.NoError(t, err)
	defer hub.Unregister(client)

	item, err := inventory.NewStockItem(storeID, uuid.New())
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(10), inventory.MovementTypeReceive, "GRN-1"))

	// Two changes to the same product inside one window
	first := inventory.NewStockChangedEvent(item, inventory.MovementTypeReceive,
		decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(10), "GRN-1")
	require.NoError(t, hub.Handle(context.Background(), first))

	require.NoError(t, item.Deduct(decimal.NewFromInt(3), inventory.MovementTypeSale, "SAL-20260830-0001"))
	second := inventory.NewStockChangedEvent(item, inventory.MovementTypeSale,
		decimal.NewFromInt(-3), decimal.NewFromInt(10), item.Quantity, "SAL-20260830-0001")
	require.NoError(t, hub.Handle(context.Background(), second))

	select {
	case msg := <-client.Chan:
		var frame stockFrame
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &frame))
		require.Len(t, frame.Updates, 1, "burst should coalesce to one update")
		assert.True(t, frame.Updates[0].Quantity.Equal(decimal.NewFromInt(7)),
			"latest quantity wins")
	case <-time.After(time.Second):
		t.Fatal("no frame received before timeout")
	}

	// No second frame for the same burst
	select {
	case msg := <-client.Chan:
		t.Fatalf("unexpected extra frame: %s", msg.Data)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestHub_ScopesFramesToStore(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        10,
		ClientBuffer:      8,
		DebounceWindow:    20 * time.Millisecond,
		HeartbeatInterval: time.Minute,
	})

	storeA := uuid.New()
	storeB := uuid.New()
	clientA, err := hub.Register(storeA, "user-a")
	require.NoError(t, err)
	defer hub.Unregister(clientA)
	clientB, err := hub.Register(storeB, "user-b")
	require.NoError(t, err)
	defer hub.Unregister(clientB)

	require.NoError(t, hub.Handle(context.Background(), stockChanged(t, storeA, 5)))

	select {
	case <-clientA.Chan:
	case <-time.After(time.Second):
		t.Fatal("store A client received nothing")
	}

	select {
	case msg := <-clientB.Chan:
		t.Fatalf("store B client should not receive store A frames: %s", msg.Data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_EnforcesMaxClients(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        1,
		ClientBuffer:      8,
		DebounceWindow:    20 * time.Millisecond,
		HeartbeatInterval: time.Minute,
	})

	storeID := uuid.New()
	first, err := hub.Register(storeID, "user-1")
	require.NoError(t, err)

	_, err = hub.Register(storeID, "user-2")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MAX_CONNECTIONS_REACHED", domainErr.Code)

	// Slot frees up after disconnect
	hub.Unregister(first)
	second, err := hub.Register(storeID, "user-2")
	require.NoError(t, err)
	hub.Unregister(second)
}

func TestHub_MarksLowStock(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        10,
		ClientBuffer:      8,
		DebounceWindow:    20 * time.Millisecond,
		HeartbeatInterval: time.Minute,
	})

	storeID := uuid.New()
	client, err := hub.Register(storeID, "cashier-1")
	require.NoError(t, err)
	defer hub.Unregister(client)

	item, err := inventory.NewStockItem(storeID, uuid.New())
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(4), inventory.MovementTypeReceive, "GRN-1"))
	require.NoError(t, item.SetThresholds(decimal.NewFromInt(5), decimal.Zero))

	changed := inventory.NewStockChangedEvent(item, inventory.MovementTypeReceive,
		decimal.NewFromInt(4), decimal.Zero, item.Quantity, "GRN-1")
	require.NoError(t, hub.Handle(context.Background(), changed))
	require.NoError(t, hub.Handle(context.Background(), inventory.NewLowStockEvent(item)))

	select {
	case msg := <-client.Chan:
		var frame stockFrame
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &frame))
		require.Len(t, frame.Updates, 1)
		assert.True(t, frame.Updates[0].Low)
	case <-time.After(time.Second):
		t.Fatal("no frame received before timeout")
	}
}

func TestHub_DisconnectDuringBroadcast(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        100,
		ClientBuffer:      1,
		DebounceWindow:    time.Millisecond,
		HeartbeatInterval: 2 * time.Millisecond,
	})

	storeID := uuid.New()
	event := stockChanged(t, storeID, 5)

	// Keep the broadcast and heartbeat paths busy while clients churn. A
	// disconnect racing a delivery must drop the frame, never panic.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = hub.Handle(context.Background(), event)
				time.Sleep(time.Millisecond)
			}
		}
	}()

	for i := 0; i < 50; i++ {
		client, err := hub.Register(storeID, "cashier-1")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		hub.Unregister(client)

		select {
		case <-client.Done:
		default:
			t.Fatal("Done not signalled after Unregister")
		}
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := testHub(t, config.RealtimeConfig{
		MaxClients:        10,
		ClientBuffer:      8,
		DebounceWindow:    20 * time.Millisecond,
		HeartbeatInterval: time.Minute,
	})

	client, err := hub.Register(uuid.New(), "cashier-1")
	require.NoError(t, err)

	hub.Unregister(client)
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())

	// Stop after an explicit disconnect must not signal the client twice
	hub.Stop()
}
