package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nextstock/backend/internal/domain/inventory"
	"github.com/nextstock/backend/internal/domain/shared"
	"github.com/nextstock/backend/internal/infrastructure/config"
)

// Message is one SSE frame delivered to a client
type Message struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// Client is one connected SSE subscriber. The HTTP handler drains Chan and
// returns when Done closes. Chan itself is never closed: broadcast and
// heartbeat goroutines may be mid-send when a client disconnects, and a send
// on a closed channel would panic the process. The unreferenced channel is
// simply collected.
type Client struct {
	ID      string
	StoreID uuid.UUID
	UserID  string
	Chan    chan Message
	Done    chan struct{}

	done sync.Once
}

// disconnect signals Done exactly once, no matter how many paths reach it.
func (c *Client) disconnect() {
	c.done.Do(func() { close(c.Done) })
}

// StockUpdate is one coalesced stock change in a stock_changed frame
type StockUpdate struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available decimal.Decimal `json:"available"`
	Movement  string          `json:"movement"`
	Low       bool            `json:"low,omitempty"`
}

type pendingKey struct {
	storeID   uuid.UUID
	productID uuid.UUID
}

// Hub fans stock change events out to SSE clients. Changes within the
// debounce window are coalesced per product, so a burst of register activity
// becomes one frame per store with the latest quantities.
type Hub struct {
	cfg    config.RealtimeConfig
	logger *zap.Logger

	clients sync.Map // map[string]*Client
	count   int
	countMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[pendingKey]StockUpdate
	flushSet  bool

	ctx    context.Context
	cancel context.CancelFunc

	startMu sync.Mutex
	started bool
}

// NewHub creates a new realtime hub
func NewHub(cfg config.RealtimeConfig, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		pending: make(map[pendingKey]StockUpdate),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the heartbeat loop
func (h *Hub) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()
	if h.started {
		return fmt.Errorf("realtime hub already started")
	}
	go h.sendHeartbeats()
	h.started = true
	h.logger.Info("realtime hub started",
		zap.Int("max_clients", h.cfg.MaxClients),
		zap.Duration("debounce_window", h.cfg.DebounceWindow))
	return nil
}

// Stop disconnects all clients and stops background loops
func (h *Hub) Stop() {
	h.cancel()
	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*Client); ok {
			client.disconnect()
		}
		return true
	})
	h.logger.Info("realtime hub stopped")
}

// Handle receives inventory events from the bus and queues them for broadcast
func (h *Hub) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.StockChangedEvent:
		h.queue(e.StoreID, StockUpdate{
			ProductID: e.ProductID,
			Quantity:  e.QuantityAfter,
			Available: e.Available,
			Movement:  string(e.MovementType),
		})
	case *inventory.LowStockEvent:
		h.queueLow(e.StoreID, e.ProductID)
	}
	return nil
}

// EventTypes returns the event types the hub subscribes to
func (h *Hub) EventTypes() []string {
	return []string{inventory.EventTypeStockChanged, inventory.EventTypeLowStock}
}

// Register adds a client subscribed to a store's stock feed
func (h *Hub) Register(storeID uuid.UUID, userID string) (*Client, error) {
	h.countMu.Lock()
	if h.cfg.MaxClients > 0 && h.count >= h.cfg.MaxClients {
		h.countMu.Unlock()
		return nil, shared.NewDomainError("MAX_CONNECTIONS_REACHED", "Maximum number of stream connections reached")
	}
	h.count++
	h.countMu.Unlock()

	buffer := h.cfg.ClientBuffer
	if buffer <= 0 {
		buffer = 32
	}
	client := &Client{
		ID:      uuid.New().String(),
		StoreID: storeID,
		UserID:  userID,
		Chan:    make(chan Message, buffer),
		Done:    make(chan struct{}),
	}
	h.clients.Store(client.ID, client)
	h.logger.Debug("stream client connected",
		zap.String("client_id", client.ID),
		zap.String("store_id", storeID.String()))
	return client, nil
}

// Unregister removes a client. Safe to call once per client.
func (h *Hub) Unregister(client *Client) {
	if _, loaded := h.clients.LoadAndDelete(client.ID); !loaded {
		return
	}
	client.disconnect()
	h.countMu.Lock()
	h.count--
	h.countMu.Unlock()
	h.logger.Debug("stream client disconnected", zap.String("client_id", client.ID))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.countMu.Lock()
	defer h.countMu.Unlock()
	return h.count
}

// queue records a stock update and schedules a flush. Later updates for the
// same product within the window replace earlier ones.
func (h *Hub) queue(storeID uuid.UUID, update StockUpdate) {
	h.pendingMu.Lock()
	key := pendingKey{storeID: storeID, productID: update.ProductID}
	if prev, ok := h.pending[key]; ok && prev.Low {
		update.Low = true
	}
	h.pending[key] = update
	h.scheduleFlushLocked()
	h.pendingMu.Unlock()
}

// queueLow marks the pending update for a product as a low stock alert
func (h *Hub) queueLow(storeID, productID uuid.UUID) {
	h.pendingMu.Lock()
	key := pendingKey{storeID: storeID, productID: productID}
	update, ok := h.pending[key]
	if !ok {
		update = StockUpdate{ProductID: productID}
	}
	update.Low = true
	h.pending[key] = update
	h.scheduleFlushLocked()
	h.pendingMu.Unlock()
}

func (h *Hub) scheduleFlushLocked() {
	if h.flushSet {
		return
	}
	h.flushSet = true
	window := h.cfg.DebounceWindow
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	time.AfterFunc(window, h.flush)
}

// flush snapshots the pending updates and broadcasts one frame per store
func (h *Hub) flush() {
	h.pendingMu.Lock()
	snapshot := h.pending
	h.pending = make(map[pendingKey]StockUpdate)
	h.flushSet = false
	h.pendingMu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	byStore := make(map[uuid.UUID][]StockUpdate)
	for key, update := range snapshot {
		byStore[key.storeID] = append(byStore[key.storeID], update)
	}

	for storeID, updates := range byStore {
		data, err := json.Marshal(map[string]any{
			"store_id": storeID,
			"updates":  updates,
		})
		if err != nil {
			h.logger.Error("failed to marshal stock frame", zap.Error(err))
			continue
		}
		h.broadcast(storeID, Message{
			Event: "stock_changed",
			Data:  string(data),
			ID:    fmt.Sprintf("%d", time.Now().UnixMilli()),
		})
	}
}

// broadcast delivers a message to every client subscribed to the store.
// Slow clients lose frames rather than block the hub; the next frame carries
// absolute quantities, so a dropped frame self-heals.
func (h *Hub) broadcast(storeID uuid.UUID, msg Message) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*Client)
		if !ok || client.StoreID != storeID {
			return true
		}
		select {
		case client.Chan <- msg:
		default:
			h.logger.Warn("client channel full, dropping frame",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats keeps idle connections alive through proxies
func (h *Hub) sendHeartbeats() {
	interval := h.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			msg := Message{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			}
			h.clients.Range(func(key, value any) bool {
				if client, ok := value.(*Client); ok {
					select {
					case client.Chan <- msg:
					default:
					}
				}
				return true
			})
		}
	}
}

// Ensure Hub implements EventHandler
var _ shared.EventHandler = (*Hub)(nil)
