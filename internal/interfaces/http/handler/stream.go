package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nextstock/backend/internal/infrastructure/realtime"
)

// streamWriteWait bounds a single frame write to a stalled peer. The
// server-wide write timeout is sized for request/response handlers and would
// cut a stream long before the first heartbeat, so the deadline is pushed
// forward for every frame instead.
const streamWriteWait = 10 * time.Second

// StreamHandler serves the live stock feed over Server-Sent Events
type StreamHandler struct {
	BaseHandler
	hub *realtime.Hub
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// Stock godoc
// @Summary      Subscribe to live stock updates
// @Description  Streams stock_changed and stock_low events for the current
// @Description  store as Server-Sent Events. Periodic heartbeat events keep
// @Description  proxies from closing idle connections.
// @Tags         stream
// @Produce      text/event-stream
// @Param        X-Store-ID header string false "Store ID (required for all-store users)"
// @Success      200 {string} string "event stream"
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stream/stock [get]
func (h *StreamHandler) Stock(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID := ""
	if id, uidErr := getUserID(c); uidErr == nil {
		userID = id.String()
	}

	client, err := h.hub.Register(storeID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.hub.Unregister(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	ctx := c.Request.Context()
	rc := http.NewResponseController(c.Writer)

	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-client.Chan:
			_ = rc.SetWriteDeadline(time.Now().Add(streamWriteWait))
			writeSSE(w, msg)
			return true
		case <-client.Done:
			return false
		case <-ctx.Done():
			return false
		}
	})
}

// writeSSE writes one message in the text/event-stream wire format
func writeSSE(w io.Writer, msg realtime.Message) {
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
