package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/scheduler"
)

// streamUpgrader mirrors the teacher's permissive CORS stance for its
// own node websocket - the Orderbook API is expected to sit behind a
// reverse proxy that handles origin policy.
var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const streamPollInterval = 2 * time.Second

// handleStream implements GET /orders/id/{create_id}/stream: a
// websocket subscription that pushes a new Order snapshot every time
// its projected status changes, replacing the lost polling promise
// noted in the design notes' Open Questions with an explicit channel.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	createID := r.PathValue("create_id")
	o, err := h.lookupOrder(r, createID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("httpapi: websocket upgrade failed", "create_id", createID, "err", err)
		return
	}
	defer conn.Close()

	go drainReads(conn)

	if err := writeSnapshot(conn, o); err != nil {
		return
	}

	lastStatus := order.Project(o)
	ctx := r.Context()
	for {
		if err := scheduler.Sleep(ctx, streamPollInterval); err != nil {
			return
		}

		current, err := h.store.GetByCreateID(ctx, createID)
		if err != nil {
			continue // transient lookup failure: retry next tick
		}
		status := order.Project(current)
		if status == lastStatus {
			continue
		}
		lastStatus = status
		if err := writeSnapshot(conn, current); err != nil {
			return
		}
		if status == order.StatusCompleted || status == order.StatusRefunded {
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, o *order.Order) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	data, err := json.Marshal(orderView(o))
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// drainReads discards any client-sent frames (this stream is
// server-push only) until the connection closes, so a client's
// keep-alive pongs don't pile up unread.
func drainReads(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
