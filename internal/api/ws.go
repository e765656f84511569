package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unw4/TrustChain/internal/fanout"
	"github.com/unw4/TrustChain/pkg/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second

	// Client control frames are tiny; anything larger is a protocol error.
	wsMaxMessageSize = 512
)

// wsCommand is the only message clients send: join or leave an asset channel.
type wsCommand struct {
	Action  string `json:"action"`
	AssetID string `json:"assetId"`
}

// WSHandler upgrades connections and bridges them onto the fan-out hub.
// Each connection owns one hub subscriber; subscribe/unsubscribe commands
// move it between asset channels.
type WSHandler struct {
	hub      *fanout.Hub
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewWSHandler builds the websocket endpoint. allowedOrigin restricts the
// Origin header check; "*" accepts any browser origin.
func NewWSHandler(hub *fanout.Hub, allowedOrigin string, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.NewDefault("ws")
	}
	return &WSHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sub := h.hub.NewSubscriber()
	log := h.log.WithField("subscriber", sub.ID())
	log.Info("websocket connected")

	go h.writeLoop(conn, sub, log)
	h.readLoop(conn, sub, log)
}

// readLoop consumes subscribe/unsubscribe commands until the peer goes
// away. Closing the subscriber ends the write loop as well.
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *fanout.Subscriber, log *logger.Logger) {
	defer func() {
		sub.Close()
		conn.Close()
		log.Info("websocket disconnected")
	}()

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		switch cmd.Action {
		case "subscribe":
			if cmd.AssetID != "" {
				h.hub.Subscribe(cmd.AssetID, sub)
				log.WithField("asset_id", cmd.AssetID).Debug("channel joined")
			}
		case "unsubscribe":
			if cmd.AssetID != "" {
				h.hub.Unsubscribe(cmd.AssetID, sub)
				log.WithField("asset_id", cmd.AssetID).Debug("channel left")
			}
		default:
			log.WithField("action", cmd.Action).Debug("ignoring unknown action")
		}
	}
}

// writeLoop drains the subscriber outbox onto the wire and keeps the
// connection alive with pings. It exits when the outbox is closed or a
// write fails.
func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *fanout.Subscriber, log *logger.Logger) {
	ping := time.NewTicker(wsPingInterval)
	defer func() {
		ping.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.WithError(err).Warn("websocket write failed")
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
