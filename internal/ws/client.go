package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Schmarni-Dev/project-trc/internal/proto"
	"github.com/Schmarni-Dev/project-trc/internal/registry"
)

// ClientHandlerConfig wires a viewer endpoint.
type ClientHandlerConfig struct {
	Registry    *registry.Registry
	Logger      zerolog.Logger
	IdleTimeout time.Duration
}

// ClientHandler accepts viewer connections on /client/ws.
type ClientHandler struct {
	cfg ClientHandlerConfig
}

// NewClientHandler constructs the viewer endpoint handler.
func NewClientHandler(cfg ClientHandlerConfig) *ClientHandler {
	cfg.Logger = cfg.Logger.With().Str("component", "client_ws").Logger()
	return &ClientHandler{cfg: cfg}
}

// Handle upgrades one viewer connection and runs its session to completion.
func (h *ClientHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Warn().Err(err).Msg("client upgrade failed")
		return
	}
	h.serve(conn)
}

// clientConn adapts a sender to the registry's outbound handle.
type clientConn struct {
	*sender
}

func (c *clientConn) Send(ev proto.ClientEvent) bool {
	data, err := proto.EncodeClientEvent(ev)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode client event")
		return true
	}
	return c.send(data)
}

func (c *clientConn) Close() {
	c.markDead()
}

// serve runs one viewer session. Viewers carry no persistent identity: the
// session registers, relays intents, and is forgotten on disconnect.
func (h *ClientHandler) serve(conn *websocket.Conn) {
	sessionID := h.cfg.Registry.NewSessionID()
	logger := h.cfg.Logger.With().Uint64("session", uint64(sessionID)).Logger()
	out := &clientConn{sender: newSender(conn, logger)}
	defer out.markDead()

	h.cfg.Registry.ClientConnected(sessionID, out)
	var killOnce sync.Once
	kill := func() {
		killOnce.Do(func() { h.cfg.Registry.KillClient(sessionID) })
	}
	defer kill()

	for {
		if h.cfg.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			logger.Info().Err(err).Msg("client socket closed")
			return
		}
		packet, err := proto.DecodeClientPacket(payload)
		if err != nil {
			logger.Warn().Err(err).Msg("malformed client packet, closing connection")
			return
		}
		h.cfg.Registry.ClientPacket(sessionID, packet)
	}
}
