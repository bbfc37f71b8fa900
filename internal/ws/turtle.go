package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Schmarni-Dev/project-trc/internal/game"
	"github.com/Schmarni-Dev/project-trc/internal/proto"
	"github.com/Schmarni-Dev/project-trc/internal/registry"
	"github.com/Schmarni-Dev/project-trc/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Transport security is out of scope; devices and viewers connect from
	// anywhere.
	CheckOrigin: func(*http.Request) bool { return true },
}

// TurtleHandlerConfig wires a turtle endpoint.
type TurtleHandlerConfig struct {
	Registry *registry.Registry
	Store    *store.Store
	Logger   zerolog.Logger
	// IdleTimeout closes sockets that stay silent this long; zero disables.
	IdleTimeout time.Duration
}

// TurtleHandler accepts device connections on /turtle/ws.
type TurtleHandler struct {
	cfg TurtleHandlerConfig
}

// NewTurtleHandler constructs the device endpoint handler.
func NewTurtleHandler(cfg TurtleHandlerConfig) *TurtleHandler {
	cfg.Logger = cfg.Logger.With().Str("component", "turtle_ws").Logger()
	return &TurtleHandler{cfg: cfg}
}

// Handle upgrades one device connection and runs its session to completion.
func (h *TurtleHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Warn().Err(err).Msg("turtle upgrade failed")
		return
	}
	h.serve(conn)
}

// turtleConn adapts a sender to the registry's outbound handle.
type turtleConn struct {
	*sender
}

func (c *turtleConn) Send(cmd proto.TurtleCommand) bool {
	data, err := proto.EncodeTurtleCommand(cmd)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to encode turtle command")
		return true
	}
	return c.send(data)
}

func (c *turtleConn) Close() {
	c.markDead()
}

// serve runs the session state machine: Connecting → AwaitingSetup → Active
// → Closed. The session forwards every Active-state packet to the registry
// and never mutates authoritative state itself.
func (h *TurtleHandler) serve(conn *websocket.Conn) {
	instanceID := h.cfg.Registry.NewInstanceID()
	logger := h.cfg.Logger.With().Uint64("instance", uint64(instanceID)).Logger()
	out := &turtleConn{sender: newSender(conn, logger)}
	defer out.markDead()

	// Ask the device for its setup frame straight after accept.
	if !out.Send(proto.GetSetupInfo{}) {
		return
	}

	setup, ok := h.awaitSetup(conn, logger)
	if !ok {
		return
	}
	logger = logger.With().Int32("turtle", setup.ID).Str("world", setup.World).Logger()

	turtle, err := h.reconcile(setup)
	if err != nil {
		logger.Error().Err(err).Msg("failed to reconcile turtle against store")
		return
	}

	h.cfg.Registry.TurtleConnected(instanceID, turtle, out)
	// From here the session must emit exactly one removal, on any exit path.
	var removeOnce sync.Once
	remove := func() {
		removeOnce.Do(func() { h.cfg.Registry.RemoveTurtle(instanceID) })
	}
	defer remove()

	for {
		h.refreshDeadline(conn)
		_, payload, err := conn.ReadMessage()
		if err != nil {
			logger.Info().Err(err).Msg("turtle socket closed")
			return
		}
		packet, err := proto.DecodeTurtlePacket(payload)
		if err != nil {
			// Protocol error: close this connection, leave everyone else be.
			logger.Warn().Err(err).Msg("malformed turtle packet, closing connection")
			return
		}
		h.cfg.Registry.TurtlePacket(instanceID, packet)
	}
}

// awaitSetup reads frames until the setup packet arrives. Pings are allowed
// before setup; anything else is a protocol violation that closes the
// connection.
func (h *TurtleHandler) awaitSetup(conn *websocket.Conn, logger zerolog.Logger) (proto.SetupInfo, bool) {
	for {
		h.refreshDeadline(conn)
		_, payload, err := conn.ReadMessage()
		if err != nil {
			logger.Info().Err(err).Msg("turtle socket closed before setup")
			return proto.SetupInfo{}, false
		}
		setup, setupErr := proto.DecodeSetupInfo(payload)
		if setupErr == nil {
			return setup, true
		}
		if packet, err := proto.DecodeTurtlePacket(payload); err == nil {
			if _, isPing := packet.(proto.Ping); isPing {
				continue
			}
		}
		logger.Warn().
			Err(setupErr).
			Msg("expected setup packet, closing connection")
		return proto.SetupInfo{}, false
	}
}

// reconcile merges the connection's identity with the persisted record,
// synthesizing the dummy row on first contact of an unseen (index, world).
func (h *TurtleHandler) reconcile(setup proto.SetupInfo) (game.Turtle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.cfg.Store.EnsureWorld(ctx, setup.World); err != nil {
		return game.Turtle{}, err
	}
	loaded, err := h.cfg.Store.GetTurtle(ctx, setup.ID, setup.World)
	if errors.Is(err, store.ErrNotFound) {
		pos, facing := setup.InitialPose()
		return h.cfg.Store.CreateDummyTurtle(ctx, setup.ID, setup.World, pos, facing)
	}
	return loaded, err
}

func (h *TurtleHandler) refreshDeadline(conn *websocket.Conn) {
	if h.cfg.IdleTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(h.cfg.IdleTimeout))
	}
}
