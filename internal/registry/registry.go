// Package registry owns the authoritative in-memory view of which turtles
// and viewers are online and routes every cross-connection interaction.
//
// It is a single-writer actor: sessions never touch each other's state, they
// enqueue messages onto one serialized loop. The loop is the only goroutine
// that reads or writes the online maps, so no locks guard them. The loop
// never touches the database: writes are queued to a single ordered writer
// goroutine, and reads are answered from an in-memory mirror of the
// persisted state, so a slow database can never stall routing.
package registry

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Schmarni-Dev/project-trc/internal/game"
	"github.com/Schmarni-Dev/project-trc/internal/observability"
	"github.com/Schmarni-Dev/project-trc/internal/proto"
	"github.com/Schmarni-Dev/project-trc/internal/store"
)

// InstanceID identifies one live turtle connection. It is random and scoped
// to the process lifetime; the logical turtle it represents is always the
// (index, world) pair. Keeping both distinct is what makes reconnect races
// safe: a late close of a superseded connection removes only its own
// instance, never the replacement.
type InstanceID uint64

// SessionID identifies one live viewer connection.
type SessionID uint64

// TurtleHandle is the outbound side of a turtle session. Send must never
// block the caller; implementations queue onto a writer goroutine and
// report a dead session by returning false.
type TurtleHandle interface {
	Send(cmd proto.TurtleCommand) bool
	Close()
}

// ClientHandle is the outbound side of a viewer session.
type ClientHandle interface {
	Send(ev proto.ClientEvent) bool
	Close()
}

type turtleEntry struct {
	instanceID InstanceID
	seq        uint64
	turtle     game.Turtle
	handle     TurtleHandle
}

type clientEntry struct {
	sessionID SessionID
	world     string
	handle    ClientHandle
}

type message interface{ messageType() string }

type turtleConnectedMsg struct {
	instanceID InstanceID
	turtle     game.Turtle
	handle     TurtleHandle
}

type turtleRemoveMsg struct{ instanceID InstanceID }

type turtlePacketMsg struct {
	instanceID InstanceID
	packet     proto.TurtlePacket
}

type clientConnectedMsg struct {
	sessionID SessionID
	handle    ClientHandle
}

type clientRemoveMsg struct{ sessionID SessionID }

type clientPacketMsg struct {
	sessionID SessionID
	packet    proto.ClientPacket
}

type flushMsg struct{ done chan struct{} }

func (turtleConnectedMsg) messageType() string { return "turtle_connected" }
func (turtleRemoveMsg) messageType() string    { return "turtle_remove" }
func (turtlePacketMsg) messageType() string    { return "turtle_packet" }
func (clientConnectedMsg) messageType() string { return "client_connected" }
func (clientRemoveMsg) messageType() string    { return "client_remove" }
func (clientPacketMsg) messageType() string    { return "client_packet" }
func (flushMsg) messageType() string           { return "flush" }

const (
	inboxSize      = 256
	writeQueueSize = 1024
	storeTimeout   = 10 * time.Second
)

// Registry is the command bus. Construct with New, start with Run.
type Registry struct {
	inbox   chan message
	writes  chan persistJob
	store   *store.Store
	logger  zerolog.Logger
	turtles map[InstanceID]*turtleEntry
	clients map[SessionID]*clientEntry

	// known mirrors the persisted turtles per world, entries always offline.
	known      map[string]map[game.TurtleIndex]game.Turtle
	worldNames map[string]struct{}

	nextSeq uint64
	pending pendingWrites
}

// New builds a registry over the given store.
func New(st *store.Store, logger zerolog.Logger) *Registry {
	return &Registry{
		inbox:      make(chan message, inboxSize),
		writes:     make(chan persistJob, writeQueueSize),
		store:      st,
		logger:     logger.With().Str("component", "registry").Logger(),
		turtles:    make(map[InstanceID]*turtleEntry),
		clients:    make(map[SessionID]*clientEntry),
		known:      make(map[string]map[game.TurtleIndex]game.Turtle),
		worldNames: make(map[string]struct{}),
	}
}

// Run drives the message loop until ctx is cancelled. It is expected to
// outlive every session: errors inside a handler are logged per message and
// never terminate the loop.
func (r *Registry) Run(ctx context.Context) {
	r.loadMirror()
	go r.writeLoop(ctx)
	r.logger.Info().Msg("registry loop started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("registry loop stopped")
			return
		case msg := <-r.inbox:
			r.dispatch(msg)
		}
	}
}

func (r *Registry) dispatch(msg message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("message", msg.messageType()).
				Any("panic", rec).
				Msg("registry handler panicked")
		}
	}()

	observability.RecordRegistryMessage(msg.messageType())

	switch m := msg.(type) {
	case turtleConnectedMsg:
		r.handleTurtleConnected(m)
	case turtleRemoveMsg:
		r.handleTurtleRemove(m)
	case turtlePacketMsg:
		r.handleTurtlePacket(m)
	case clientConnectedMsg:
		r.handleClientConnected(m)
	case clientRemoveMsg:
		r.handleClientRemove(m)
	case clientPacketMsg:
		r.handleClientPacket(m)
	case flushMsg:
		close(m.done)
	}
}

// NewInstanceID mints a random process-scoped id for a turtle connection.
func (r *Registry) NewInstanceID() InstanceID {
	return InstanceID(rand.Uint64())
}

// NewSessionID mints a random process-scoped id for a viewer connection.
func (r *Registry) NewSessionID() SessionID {
	return SessionID(rand.Uint64())
}

// TurtleConnected registers a live turtle session whose setup handshake has
// completed. The session has already reconciled the turtle against the
// store; the registry only merges it into the online map and rebroadcasts.
func (r *Registry) TurtleConnected(id InstanceID, t game.Turtle, h TurtleHandle) {
	r.inbox <- turtleConnectedMsg{instanceID: id, turtle: t, handle: h}
}

// RemoveTurtle reports that a turtle session is gone. Safe to call more
// than once for the same instance id; repeats are no-ops.
func (r *Registry) RemoveTurtle(id InstanceID) {
	r.inbox <- turtleRemoveMsg{instanceID: id}
}

// TurtlePacket forwards one decoded device packet for processing.
func (r *Registry) TurtlePacket(id InstanceID, p proto.TurtlePacket) {
	r.inbox <- turtlePacketMsg{instanceID: id, packet: p}
}

// ClientConnected registers a live viewer session.
func (r *Registry) ClientConnected(id SessionID, h ClientHandle) {
	r.inbox <- clientConnectedMsg{sessionID: id, handle: h}
}

// KillClient reports that a viewer session is gone. Idempotent.
func (r *Registry) KillClient(id SessionID) {
	r.inbox <- clientRemoveMsg{sessionID: id}
}

// ClientPacket forwards one decoded viewer packet for processing.
func (r *Registry) ClientPacket(id SessionID, p proto.ClientPacket) {
	r.inbox <- clientPacketMsg{sessionID: id, packet: p}
}

// Flush blocks until every message enqueued before the call has been
// processed and every persistence write issued by those messages has
// finished. Used on shutdown and by tests that need a quiesced registry.
func (r *Registry) Flush() {
	done := make(chan struct{})
	r.inbox <- flushMsg{done: done}
	<-done
	r.pending.wait()
}

// storeCtx bounds individual store operations done off the loop.
func storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
