package registry

import (
	"github.com/Schmarni-Dev/project-trc/internal/game"
	"github.com/Schmarni-Dev/project-trc/internal/observability"
	"github.com/Schmarni-Dev/project-trc/internal/proto"
)

func (r *Registry) handleClientConnected(m clientConnectedMsg) {
	r.clients[m.sessionID] = &clientEntry{sessionID: m.sessionID, handle: m.handle}
	observability.SetConnectedClients(len(r.clients))
	r.logger.Info().Uint64("session", uint64(m.sessionID)).Msg("viewer connected")
}

func (r *Registry) handleClientRemove(m clientRemoveMsg) {
	entry, ok := r.clients[m.sessionID]
	if !ok {
		// Idempotent: write failures and socket teardown may both report it.
		return
	}
	delete(r.clients, m.sessionID)
	entry.handle.Close()
	observability.SetConnectedClients(len(r.clients))
	r.logger.Info().Uint64("session", uint64(m.sessionID)).Msg("viewer disconnected")
}

func (r *Registry) handleClientPacket(m clientPacketMsg) {
	entry, ok := r.clients[m.sessionID]
	if !ok {
		r.logger.Debug().
			Uint64("session", uint64(m.sessionID)).
			Msg("packet from unknown viewer session dropped")
		return
	}

	switch p := m.packet.(type) {
	case proto.RequestTurtles:
		world := string(p)
		entry.world = world
		r.reply(entry, proto.SetTurtles{Turtles: r.rosterFor(world), World: world})

	case proto.RequestWorld:
		world := string(p)
		entry.world = world
		// Block snapshots can run to megabytes; the read happens on a
		// detached task so the loop keeps routing while it loads.
		handle := entry.handle
		sessionID := entry.sessionID
		r.pending.wg.Add(1)
		go func() {
			defer r.pending.wg.Done()
			ctx, cancel := storeCtx()
			defer cancel()
			snapshot, err := r.store.GetWorld(ctx, world)
			if err != nil {
				r.logger.Error().Err(err).Str("world", world).Msg("failed to load world snapshot")
				snapshot = game.NewWorld(world)
			}
			if !handle.Send(proto.SetWorld{World: snapshot}) {
				r.logger.Debug().
					Uint64("session", uint64(sessionID)).
					Msg("dropping world snapshot for dead viewer session")
			}
		}()

	case proto.RequestWorlds:
		r.reply(entry, proto.Worlds(r.knownWorlds()))

	case proto.MoveTurtle:
		r.routeCommand(p.Index, p.World, proto.MoveSteps{p.Direction})

	case proto.TurtleSelectSlot:
		r.routeCommand(p.Index, p.World, proto.SelectSlot(p.Slot))

	case proto.PlaceBlockRequest:
		r.routeCommand(p.Index, p.World, proto.PlaceBlock{Dir: p.Dir, Text: p.Text})

	case proto.BreakBlockRequest:
		r.routeCommand(p.Index, p.World, proto.BreakBlock{Dir: p.Dir})

	case proto.SendLuaToTurtle:
		r.routeCommand(p.Index, p.World, proto.RunLuaCode(p.Code))

	case proto.StdInForTurtle:
		r.routeCommand(p.Index, p.World, proto.StdIn(p.Value))

	default:
		r.logger.Warn().
			Uint64("session", uint64(m.sessionID)).
			Type("packet", m.packet).
			Msg("unhandled client packet")
	}
}

// reply answers the requesting viewer directly; requests never mutate
// shared state beyond the viewer's own subscription tag.
func (r *Registry) reply(entry *clientEntry, ev proto.ClientEvent) {
	if !entry.handle.Send(ev) {
		r.logger.Debug().
			Uint64("session", uint64(entry.sessionID)).
			Msg("dropping reply to dead viewer session")
	}
}

// routeCommand forwards a viewer command to the live session for the target
// turtle. A miss is not an error: viewer UIs disable controls for offline
// turtles, so the command is dropped with a debug log.
func (r *Registry) routeCommand(index game.TurtleIndex, world string, cmd proto.TurtleCommand) {
	entry, ok := r.liveTurtle(index, world)
	if !ok {
		observability.RecordRouteMiss()
		r.logger.Debug().
			Int32("turtle", index).
			Str("world", world).
			Msg("command for offline turtle dropped")
		return
	}
	if !entry.handle.Send(cmd) {
		r.logger.Debug().
			Int32("turtle", index).
			Str("world", world).
			Msg("command send failed, turtle session closing")
	}
}
