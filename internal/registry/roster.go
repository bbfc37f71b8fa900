package registry

import (
	"sort"

	"github.com/Schmarni-Dev/project-trc/internal/game"
	"github.com/Schmarni-Dev/project-trc/internal/observability"
	"github.com/Schmarni-Dev/project-trc/internal/proto"
)

// rosterFor recomputes the full turtle list for a world: every online turtle
// in it, plus every mirrored turtle not currently online. Online entries
// win de-duplication by index; among concurrent sessions for the same index
// the most recently connected one wins. The result is always a fresh
// recomputation, never a cached list, and it never touches the store.
func (r *Registry) rosterFor(world string) []game.Turtle {
	newest := make(map[game.TurtleIndex]*turtleEntry)
	for _, entry := range r.turtles {
		if entry.turtle.World != world {
			continue
		}
		if cur, ok := newest[entry.turtle.Index]; !ok || entry.seq > cur.seq {
			newest[entry.turtle.Index] = entry
		}
	}

	roster := make([]game.Turtle, 0, len(newest))
	for _, entry := range newest {
		t := entry.turtle.Snapshot()
		t.IsOnline = true
		roster = append(roster, t)
	}

	for index, t := range r.known[world] {
		if _, online := newest[index]; online {
			continue
		}
		roster = append(roster, t.Snapshot())
	}

	sort.Slice(roster, func(i, j int) bool { return roster[i].Index < roster[j].Index })
	return roster
}

// broadcastRoster recomputes and fans the roster out to every viewer
// subscribed to the world.
func (r *Registry) broadcastRoster(world string) {
	roster := r.rosterFor(world)
	r.broadcast(world, proto.SetTurtles{Turtles: roster, World: world}, "set_turtles")
}

// broadcast sends one event to every viewer subscribed to the world.
func (r *Registry) broadcast(world string, ev proto.ClientEvent, kind string) {
	observability.RecordBroadcast(kind)
	for _, client := range r.clients {
		if client.world != world {
			continue
		}
		if !client.handle.Send(ev) {
			r.logger.Debug().
				Uint64("session", uint64(client.sessionID)).
				Msg("dropping broadcast to dead viewer session")
		}
	}
}

// liveTurtle finds the newest live session for a logical turtle. Routing to
// a live turtle always goes through this lookup, never by instance id from
// outside the registry.
func (r *Registry) liveTurtle(index game.TurtleIndex, world string) (*turtleEntry, bool) {
	var found *turtleEntry
	for _, entry := range r.turtles {
		if entry.turtle.Index != index || entry.turtle.World != world {
			continue
		}
		if found == nil || entry.seq > found.seq {
			found = entry
		}
	}
	return found, found != nil
}
