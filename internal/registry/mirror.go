package registry

import (
	"sort"

	"github.com/Schmarni-Dev/project-trc/internal/game"
)

// The registry answers roster and world-list requests from an in-memory
// mirror of the persisted turtles and world names, loaded once at startup
// and written through on every mutation. The message loop itself never
// reads the database.

// loadMirror seeds the mirror from the store. It runs once, before the
// message loop starts; a failed load starts the mirror empty and lets
// reconnecting turtles repopulate it.
func (r *Registry) loadMirror() {
	ctx, cancel := storeCtx()
	defer cancel()

	worlds, err := r.store.Worlds(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load world list, starting with an empty mirror")
		return
	}
	total := 0
	for _, world := range worlds {
		r.worldNames[world] = struct{}{}
		turtles, err := r.store.GetTurtles(ctx, world)
		if err != nil {
			r.logger.Error().Err(err).Str("world", world).Msg("failed to load persisted turtles")
			continue
		}
		for _, t := range turtles {
			r.rememberTurtle(t)
			total++
		}
	}
	r.logger.Info().Int("worlds", len(worlds)).Int("turtles", total).Msg("persisted mirror loaded")
}

// rememberTurtle records the latest known state of a logical turtle. Mirror
// entries are always stored offline; the online maps decide online flags.
func (r *Registry) rememberTurtle(t game.Turtle) {
	t = t.Snapshot()
	t.IsOnline = false
	world, ok := r.known[t.World]
	if !ok {
		world = make(map[game.TurtleIndex]game.Turtle)
		r.known[t.World] = world
	}
	world[t.Index] = t
	r.worldNames[t.World] = struct{}{}
}

// forgetTurtle drops a logical turtle from one world's mirror, used when it
// re-homes into another world.
func (r *Registry) forgetTurtle(index game.TurtleIndex, world string) {
	if m, ok := r.known[world]; ok {
		delete(m, index)
	}
}

// knownWorlds lists every world name in the mirror, sorted.
func (r *Registry) knownWorlds() []string {
	names := make([]string, 0, len(r.worldNames))
	for name := range r.worldNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
