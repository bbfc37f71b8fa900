package registry

import (
	"context"

	"github.com/Schmarni-Dev/project-trc/internal/game"
	"github.com/Schmarni-Dev/project-trc/internal/observability"
	"github.com/Schmarni-Dev/project-trc/internal/proto"
)

func (r *Registry) handleTurtleConnected(m turtleConnectedMsg) {
	r.nextSeq++
	entry := &turtleEntry{
		instanceID: m.instanceID,
		seq:        r.nextSeq,
		turtle:     m.turtle,
		handle:     m.handle,
	}
	entry.turtle.IsOnline = true
	r.turtles[m.instanceID] = entry
	r.rememberTurtle(entry.turtle)
	observability.SetOnlineTurtles(len(r.turtles))

	r.logger.Info().
		Int32("turtle", m.turtle.Index).
		Str("world", m.turtle.World).
		Uint64("instance", uint64(m.instanceID)).
		Msg("turtle connected")

	r.broadcastRoster(m.turtle.World)
}

func (r *Registry) handleTurtleRemove(m turtleRemoveMsg) {
	entry, ok := r.turtles[m.instanceID]
	if !ok {
		// Double removal is a no-op; sessions may race their own teardown.
		return
	}
	delete(r.turtles, m.instanceID)
	entry.handle.Close()
	r.rememberTurtle(entry.turtle)
	observability.SetOnlineTurtles(len(r.turtles))

	r.logger.Info().
		Int32("turtle", entry.turtle.Index).
		Str("world", entry.turtle.World).
		Uint64("instance", uint64(m.instanceID)).
		Msg("turtle disconnected")

	r.broadcastRoster(entry.turtle.World)
}

func (r *Registry) handleTurtlePacket(m turtlePacketMsg) {
	entry, ok := r.turtles[m.instanceID]
	if !ok {
		r.logger.Debug().
			Uint64("instance", uint64(m.instanceID)).
			Msg("packet from unknown turtle instance dropped")
		return
	}
	t := &entry.turtle
	index, world := t.Index, t.World

	switch p := m.packet.(type) {
	case proto.Moved:
		t.Move(p.Direction)
		// Two narrow writes so a failure cannot leave a half-updated row.
		pos, facing := t.Position, t.Orientation
		r.persist("position", func(ctx context.Context) error {
			return r.store.UpdatePosition(ctx, index, world, pos)
		})
		r.persist("orientation", func(ctx context.Context) error {
			return r.store.UpdateOrientation(ctx, index, world, facing)
		})
		r.broadcast(world, proto.MovedTurtle{
			Index:          index,
			World:          world,
			NewPos:         t.Position,
			NewOrientation: t.Orientation,
		}, "moved_turtle")

	case proto.SetPos:
		t.Position = game.Pos3(p)
		pos := t.Position
		r.persist("position", func(ctx context.Context) error {
			return r.store.UpdatePosition(ctx, index, world, pos)
		})
		r.broadcast(world, proto.MovedTurtle{
			Index:          index,
			World:          world,
			NewPos:         t.Position,
			NewOrientation: t.Orientation,
		}, "moved_turtle")

	case proto.SetOrientation:
		t.Orientation = game.Orientation(p)
		facing := t.Orientation
		r.persist("orientation", func(ctx context.Context) error {
			return r.store.UpdateOrientation(ctx, index, world, facing)
		})
		r.broadcast(world, proto.MovedTurtle{
			Index:          index,
			World:          world,
			NewPos:         t.Position,
			NewOrientation: t.Orientation,
		}, "moved_turtle")

	case proto.SetMaxFuel:
		t.MaxFuel = int32(p)
		maxFuel := t.MaxFuel
		r.persist("max_fuel", func(ctx context.Context) error {
			return r.store.UpdateMaxFuel(ctx, index, world, maxFuel)
		})

	case proto.FuelUpdate:
		t.Fuel = int32(p)
		fuel := t.Fuel
		r.persist("fuel", func(ctx context.Context) error {
			return r.store.UpdateFuel(ctx, index, world, fuel)
		})
		r.broadcast(world, proto.TurtleFuelUpdate{Index: index, World: world, Data: fuel}, "fuel_update")

	case proto.InventoryUpdate:
		t.Inventory = game.Inventory(p)
		inv := t.Inventory.Clone()
		r.persist("inventory", func(ctx context.Context) error {
			return r.store.UpdateInventory(ctx, index, world, inv)
		})
		r.broadcast(world, proto.TurtleInventoryUpdate{Index: index, World: world, Data: inv}, "inventory_update")

	case proto.SelectSlotUpdate:
		t.Inventory.Select(uint32(p))
		inv := t.Inventory.Clone()
		r.persist("inventory", func(ctx context.Context) error {
			return r.store.UpdateInventory(ctx, index, world, inv)
		})
		r.broadcast(world, proto.TurtleInventoryUpdate{Index: index, World: world, Data: inv}, "inventory_update")

	case proto.Blocks:
		r.handleBlockScan(entry, p)

	case proto.Ping:
		// Keepalive; the session refreshed its read deadline already.

	case proto.StdOut:
		r.broadcast(world, proto.StdOutFromTurtle{Index: index, Value: string(p)}, "stdout")

	case proto.Executables:
		r.logger.Debug().
			Int32("turtle", index).
			Strs("executables", []string(p)).
			Msg("turtle reported executables")

	case proto.NameUpdate:
		t.Name = string(p)
		name := t.Name
		r.persist("name", func(ctx context.Context) error {
			return r.store.UpdateName(ctx, index, world, name)
		})
		r.broadcastRoster(world)

	case proto.ChangeWorld:
		r.handleChangeWorld(entry, string(p))

	default:
		r.logger.Warn().
			Int32("turtle", index).
			Type("packet", m.packet).
			Msg("unhandled turtle packet")
	}

	// Whatever the packet changed, keep the mirror in step.
	r.rememberTurtle(entry.turtle)
}

// handleBlockScan resolves the three scanned positions against the turtle's
// current pose, mirrors them to the store, and fans out block deltas.
func (r *Registry) handleBlockScan(entry *turtleEntry, scan proto.Blocks) {
	t := &entry.turtle
	world := t.World
	blocks := []game.Block{
		game.NewBlock(scan.Up, t.Position.Add(game.PosUp), world),
		game.NewBlock(scan.Down, t.Position.Add(game.PosDown), world),
		game.NewBlock(scan.Front, t.Position.Add(t.Orientation.ForwardVec()), world),
	}
	for _, b := range blocks {
		block := b
		r.persist("block", func(ctx context.Context) error {
			return r.store.SetBlock(ctx, block)
		})
		r.broadcast(world, proto.WorldUpdate(block), "world_update")
	}
}

// handleChangeWorld re-homes a live turtle into another world and refreshes
// the rosters on both sides of the move.
func (r *Registry) handleChangeWorld(entry *turtleEntry, newWorld string) {
	oldWorld := entry.turtle.World
	if newWorld == "" || newWorld == oldWorld {
		return
	}
	entry.turtle.World = newWorld
	index := entry.turtle.Index
	r.forgetTurtle(index, oldWorld)
	r.rememberTurtle(entry.turtle)
	r.persist("world", func(ctx context.Context) error {
		return r.store.UpdateWorld(ctx, index, oldWorld, newWorld)
	})
	r.broadcastRoster(oldWorld)
	r.broadcastRoster(newWorld)
}
