package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Schmarni-Dev/project-trc/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureWorld_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.EnsureWorld(ctx, "overworld"); err != nil {
			t.Fatalf("EnsureWorld run %d: %v", i, err)
		}
	}
	if err := s.EnsureWorld(ctx, "nether"); err != nil {
		t.Fatalf("EnsureWorld nether: %v", err)
	}

	names, err := s.Worlds(ctx)
	if err != nil {
		t.Fatalf("Worlds: %v", err)
	}
	if len(names) != 2 || names[0] != "nether" || names[1] != "overworld" {
		t.Fatalf("Worlds = %v", names)
	}
}

func TestGetTurtle_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetTurtle(ctx, 1, "overworld"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateDummyTurtle_PersistsDefaults(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateDummyTurtle(ctx, 7, "overworld", game.NewPos3(1, 64, -3), game.East)
	if err != nil {
		t.Fatalf("CreateDummyTurtle: %v", err)
	}
	if created.Index != 7 || created.Orientation != game.East {
		t.Fatalf("created = %+v", created)
	}

	loaded, err := s.GetTurtle(ctx, 7, "overworld")
	if err != nil {
		t.Fatalf("GetTurtle: %v", err)
	}
	if loaded.Position != game.NewPos3(1, 64, -3) || loaded.Orientation != game.East {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.IsOnline {
		t.Fatalf("persisted turtles load offline")
	}
}

func TestUpsertTurtle_RoundTripsInventory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	turtle := game.NewDummyTurtle(1, "overworld", game.PosZero, game.North)
	turtle.Name = "digger-1"
	turtle.Fuel = 800
	turtle.MaxFuel = 20000
	turtle.Inventory.SetSlot(0, &game.Item{Amount: 12, MaxStackSize: 64, ItemID: "minecraft:coal", ItemName: "Coal"})
	turtle.Inventory.Select(0)

	if err := s.EnsureWorld(ctx, "overworld"); err != nil {
		t.Fatalf("EnsureWorld: %v", err)
	}
	if err := s.UpsertTurtle(ctx, turtle); err != nil {
		t.Fatalf("UpsertTurtle: %v", err)
	}

	loaded, err := s.GetTurtle(ctx, 1, "overworld")
	if err != nil {
		t.Fatalf("GetTurtle: %v", err)
	}
	if loaded.Name != "digger-1" || loaded.Fuel != 800 || loaded.MaxFuel != 20000 {
		t.Fatalf("loaded = %+v", loaded)
	}
	slot := loaded.Inventory.Slots[0]
	if slot == nil || slot.Amount != 12 || slot.ItemID != "minecraft:coal" {
		t.Fatalf("inventory slot lost: %+v", slot)
	}
	if loaded.Inventory.SelectedSlot != 0 {
		t.Fatalf("selected slot = %d", loaded.Inventory.SelectedSlot)
	}
}

func TestUpsertTurtle_SameIndexDifferentWorlds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateDummyTurtle(ctx, 1, "overworld", game.PosZero, game.North); err != nil {
		t.Fatalf("create overworld row: %v", err)
	}
	if _, err := s.CreateDummyTurtle(ctx, 1, "nether", game.NewPos3(9, 9, 9), game.South); err != nil {
		t.Fatalf("create nether row: %v", err)
	}

	nether, err := s.GetTurtle(ctx, 1, "nether")
	if err != nil {
		t.Fatalf("GetTurtle nether: %v", err)
	}
	if nether.Position != game.NewPos3(9, 9, 9) {
		t.Fatalf("world rows collided: %+v", nether)
	}
}

func TestFieldUpdates_TouchOnlyTheirColumn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateDummyTurtle(ctx, 2, "overworld", game.PosZero, game.North); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdatePosition(ctx, 2, "overworld", game.NewPos3(0, 0, -5)); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if err := s.UpdateOrientation(ctx, 2, "overworld", game.West); err != nil {
		t.Fatalf("UpdateOrientation: %v", err)
	}
	if err := s.UpdateFuel(ctx, 2, "overworld", 123); err != nil {
		t.Fatalf("UpdateFuel: %v", err)
	}
	if err := s.UpdateMaxFuel(ctx, 2, "overworld", 20000); err != nil {
		t.Fatalf("UpdateMaxFuel: %v", err)
	}
	if err := s.UpdateName(ctx, 2, "overworld", "miner-2"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}

	var inv game.Inventory
	inv.SetSlot(3, &game.Item{Amount: 1, ItemID: "minecraft:torch"})
	if err := s.UpdateInventory(ctx, 2, "overworld", inv); err != nil {
		t.Fatalf("UpdateInventory: %v", err)
	}

	loaded, err := s.GetTurtle(ctx, 2, "overworld")
	if err != nil {
		t.Fatalf("GetTurtle: %v", err)
	}
	if loaded.Position != game.NewPos3(0, 0, -5) ||
		loaded.Orientation != game.West ||
		loaded.Fuel != 123 ||
		loaded.MaxFuel != 20000 ||
		loaded.Name != "miner-2" {
		t.Fatalf("loaded = %+v", loaded)
	}
	if loaded.Inventory.Slots[3] == nil || loaded.Inventory.Slots[3].ItemID != "minecraft:torch" {
		t.Fatalf("inventory update lost: %+v", loaded.Inventory.Slots[3])
	}
}

func TestUpdateWorld_MovesRowAndCreatesDestination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateDummyTurtle(ctx, 4, "overworld", game.PosZero, game.North); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.UpdateWorld(ctx, 4, "overworld", "nether"); err != nil {
		t.Fatalf("UpdateWorld: %v", err)
	}

	if _, err := s.GetTurtle(ctx, 4, "overworld"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("row should have left overworld, got %v", err)
	}
	if _, err := s.GetTurtle(ctx, 4, "nether"); err != nil {
		t.Fatalf("row should exist in nether: %v", err)
	}

	names, err := s.Worlds(ctx)
	if err != nil {
		t.Fatalf("Worlds: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("destination world not created: %v", names)
	}
}

func TestSetBlock_UpsertsByPosition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EnsureWorld(ctx, "overworld"); err != nil {
		t.Fatalf("EnsureWorld: %v", err)
	}

	pos := game.NewPos3(-20, 5, 40)
	id := "minecraft:stone"
	if err := s.SetBlock(ctx, game.NewBlock(&id, pos, "overworld")); err != nil {
		t.Fatalf("SetBlock stone: %v", err)
	}
	// A later scan of the same position saw air; the row flips rather than
	// duplicating.
	if err := s.SetBlock(ctx, game.NewBlock(nil, pos, "overworld")); err != nil {
		t.Fatalf("SetBlock air: %v", err)
	}

	world, err := s.GetWorld(ctx, "overworld")
	if err != nil {
		t.Fatalf("GetWorld: %v", err)
	}
	b, ok := world.GetBlock(pos)
	if !ok {
		t.Fatalf("block row missing after upsert")
	}
	if !b.IsAir {
		t.Fatalf("expected air after overwrite, got %+v", b)
	}
}

func TestGetWorld_AssemblesChunks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.EnsureWorld(ctx, "overworld"); err != nil {
		t.Fatalf("EnsureWorld: %v", err)
	}

	stone := "minecraft:stone"
	dirt := "minecraft:dirt"
	blocks := []game.Block{
		game.NewBlock(&stone, game.NewPos3(0, 60, 0), "overworld"),
		game.NewBlock(&dirt, game.NewPos3(1, 60, 0), "overworld"),
		game.NewBlock(&stone, game.NewPos3(100, -40, -100), "overworld"),
	}
	for _, b := range blocks {
		if err := s.SetBlock(ctx, b); err != nil {
			t.Fatalf("SetBlock %v: %v", b.Pos, err)
		}
	}

	world, err := s.GetWorld(ctx, "overworld")
	if err != nil {
		t.Fatalf("GetWorld: %v", err)
	}
	if len(world.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(world.Chunks))
	}
	for _, want := range blocks {
		got, ok := world.GetBlock(want.Pos)
		if !ok || got.ID != want.ID {
			t.Fatalf("block at %v lost: %+v ok=%v", want.Pos, got, ok)
		}
	}
}
