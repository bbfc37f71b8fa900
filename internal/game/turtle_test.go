package game

import "testing"

func TestNewDummyTurtle_DefaultsFacing(t *testing.T) {
	turtle := NewDummyTurtle(7, "overworld", NewPos3(1, 64, -3), "")
	if turtle.Orientation != DefaultOrientation {
		t.Fatalf("empty facing should default to %s, got %s", DefaultOrientation, turtle.Orientation)
	}
	if turtle.Index != 7 || turtle.World != "overworld" {
		t.Fatalf("unexpected identity %d/%q", turtle.Index, turtle.World)
	}
	if turtle.IsOnline {
		t.Fatalf("dummy turtles are persisted offline")
	}
}

func TestTurtle_MoveUpdatesPose(t *testing.T) {
	turtle := NewDummyTurtle(1, "overworld", PosZero, North)
	turtle.Move(MoveForward)
	turtle.Move(MoveRight)
	turtle.Move(MoveForward)

	if turtle.Position != (Pos3{X: 1, Z: -1}) {
		t.Fatalf("expected (1,0,-1), got %v", turtle.Position)
	}
	if turtle.Orientation != East {
		t.Fatalf("expected East, got %s", turtle.Orientation)
	}
}

func TestTurtle_AimOffset(t *testing.T) {
	turtle := NewDummyTurtle(1, "overworld", NewPos3(10, 70, 10), West)
	if got := turtle.AimOffset(AimForward); got != (Pos3{X: 9, Y: 70, Z: 10}) {
		t.Fatalf("forward aim = %v", got)
	}
	if got := turtle.AimOffset(AimUp); got != (Pos3{X: 10, Y: 71, Z: 10}) {
		t.Fatalf("up aim = %v", got)
	}
	if got := turtle.AimOffset(AimDown); got != (Pos3{X: 10, Y: 69, Z: 10}) {
		t.Fatalf("down aim = %v", got)
	}
}

func TestTurtle_SnapshotDetachesInventory(t *testing.T) {
	turtle := NewDummyTurtle(1, "overworld", PosZero, North)
	turtle.Inventory.SetSlot(2, &Item{Amount: 1, ItemID: "minecraft:torch"})

	snap := turtle.Snapshot()
	snap.Inventory.Slots[2].Amount = 64

	if turtle.Inventory.Slots[2].Amount != 1 {
		t.Fatalf("snapshot aliases the live inventory")
	}
}
