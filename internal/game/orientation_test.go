package game

import "testing"

func TestForwardVec_CardinalOffsets(t *testing.T) {
	cases := []struct {
		facing Orientation
		want   Pos3
	}{
		{North, Pos3{Z: -1}},
		{East, Pos3{X: 1}},
		{South, Pos3{Z: 1}},
		{West, Pos3{X: -1}},
	}
	for _, tc := range cases {
		if got := tc.facing.ForwardVec(); got != tc.want {
			t.Fatalf("ForwardVec(%s) = %v, want %v", tc.facing, got, tc.want)
		}
	}
}

func TestTurned_FullRotationReturnsHome(t *testing.T) {
	o := North
	for i := 0; i < 4; i++ {
		o = o.Turned(TurnRight)
	}
	if o != North {
		t.Fatalf("four right turns from North landed on %s", o)
	}

	o = North
	for i := 0; i < 4; i++ {
		o = o.Turned(TurnLeft)
	}
	if o != North {
		t.Fatalf("four left turns from North landed on %s", o)
	}
}

func TestTurned_LeftAndRightAreInverse(t *testing.T) {
	for _, start := range []Orientation{North, East, South, West} {
		if got := start.Turned(TurnRight).Turned(TurnLeft); got != start {
			t.Fatalf("right then left from %s landed on %s", start, got)
		}
	}
}

func TestApplyMove_ForwardNorthStepsNegativeZ(t *testing.T) {
	pos, facing := ApplyMove(PosZero, North, MoveForward)
	if pos != (Pos3{Z: -1}) {
		t.Fatalf("expected position (0,0,-1), got %v", pos)
	}
	if facing != North {
		t.Fatalf("forward step should not rotate, got %s", facing)
	}
}

func TestApplyMove_BackIsForwardNegated(t *testing.T) {
	for _, facing := range []Orientation{North, East, South, West} {
		fwd, _ := ApplyMove(PosZero, facing, MoveForward)
		back, _ := ApplyMove(PosZero, facing, MoveBack)
		if fwd.Add(back) != PosZero {
			t.Fatalf("forward %v and back %v from %s do not cancel", fwd, back, facing)
		}
	}
}

func TestApplyMove_RotationsKeepPosition(t *testing.T) {
	start := NewPos3(3, -2, 7)
	pos, facing := ApplyMove(start, East, MoveLeft)
	if pos != start {
		t.Fatalf("left turn moved the turtle to %v", pos)
	}
	if facing != North {
		t.Fatalf("left turn from East should face North, got %s", facing)
	}

	pos, facing = ApplyMove(start, East, MoveRight)
	if pos != start {
		t.Fatalf("right turn moved the turtle to %v", pos)
	}
	if facing != South {
		t.Fatalf("right turn from East should face South, got %s", facing)
	}
}

func TestApplyMove_VerticalStepsIgnoreFacing(t *testing.T) {
	up, facing := ApplyMove(PosZero, West, MoveUp)
	if up != PosUp || facing != West {
		t.Fatalf("up step gave %v facing %s", up, facing)
	}
	down, facing := ApplyMove(PosZero, West, MoveDown)
	if down != PosDown || facing != West {
		t.Fatalf("down step gave %v facing %s", down, facing)
	}
}

func TestParseOrientation_RejectsUnknown(t *testing.T) {
	if _, err := ParseOrientation("NorthEast"); err == nil {
		t.Fatalf("expected error for diagonal orientation")
	}
	got, err := ParseOrientation("South")
	if err != nil {
		t.Fatalf("ParseOrientation(South) returned error: %v", err)
	}
	if got != South {
		t.Fatalf("ParseOrientation(South) = %s", got)
	}
}

func TestParseMoveDirection_RejectsUnknown(t *testing.T) {
	if _, err := ParseMoveDirection("Sideways"); err == nil {
		t.Fatalf("expected error for unknown move direction")
	}
	got, err := ParseMoveDirection("Back")
	if err != nil {
		t.Fatalf("ParseMoveDirection(Back) returned error: %v", err)
	}
	if got != MoveBack {
		t.Fatalf("ParseMoveDirection(Back) = %s", got)
	}
}
