package game

// TurtleIndex is the logical id a turtle reports at setup. It is only unique
// within a world; identity is always the (index, world) pair.
type TurtleIndex = int32

// Turtle is the logical device entity. It survives disconnects: the registry
// flips IsOnline rather than deleting the record.
type Turtle struct {
	Index       TurtleIndex `json:"index"`
	Name        string      `json:"name"`
	Inventory   Inventory   `json:"inventory"`
	Position    Pos3        `json:"position"`
	Orientation Orientation `json:"orientation"`
	Fuel        int32       `json:"fuel"`
	MaxFuel     int32       `json:"max_fuel"`
	World       string      `json:"world"`
	IsOnline    bool        `json:"is_online"`
}

// NewDummyTurtle builds the placeholder row persisted the first time an
// unseen (index, world) pair connects.
func NewDummyTurtle(index TurtleIndex, world string, pos Pos3, facing Orientation) Turtle {
	if facing == "" {
		facing = DefaultOrientation
	}
	return Turtle{
		Index:       index,
		World:       world,
		Position:    pos,
		Orientation: facing,
	}
}

// Snapshot copies the turtle with a detached inventory.
func (t Turtle) Snapshot() Turtle {
	t.Inventory = t.Inventory.Clone()
	return t
}

// Move applies one movement step to the turtle's stored pose.
func (t *Turtle) Move(dir MoveDirection) {
	t.Position, t.Orientation = ApplyMove(t.Position, t.Orientation, dir)
}

// AimOffset resolves a place/break aim into the absolute position it targets,
// given the turtle's current pose.
func (t *Turtle) AimOffset(dir UpDown) Pos3 {
	switch dir {
	case AimUp:
		return t.Position.Add(PosUp)
	case AimDown:
		return t.Position.Add(PosDown)
	default:
		return t.Position.Add(t.Orientation.ForwardVec())
	}
}
