package game

import "fmt"

// Orientation is one of the four cardinal directions a turtle can face.
type Orientation string

const (
	// North faces towards -Z.
	North Orientation = "North"
	// East faces towards +X.
	East Orientation = "East"
	// South faces towards +Z.
	South Orientation = "South"
	// West faces towards -X.
	West Orientation = "West"
)

// DefaultOrientation is assigned to turtles persisted before their first
// setup packet reported a facing.
const DefaultOrientation = North

// ParseOrientation validates a stored or wire orientation value.
func ParseOrientation(value string) (Orientation, error) {
	switch Orientation(value) {
	case North, East, South, West:
		return Orientation(value), nil
	default:
		return "", fmt.Errorf("unknown orientation %q", value)
	}
}

// ForwardVec returns the unit offset one step ahead of the facing.
func (o Orientation) ForwardVec() Pos3 {
	switch o {
	case East:
		return Pos3{X: 1}
	case South:
		return Pos3{Z: 1}
	case West:
		return Pos3{X: -1}
	default:
		return Pos3{Z: -1}
	}
}

// TurnDir selects which way a turtle rotates in place.
type TurnDir int

const (
	TurnLeft TurnDir = iota
	TurnRight
)

// Turned returns the orientation after rotating 90 degrees.
func (o Orientation) Turned(dir TurnDir) Orientation {
	order := [4]Orientation{North, East, South, West}
	idx := 0
	for i, v := range order {
		if v == o {
			idx = i
			break
		}
	}
	if dir == TurnLeft {
		idx += 3
	} else {
		idx++
	}
	return order[idx%4]
}

// MoveDirection is a single movement step reported by or sent to a turtle.
type MoveDirection string

const (
	MoveForward MoveDirection = "Forward"
	MoveBack    MoveDirection = "Back"
	MoveUp      MoveDirection = "Up"
	MoveDown    MoveDirection = "Down"
	MoveLeft    MoveDirection = "Left"
	MoveRight   MoveDirection = "Right"
)

// ParseMoveDirection validates a wire move direction value.
func ParseMoveDirection(value string) (MoveDirection, error) {
	switch MoveDirection(value) {
	case MoveForward, MoveBack, MoveUp, MoveDown, MoveLeft, MoveRight:
		return MoveDirection(value), nil
	default:
		return "", fmt.Errorf("unknown move direction %q", value)
	}
}

// ApplyMove resolves one movement step against a position and facing.
// Left/Right rotate in place; the other four translate.
func ApplyMove(pos Pos3, orientation Orientation, dir MoveDirection) (Pos3, Orientation) {
	switch dir {
	case MoveForward:
		return pos.Add(orientation.ForwardVec()), orientation
	case MoveBack:
		return pos.Sub(orientation.ForwardVec()), orientation
	case MoveUp:
		return pos.Add(PosUp), orientation
	case MoveDown:
		return pos.Add(PosDown), orientation
	case MoveLeft:
		return pos, orientation.Turned(TurnLeft)
	case MoveRight:
		return pos, orientation.Turned(TurnRight)
	default:
		return pos, orientation
	}
}

// UpDown aims a place/break action relative to the turtle body.
type UpDown string

const (
	AimUp      UpDown = "Up"
	AimForward UpDown = "Forward"
	AimDown    UpDown = "Down"
)
