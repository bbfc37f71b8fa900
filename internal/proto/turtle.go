package proto

import (
	"encoding/json"
	"fmt"

	"github.com/Schmarni-Dev/project-trc/internal/game"
)

// SetupInfo is the first frame a device must send after connecting. Older
// firmware revisions also report their initial pose here; when absent the
// turtle keeps whatever pose is persisted.
type SetupInfo struct {
	World    string            `json:"world"`
	ID       game.TurtleIndex  `json:"id"`
	Index    *game.TurtleIndex `json:"index,omitempty"`
	Facing   *game.Orientation `json:"facing,omitempty"`
	Position *game.Pos3        `json:"position,omitempty"`
}

// DecodeSetupInfo parses and normalizes a setup frame. The legacy "index"
// field wins over "id" when both are present, matching old firmware that
// only ever sent "index".
func DecodeSetupInfo(payload []byte) (SetupInfo, error) {
	var info SetupInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return info, fmt.Errorf("malformed setup packet: %w", err)
	}
	if info.Index != nil {
		info.ID = *info.Index
	}
	if info.World == "" {
		return info, fmt.Errorf("setup packet missing world")
	}
	return info, nil
}

// InitialPose resolves the pose a freshly persisted dummy turtle starts with.
func (s SetupInfo) InitialPose() (game.Pos3, game.Orientation) {
	pos := game.PosZero
	facing := game.DefaultOrientation
	if s.Position != nil {
		pos = *s.Position
	}
	if s.Facing != nil {
		facing = *s.Facing
	}
	return pos, facing
}

// TurtlePacket is a device→server frame.
type TurtlePacket interface{ turtlePacket() }

// Moved reports that the device completed one movement step.
type Moved struct {
	Direction game.MoveDirection `json:"direction"`
}

// SetPos overrides the server's stored position, e.g. after a GPS fix.
type SetPos game.Pos3

// SetOrientation overrides the server's stored facing.
type SetOrientation game.Orientation

// SetMaxFuel reports the device's fuel tank capacity.
type SetMaxFuel int32

// FuelUpdate reports the current fuel level.
type FuelUpdate int32

// InventoryUpdate replaces the full sixteen-slot inventory.
type InventoryUpdate game.Inventory

// SelectSlotUpdate reports which slot the device has selected.
// Wire tag: "SelectSlot".
type SelectSlotUpdate uint32

// Blocks is a scan of the three positions the device can inspect. A nil
// entry means the scanner saw air.
type Blocks struct {
	Up    *string `json:"up"`
	Down  *string `json:"down"`
	Front *string `json:"front"`
}

// Ping is a keepalive; it is valid in every session state.
type Ping struct{}

// StdOut carries a line the device printed.
type StdOut string

// Executables lists the programs installed on the device.
type Executables []string

// NameUpdate reports the device's display name.
type NameUpdate string

// ChangeWorld re-homes the device into a different world.
type ChangeWorld string

func (Moved) turtlePacket()            {}
func (SetPos) turtlePacket()           {}
func (SetOrientation) turtlePacket()   {}
func (SetMaxFuel) turtlePacket()       {}
func (FuelUpdate) turtlePacket()       {}
func (InventoryUpdate) turtlePacket()  {}
func (SelectSlotUpdate) turtlePacket() {}
func (Blocks) turtlePacket()           {}
func (Ping) turtlePacket()             {}
func (StdOut) turtlePacket()           {}
func (Executables) turtlePacket()      {}
func (NameUpdate) turtlePacket()       {}
func (ChangeWorld) turtlePacket()      {}

// DecodeTurtlePacket parses one device frame.
func DecodeTurtlePacket(payload []byte) (TurtlePacket, error) {
	tag, body, err := splitTagged(payload)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Moved":
		var v Moved
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		if _, err := game.ParseMoveDirection(string(v.Direction)); err != nil {
			return nil, err
		}
		return v, nil
	case "SetPos":
		var v game.Pos3
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return SetPos(v), nil
	case "SetOrientation":
		var raw string
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, err
		}
		facing, err := game.ParseOrientation(raw)
		if err != nil {
			return nil, err
		}
		return SetOrientation(facing), nil
	case "SetMaxFuel":
		var v int32
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return SetMaxFuel(v), nil
	case "FuelUpdate":
		var v int32
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return FuelUpdate(v), nil
	case "InventoryUpdate":
		var v game.Inventory
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return InventoryUpdate(v), nil
	case "SelectSlot":
		var v uint32
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return SelectSlotUpdate(v), nil
	case "Blocks":
		var v Blocks
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Ping":
		return Ping{}, nil
	case "StdOut":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return StdOut(v), nil
	case "Executables":
		var v []string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return Executables(v), nil
	case "NameUpdate":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return NameUpdate(v), nil
	case "ChangeWorld":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return ChangeWorld(v), nil
	default:
		return nil, fmt.Errorf("unknown turtle packet %q", tag)
	}
}

// EncodeTurtlePacket renders a device frame; used by tests and the schema
// tool, the server itself only decodes this direction.
func EncodeTurtlePacket(p TurtlePacket) ([]byte, error) {
	switch v := p.(type) {
	case Moved:
		return encodeTagged("Moved", v)
	case SetPos:
		return encodeTagged("SetPos", game.Pos3(v))
	case SetOrientation:
		return encodeTagged("SetOrientation", game.Orientation(v))
	case SetMaxFuel:
		return encodeTagged("SetMaxFuel", int32(v))
	case FuelUpdate:
		return encodeTagged("FuelUpdate", int32(v))
	case InventoryUpdate:
		return encodeTagged("InventoryUpdate", game.Inventory(v))
	case SelectSlotUpdate:
		return encodeTagged("SelectSlot", uint32(v))
	case Blocks:
		return encodeTagged("Blocks", v)
	case Ping:
		return encodeUnit("Ping")
	case StdOut:
		return encodeTagged("StdOut", string(v))
	case Executables:
		return encodeTagged("Executables", []string(v))
	case NameUpdate:
		return encodeTagged("NameUpdate", string(v))
	case ChangeWorld:
		return encodeTagged("ChangeWorld", string(v))
	default:
		return nil, fmt.Errorf("unsupported turtle packet %T", p)
	}
}

// TurtleCommand is a server→device frame.
type TurtleCommand interface{ turtleCommand() }

// MoveSteps orders the device to walk a sequence of steps. Wire tag: "Move".
type MoveSteps []game.MoveDirection

// SelectSlot orders the device to select an inventory slot.
type SelectSlot uint32

// PlaceBlock orders the device to place the selected item.
type PlaceBlock struct {
	Dir  game.UpDown `json:"dir"`
	Text *string     `json:"text"`
}

// BreakBlock orders the device to dig.
type BreakBlock struct {
	Dir game.UpDown `json:"dir"`
}

// RunLuaCode ships a chunk of Lua for the device to execute.
type RunLuaCode string

// GetSetupInfo asks the device to (re)send its setup frame.
type GetSetupInfo struct{}

// StdIn forwards a line of viewer input to the device's running program.
type StdIn string

func (MoveSteps) turtleCommand()    {}
func (SelectSlot) turtleCommand()   {}
func (PlaceBlock) turtleCommand()   {}
func (BreakBlock) turtleCommand()   {}
func (RunLuaCode) turtleCommand()   {}
func (GetSetupInfo) turtleCommand() {}
func (StdIn) turtleCommand()        {}

// EncodeTurtleCommand renders a server→device frame.
func EncodeTurtleCommand(c TurtleCommand) ([]byte, error) {
	switch v := c.(type) {
	case MoveSteps:
		return encodeTagged("Move", []game.MoveDirection(v))
	case SelectSlot:
		return encodeTagged("SelectSlot", uint32(v))
	case PlaceBlock:
		return encodeTagged("PlaceBlock", v)
	case BreakBlock:
		return encodeTagged("BreakBlock", v)
	case RunLuaCode:
		return encodeTagged("RunLuaCode", string(v))
	case GetSetupInfo:
		return encodeUnit("GetSetupInfo")
	case StdIn:
		return encodeTagged("StdIn", string(v))
	default:
		return nil, fmt.Errorf("unsupported turtle command %T", c)
	}
}

// DecodeTurtleCommand parses a server→device frame; exercised by tests that
// stand in for the device side.
func DecodeTurtleCommand(payload []byte) (TurtleCommand, error) {
	tag, body, err := splitTagged(payload)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "Move":
		var v []game.MoveDirection
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return MoveSteps(v), nil
	case "SelectSlot":
		var v uint32
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return SelectSlot(v), nil
	case "PlaceBlock":
		var v PlaceBlock
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "BreakBlock":
		var v BreakBlock
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "RunLuaCode":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return RunLuaCode(v), nil
	case "GetSetupInfo":
		return GetSetupInfo{}, nil
	case "StdIn":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return StdIn(v), nil
	default:
		return nil, fmt.Errorf("unknown turtle command %q", tag)
	}
}
