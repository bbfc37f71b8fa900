package proto

import (
	"encoding/json"
	"fmt"

	"github.com/Schmarni-Dev/project-trc/internal/game"
)

// ClientPacket is a viewer→server frame.
type ClientPacket interface{ clientPacket() }

// RequestTurtles asks for the full roster of a world and switches the
// viewer's subscription to it.
type RequestTurtles string

// RequestWorld asks for a full block snapshot of a world.
type RequestWorld string

// RequestWorlds asks for the list of known world names.
type RequestWorlds struct{}

// MoveTurtle steers one turtle a single step.
type MoveTurtle struct {
	Index     game.TurtleIndex   `json:"index"`
	World     string             `json:"world"`
	Direction game.MoveDirection `json:"direction"`
}

// TurtleSelectSlot changes one turtle's selected inventory slot.
type TurtleSelectSlot struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Slot  uint32           `json:"slot"`
}

// PlaceBlockRequest has one turtle place its selected item.
// Wire tag: "PlaceBlock".
type PlaceBlockRequest struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Dir   game.UpDown      `json:"dir"`
	Text  *string          `json:"text"`
}

// BreakBlockRequest has one turtle dig. Wire tag: "BreakBlock".
type BreakBlockRequest struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Dir   game.UpDown      `json:"dir"`
}

// SendLuaToTurtle ships Lua source to one turtle.
type SendLuaToTurtle struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Code  string           `json:"code"`
}

// StdInForTurtle forwards viewer-typed input to one turtle's stdin.
type StdInForTurtle struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Value string           `json:"value"`
}

func (RequestTurtles) clientPacket()    {}
func (RequestWorld) clientPacket()      {}
func (RequestWorlds) clientPacket()     {}
func (MoveTurtle) clientPacket()        {}
func (TurtleSelectSlot) clientPacket()  {}
func (PlaceBlockRequest) clientPacket() {}
func (BreakBlockRequest) clientPacket() {}
func (SendLuaToTurtle) clientPacket()   {}
func (StdInForTurtle) clientPacket()    {}

// DecodeClientPacket parses one viewer frame.
func DecodeClientPacket(payload []byte) (ClientPacket, error) {
	tag, body, err := splitTagged(payload)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "RequestTurtles":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return RequestTurtles(v), nil
	case "RequestWorld":
		var v string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return RequestWorld(v), nil
	case "RequestWorlds":
		return RequestWorlds{}, nil
	case "MoveTurtle":
		var v MoveTurtle
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		if _, err := game.ParseMoveDirection(string(v.Direction)); err != nil {
			return nil, err
		}
		return v, nil
	case "TurtleSelectSlot":
		var v TurtleSelectSlot
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "PlaceBlock":
		var v PlaceBlockRequest
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "BreakBlock":
		var v BreakBlockRequest
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "SendLuaToTurtle":
		var v SendLuaToTurtle
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "StdInForTurtle":
		var v StdInForTurtle
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown client packet %q", tag)
	}
}

// EncodeClientPacket renders a viewer frame; used by tests standing in for
// the viewer side.
func EncodeClientPacket(p ClientPacket) ([]byte, error) {
	switch v := p.(type) {
	case RequestTurtles:
		return encodeTagged("RequestTurtles", string(v))
	case RequestWorld:
		return encodeTagged("RequestWorld", string(v))
	case RequestWorlds:
		return encodeUnit("RequestWorlds")
	case MoveTurtle:
		return encodeTagged("MoveTurtle", v)
	case TurtleSelectSlot:
		return encodeTagged("TurtleSelectSlot", v)
	case PlaceBlockRequest:
		return encodeTagged("PlaceBlock", v)
	case BreakBlockRequest:
		return encodeTagged("BreakBlock", v)
	case SendLuaToTurtle:
		return encodeTagged("SendLuaToTurtle", v)
	case StdInForTurtle:
		return encodeTagged("StdInForTurtle", v)
	default:
		return nil, fmt.Errorf("unsupported client packet %T", p)
	}
}

// ClientEvent is a server→viewer frame.
type ClientEvent interface{ clientEvent() }

// SetTurtles replaces the viewer's roster for one world.
type SetTurtles struct {
	Turtles []game.Turtle `json:"turtles"`
	World   string        `json:"world"`
}

// Worlds lists every known world name.
type Worlds []string

// SetWorld replaces the viewer's block snapshot.
type SetWorld struct {
	World *game.World
}

// WorldUpdate is a single-block delta.
type WorldUpdate game.Block

// MovedTurtle is the narrow pose delta broadcast after movement.
type MovedTurtle struct {
	Index          game.TurtleIndex `json:"index"`
	World          string           `json:"world"`
	NewOrientation game.Orientation `json:"new_orientation"`
	NewPos         game.Pos3        `json:"new_pos"`
}

// TurtleInventoryUpdate is the narrow inventory delta.
type TurtleInventoryUpdate struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Data  game.Inventory   `json:"data"`
}

// TurtleFuelUpdate is the narrow fuel delta.
type TurtleFuelUpdate struct {
	Index game.TurtleIndex `json:"index"`
	World string           `json:"world"`
	Data  int32            `json:"data"`
}

// StdOutFromTurtle relays a line a turtle printed.
type StdOutFromTurtle struct {
	Index game.TurtleIndex `json:"index"`
	Value string           `json:"value"`
}

func (SetTurtles) clientEvent()            {}
func (Worlds) clientEvent()                {}
func (SetWorld) clientEvent()              {}
func (WorldUpdate) clientEvent()           {}
func (MovedTurtle) clientEvent()           {}
func (TurtleInventoryUpdate) clientEvent() {}
func (TurtleFuelUpdate) clientEvent()      {}
func (StdOutFromTurtle) clientEvent()      {}

// EncodeClientEvent renders a server→viewer frame.
func EncodeClientEvent(e ClientEvent) ([]byte, error) {
	switch v := e.(type) {
	case SetTurtles:
		if v.Turtles == nil {
			v.Turtles = []game.Turtle{}
		}
		return encodeTagged("SetTurtles", v)
	case Worlds:
		return encodeTagged("Worlds", []string(v))
	case SetWorld:
		return encodeTagged("SetWorld", v.World)
	case WorldUpdate:
		return encodeTagged("WorldUpdate", game.Block(v))
	case MovedTurtle:
		return encodeTagged("MovedTurtle", v)
	case TurtleInventoryUpdate:
		return encodeTagged("TurtleInventoryUpdate", v)
	case TurtleFuelUpdate:
		return encodeTagged("TurtleFuelUpdate", v)
	case StdOutFromTurtle:
		return encodeTagged("StdOutFromTurtle", v)
	default:
		return nil, fmt.Errorf("unsupported client event %T", e)
	}
}

// DecodeClientEvent parses a server→viewer frame; exercised by integration
// tests standing in for the viewer.
func DecodeClientEvent(payload []byte) (ClientEvent, error) {
	tag, body, err := splitTagged(payload)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "SetTurtles":
		var v SetTurtles
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "Worlds":
		var v []string
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return Worlds(v), nil
	case "SetWorld":
		var w game.World
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return SetWorld{World: &w}, nil
	case "WorldUpdate":
		var v game.Block
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return WorldUpdate(v), nil
	case "MovedTurtle":
		var v MovedTurtle
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "TurtleInventoryUpdate":
		var v TurtleInventoryUpdate
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "TurtleFuelUpdate":
		var v TurtleFuelUpdate
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "StdOutFromTurtle":
		var v StdOutFromTurtle
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown client event %q", tag)
	}
}
