package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos3 is an integer block position or offset.
type Pos3 struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

var (
	PosZero = Pos3{}
	PosUp   = Pos3{Y: 1}
	PosDown = Pos3{Y: -1}
)

func NewPos3(x, y, z int32) Pos3 {
	return Pos3{X: x, Y: y, Z: z}
}

func (p Pos3) Add(o Pos3) Pos3 {
	return Pos3{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

func (p Pos3) Sub(o Pos3) Pos3 {
	return Pos3{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

func (p Pos3) Scale(n int32) Pos3 {
	return Pos3{X: p.X * n, Y: p.Y * n, Z: p.Z * n}
}

// StringRepr renders the "x;y;z" form used by the persisted schema.
func (p Pos3) StringRepr() string {
	return fmt.Sprintf("%d;%d;%d", p.X, p.Y, p.Z)
}

// ParsePos3 parses the "x;y;z" persisted form.
func ParsePos3(s string) (Pos3, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return Pos3{}, fmt.Errorf("malformed position %q", s)
	}
	var out [3]int32
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			return Pos3{}, fmt.Errorf("malformed position %q: %w", s, err)
		}
		out[i] = int32(n)
	}
	return Pos3{X: out[0], Y: out[1], Z: out[2]}, nil
}
