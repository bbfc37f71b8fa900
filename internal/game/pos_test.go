package game

import "testing"

func TestPos3_StringReprRoundTrip(t *testing.T) {
	cases := []Pos3{
		{},
		{X: 1, Y: 2, Z: 3},
		{X: -17, Y: 64, Z: -1024},
	}
	for _, pos := range cases {
		got, err := ParsePos3(pos.StringRepr())
		if err != nil {
			t.Fatalf("ParsePos3(%q) returned error: %v", pos.StringRepr(), err)
		}
		if got != pos {
			t.Fatalf("round trip of %v produced %v", pos, got)
		}
	}
}

func TestParsePos3_RejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "1;2", "1;2;3;4", "a;b;c", "1,2,3"} {
		if _, err := ParsePos3(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestPos3_Arithmetic(t *testing.T) {
	a := NewPos3(1, -2, 3)
	b := NewPos3(4, 5, -6)
	if got := a.Add(b); got != (Pos3{X: 5, Y: 3, Z: -3}) {
		t.Fatalf("Add = %v", got)
	}
	if got := a.Sub(b); got != (Pos3{X: -3, Y: -7, Z: 9}) {
		t.Fatalf("Sub = %v", got)
	}
	if got := a.Scale(-2); got != (Pos3{X: -2, Y: 4, Z: -6}) {
		t.Fatalf("Scale = %v", got)
	}
}
