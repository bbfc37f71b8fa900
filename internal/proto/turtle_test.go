package proto

import (
	"testing"

	"github.com/Schmarni-Dev/project-trc/internal/game"
)

func TestDecodeSetupInfo_LegacyIndexWins(t *testing.T) {
	info, err := DecodeSetupInfo([]byte(`{"world":"overworld","id":3,"index":9}`))
	if err != nil {
		t.Fatalf("DecodeSetupInfo returned error: %v", err)
	}
	if info.ID != 9 {
		t.Fatalf("expected legacy index to override id, got %d", info.ID)
	}
	if info.World != "overworld" {
		t.Fatalf("world = %q", info.World)
	}
}

func TestDecodeSetupInfo_RequiresWorld(t *testing.T) {
	if _, err := DecodeSetupInfo([]byte(`{"id":3}`)); err == nil {
		t.Fatalf("expected error for setup frame without world")
	}
}

func TestSetupInfo_InitialPoseDefaults(t *testing.T) {
	var info SetupInfo
	pos, facing := info.InitialPose()
	if pos != game.PosZero || facing != game.DefaultOrientation {
		t.Fatalf("defaults = %v/%s", pos, facing)
	}

	reported := game.NewPos3(4, 64, -2)
	west := game.West
	info.Position = &reported
	info.Facing = &west
	pos, facing = info.InitialPose()
	if pos != reported || facing != game.West {
		t.Fatalf("reported pose lost: %v/%s", pos, facing)
	}
}

func TestDecodeTurtlePacket_WireLiterals(t *testing.T) {
	cases := []struct {
		payload string
		want    TurtlePacket
	}{
		{`{"Moved":{"direction":"Forward"}}`, Moved{Direction: game.MoveForward}},
		{`{"SetPos":{"x":1,"y":-2,"z":3}}`, SetPos(game.NewPos3(1, -2, 3))},
		{`{"SetOrientation":"West"}`, SetOrientation(game.West)},
		{`{"SetMaxFuel":20000}`, SetMaxFuel(20000)},
		{`{"FuelUpdate":512}`, FuelUpdate(512)},
		{`{"SelectSlot":4}`, SelectSlotUpdate(4)},
		{`"Ping"`, Ping{}},
		{`{"StdOut":"hello"}`, StdOut("hello")},
		{`{"NameUpdate":"digger-7"}`, NameUpdate("digger-7")},
		{`{"ChangeWorld":"nether"}`, ChangeWorld("nether")},
	}
	for _, tc := range cases {
		got, err := DecodeTurtlePacket([]byte(tc.payload))
		if err != nil {
			t.Fatalf("decode %s: %v", tc.payload, err)
		}
		if got != tc.want {
			t.Fatalf("decode %s = %#v, want %#v", tc.payload, got, tc.want)
		}
	}
}

func TestDecodeTurtlePacket_BlocksNilMeansAir(t *testing.T) {
	got, err := DecodeTurtlePacket([]byte(`{"Blocks":{"up":null,"down":"minecraft:stone","front":null}}`))
	if err != nil {
		t.Fatalf("decode blocks: %v", err)
	}
	blocks, ok := got.(Blocks)
	if !ok {
		t.Fatalf("decoded %T", got)
	}
	if blocks.Up != nil || blocks.Front != nil {
		t.Fatalf("expected nil scan entries for air")
	}
	if blocks.Down == nil || *blocks.Down != "minecraft:stone" {
		t.Fatalf("down scan lost: %v", blocks.Down)
	}
}

func TestDecodeTurtlePacket_RejectsBadVariants(t *testing.T) {
	for _, payload := range []string{
		`"Pong"`,
		`{"Moved":{"direction":"Sideways"}}`,
		`{"SetOrientation":"Northish"}`,
		`{"FuelUpdate":"lots"}`,
	} {
		if _, err := DecodeTurtlePacket([]byte(payload)); err == nil {
			t.Fatalf("expected error for %s", payload)
		}
	}
}

func TestEncodeTurtleCommand_WireLiterals(t *testing.T) {
	cases := []struct {
		cmd  TurtleCommand
		want string
	}{
		{MoveSteps{game.MoveForward, game.MoveLeft}, `{"Move":["Forward","Left"]}`},
		{SelectSlot(3), `{"SelectSlot":3}`},
		{BreakBlock{Dir: game.AimDown}, `{"BreakBlock":{"dir":"Down"}}`},
		{RunLuaCode(`print("hi")`), `{"RunLuaCode":"print(\"hi\")"}`},
		{GetSetupInfo{}, `"GetSetupInfo"`},
		{StdIn("y"), `{"StdIn":"y"}`},
	}
	for _, tc := range cases {
		data, err := EncodeTurtleCommand(tc.cmd)
		if err != nil {
			t.Fatalf("encode %#v: %v", tc.cmd, err)
		}
		if string(data) != tc.want {
			t.Fatalf("encode %#v = %s, want %s", tc.cmd, data, tc.want)
		}
	}
}

func TestEncodeTurtleCommand_PlaceBlockKeepsNullText(t *testing.T) {
	data, err := EncodeTurtleCommand(PlaceBlock{Dir: game.AimForward})
	if err != nil {
		t.Fatalf("encode place: %v", err)
	}
	if string(data) != `{"PlaceBlock":{"dir":"Forward","text":null}}` {
		t.Fatalf("encode place = %s", data)
	}
}

func TestTurtleCommand_RoundTrip(t *testing.T) {
	sign := "keep out"
	commands := []TurtleCommand{
		MoveSteps{game.MoveUp, game.MoveUp, game.MoveRight},
		PlaceBlock{Dir: game.AimUp, Text: &sign},
		GetSetupInfo{},
	}
	for _, cmd := range commands {
		data, err := EncodeTurtleCommand(cmd)
		if err != nil {
			t.Fatalf("encode %#v: %v", cmd, err)
		}
		got, err := DecodeTurtleCommand(data)
		if err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		switch want := cmd.(type) {
		case MoveSteps:
			steps, ok := got.(MoveSteps)
			if !ok || len(steps) != len(want) {
				t.Fatalf("round trip of %#v produced %#v", cmd, got)
			}
		case PlaceBlock:
			place, ok := got.(PlaceBlock)
			if !ok || place.Dir != want.Dir || place.Text == nil || *place.Text != *want.Text {
				t.Fatalf("round trip of %#v produced %#v", cmd, got)
			}
		default:
			if got != cmd {
				t.Fatalf("round trip of %#v produced %#v", cmd, got)
			}
		}
	}
}
