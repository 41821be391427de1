package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/beanz-y/not-the-end/hero"
)

func TestDecodeConnect(t *testing.T) {
	data := []byte(`{"command":"connect","data":{"name":"Lothar","archetype":"Bounty Hunter","qualities":["Veteran","Cunning","Frightening"]}}`)

	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	connect, ok := msg.(*Connect)
	if !ok {
		t.Fatalf("decoded %T, want *Connect", msg)
	}
	if connect.Data.Name != "Lothar" || connect.Data.Archetype != "Bounty Hunter" {
		t.Errorf("sheet fields: %+v", connect.Data)
	}
	// Decode normalizes the payload sheet.
	if len(connect.Data.Qualities) != hero.NumQualities {
		t.Errorf("qualities not padded: %d slots", len(connect.Data.Qualities))
	}
	if len(connect.Data.Abilities) != hero.NumAbilities {
		t.Errorf("abilities not padded: %d slots", len(connect.Data.Abilities))
	}
}

func TestDecodeStartTest(t *testing.T) {
	msg, err := Decode([]byte(`{"command":"start_test","difficulty":3,"danger":2}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	start, ok := msg.(*StartTest)
	if !ok {
		t.Fatalf("decoded %T, want *StartTest", msg)
	}
	if start.Difficulty != 3 || start.Danger != 2 {
		t.Errorf("params: %+v", start)
	}
}

func TestDecodeDrawResult(t *testing.T) {
	msg, err := Decode([]byte(`{"command":"draw_result","successes":4,"complications":3}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	result, ok := msg.(*DrawResult)
	if !ok {
		t.Fatalf("decoded %T, want *DrawResult", msg)
	}
	if result.Successes != 4 || result.Complications != 3 {
		t.Errorf("tally: %+v", result)
	}
}

func TestDecodeUnknownCommand(t *testing.T) {
	_, err := Decode([]byte(`{"command":"reticulate_splines","level":9}`))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"command":`,
		`{"command":"start_test","difficulty":"three"}`,
	}
	for _, data := range cases {
		_, err := Decode([]byte(data))
		if err == nil {
			t.Errorf("Decode(%q): expected error", data)
		}
		if errors.Is(err, ErrUnknownCommand) {
			t.Errorf("Decode(%q): malformed payload classified as unknown command", data)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sheet := hero.Sheet{Name: "Lilian", Archetype: "Priestess"}
	original := NewUpdateSheet(sheet)

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	msg, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	update, ok := msg.(*UpdateSheet)
	if !ok {
		t.Fatalf("decoded %T, want *UpdateSheet", msg)
	}
	if update.Data.Name != "Lilian" {
		t.Errorf("name = %q", update.Data.Name)
	}
}

func TestEnvelopeCapturesRaw(t *testing.T) {
	data := []byte(`{"command":"connect","data":{"name":"x"}}`)
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Command != "connect" {
		t.Errorf("command = %q", env.Command)
	}
	if string(env.Raw) != string(data) {
		t.Errorf("raw payload not captured: %s", env.Raw)
	}
}
