// Package proto defines the JSON envelope types exchanged on the turtle and
// client websocket endpoints, and the encode/decode helpers the sessions use.
//
// The wire format is the externally tagged union layout the original device
// firmware speaks: a packet is either a bare string ("Ping") for variants
// with no payload, or a single-key object ({"Moved": {"direction": ...}})
// whose key names the variant. Both socket kinds share this envelope shape.
package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// splitTagged pulls the variant tag and raw payload out of one wire frame.
// Unit variants arrive as a bare JSON string and yield a nil body.
func splitTagged(payload []byte) (string, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return "", nil, fmt.Errorf("empty packet")
	}
	if trimmed[0] == '"' {
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return "", nil, fmt.Errorf("malformed unit packet: %w", err)
		}
		return tag, nil, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", nil, fmt.Errorf("malformed packet envelope: %w", err)
	}
	if len(envelope) != 1 {
		return "", nil, fmt.Errorf("packet envelope must carry exactly one variant, got %d", len(envelope))
	}
	for tag, body := range envelope {
		return tag, body, nil
	}
	return "", nil, fmt.Errorf("unreachable")
}

// encodeTagged renders a variant with a payload.
func encodeTagged(tag string, inner any) ([]byte, error) {
	body, err := json.Marshal(inner)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{tag: body})
}

// encodeUnit renders a payload-less variant as a bare string.
func encodeUnit(tag string) ([]byte, error) {
	return json.Marshal(tag)
}
