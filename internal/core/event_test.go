package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeInbound(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"event":"offer","data":{"room_id":"R1","offer":{"sdp":"x"}}}`))
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	if in.Event != EventOffer || string(in.Data["offer"]) != `{"sdp":"x"}` {
		t.Fatalf("decoded = %+v", in)
	}

	for _, raw := range []string{`nope`, `{"data":{}}`, `{"event":""}`, `{"event":"x","data":[1]}`} {
		if _, err := DecodeInbound([]byte(raw)); !errors.Is(err, ErrBadEnvelope) {
			t.Errorf("DecodeInbound(%s) err = %v", raw, err)
		}
	}
}

func TestEncodeKeepsPayloadCharacters(t *testing.T) {
	frame, err := Encode(EventOffer, RelayedOffer{Offer: json.RawMessage(`{"sdp":"a=<x>&y"}`), From: "A"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"event":"offer","data":{"offer":{"sdp":"a=<x>&y"},"from":"A"}}`
	if string(frame) != want {
		t.Fatalf("frame = %s, want %s", frame, want)
	}
}
