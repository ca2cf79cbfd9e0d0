package proto

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	msg := &Message{
		Header: &Header{FromID: "a", ToID: "b"},
		Ping:   &Ping{Commander: true, ActiveNode: "b"},
	}

	var buf bytes.Buffer
	if err := EncodeFrame(&buf, msg); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeFrame(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Header.FromID != "a" || got.Header.ToID != "b" {
		t.Fatalf("header mismatch: %+v", got.Header)
	}
	if !got.Ping.Commander || got.Ping.ActiveNode != "b" {
		t.Fatalf("ping mismatch: %+v", got.Ping)
	}
}

func TestDatagramRoundTrip(t *testing.T) {
	msg := &Message{InputEvent: &InputEvent{Kind: EventKey, Code: 29, Down: true}}

	b, err := EncodeDatagram(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeDatagram(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.InputEvent == nil || got.InputEvent.Code != 29 || !got.InputEvent.Down {
		t.Fatalf("input event mismatch: %+v", got.InputEvent)
	}
}

func TestDecodeDatagramGarbageDropsOnly(t *testing.T) {
	if _, err := DecodeDatagram([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Fatalf("expected decode error for garbage datagram")
	}
}
