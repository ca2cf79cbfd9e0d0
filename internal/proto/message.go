// Package proto defines the wire message model shared by every connector:
// the input socket, the UDP broadcast socket, and coordinator loopback.
package proto

import "time"

// Header addresses a Message between named nodes. FromID/ToID are
// LAN-unique node names; an empty ToID means broadcast. Sequence and Time
// are informational only -- nothing in the coordinator gates behavior on
// them (spec open question: the original Rust source carries the same
// dormant fields).
type Header struct {
	FromID   string
	ToID     string
	Sequence uint64
	Time     time.Time
}

// PayloadKind discriminates the Message payload variants (the Ping,
// InputEvent, ActiveNodeChanged and Clipboard fields).
type PayloadKind int

const (
	PayloadPing PayloadKind = iota
	PayloadInputEvent
	PayloadActiveNodeChanged
	PayloadClipboard
)

// Ping is the 1Hz heartbeat. ActiveNode is only meaningful when Commander
// is true; non-commanders send it empty.
type Ping struct {
	Commander  bool
	ActiveNode string
}

// InputEventKind discriminates InputEvent.
type InputEventKind int

const (
	EventKey InputEventKind = iota
	EventButton
	EventWheelDelta
	EventXDelta
	EventYDelta
)

// InputEvent carries one captured or synthesized input event. Key and
// Button use Down; the delta kinds use Delta. Code is an opaque integer --
// the core never interprets platform key-code identities (spec.md §9).
type InputEvent struct {
	Kind  InputEventKind
	Code  int32
	Down  bool
	Delta int32
}

// ActiveNodeChanged announces (or requests) that Name is now the active
// node.
type ActiveNodeChanged struct {
	Name string
}

// Clipboard carries clipboard text as raw bytes plus an informational MIME
// type. Only text is meaningfully handled by clipboard.Clipboard today.
type Clipboard struct {
	Data     []byte
	MimeType string
}

// Message is a tagged envelope. Header is nil for loopback/local messages.
// Exactly one of the payload fields should be non-nil; the others are
// always nil. A Message with every payload field nil is a decode failure
// and is dropped by the coordinator (spec.md §3: "unknown payloads are
// logged and ignored").
type Message struct {
	Header            *Header
	Ping              *Ping
	InputEvent        *InputEvent
	ActiveNodeChanged *ActiveNodeChanged
	Clipboard         *Clipboard
}

// HasPayload reports whether m carries a recognized payload variant.
func (m *Message) HasPayload() bool {
	return m.Ping != nil || m.InputEvent != nil || m.ActiveNodeChanged != nil || m.Clipboard != nil
}
