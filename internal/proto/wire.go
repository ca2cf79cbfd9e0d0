package proto

import (
	"fmt"
	"time"

	"github.com/bfix/gospel/data"
)

func timeFromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func unixNanoFromTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// wireHeader is the leading type tag every on-wire variant starts with --
// the same "decode a small fixed header first, then dispatch on its type
// field" idiom gnunet/message.MessageHeader/GetMsgHeader uses, narrowed to
// just the discriminator since framing (length prefix for streams, the
// datagram boundary for UDP) is already handled one layer up in this
// package's EncodeFrame/DecodeFrame.
type wireHeader struct {
	MsgType uint16 `order:"big"`
}

// wireAddr mirrors proto.Header: every variant below embeds it so
// FromID/ToID/Sequence/Time survive the round trip. Go strings aren't a
// gospel/data primitive, so each carries an explicit length prefix the way
// gnunet/message's variable-length fields do (e.g. msg_gns.go's
// `Name []byte size:"*"`, `Records []*ResourceRecord size:"Count"`).
type wireAddr struct {
	FromLen  uint8 `order:"big"`
	From     []byte `size:"FromLen"`
	ToLen    uint8 `order:"big"`
	To       []byte `size:"ToLen"`
	Sequence uint64 `order:"big"`
	Time     int64 `order:"big"` // UnixNano; time.Time itself isn't tag-able
}

func (a wireAddr) toHeader() *Header {
	if len(a.From) == 0 && len(a.To) == 0 && a.Sequence == 0 && a.Time == 0 {
		return nil
	}
	return &Header{
		FromID:   string(a.From),
		ToID:     string(a.To),
		Sequence: a.Sequence,
		Time:     timeFromUnixNano(a.Time),
	}
}

func addrFromHeader(h *Header) wireAddr {
	if h == nil {
		return wireAddr{}
	}
	return wireAddr{
		FromLen:  uint8(len(h.FromID)),
		From:     []byte(h.FromID),
		ToLen:    uint8(len(h.ToID)),
		To:       []byte(h.ToID),
		Sequence: h.Sequence,
		Time:     unixNanoFromTime(h.Time),
	}
}

type wirePing struct {
	wireHeader
	wireAddr
	Commander    uint8  `order:"big"`
	ActiveLen    uint8  `order:"big"`
	ActiveNode   []byte `size:"ActiveLen"`
}

type wireInputEvent struct {
	wireHeader
	wireAddr
	Kind  uint8 `order:"big"`
	Code  int32 `order:"big"`
	Down  uint8 `order:"big"`
	Delta int32 `order:"big"`
}

type wireActiveNodeChanged struct {
	wireHeader
	wireAddr
	NameLen uint8  `order:"big"`
	Name    []byte `size:"NameLen"`
}

type wireClipboard struct {
	wireHeader
	wireAddr
	DataLen  uint32 `order:"big"`
	Data     []byte `size:"DataLen"`
	MimeLen  uint8  `order:"big"`
	MimeType []byte `size:"MimeLen"`
}

// toWire picks the one wire variant m's payload selects and fills it in,
// mirroring the teacher's per-type NewXxxMsg constructors.
func toWire(m *Message) (interface{}, error) {
	addr := addrFromHeader(m.Header)
	switch {
	case m.Ping != nil:
		w := &wirePing{wireHeader: wireHeader{MsgType: uint16(PayloadPing)}, wireAddr: addr}
		w.ActiveLen = uint8(len(m.Ping.ActiveNode))
		w.ActiveNode = []byte(m.Ping.ActiveNode)
		if m.Ping.Commander {
			w.Commander = 1
		}
		return w, nil

	case m.InputEvent != nil:
		w := &wireInputEvent{wireHeader: wireHeader{MsgType: uint16(PayloadInputEvent)}, wireAddr: addr}
		w.Kind = uint8(m.InputEvent.Kind)
		w.Code = m.InputEvent.Code
		w.Delta = m.InputEvent.Delta
		if m.InputEvent.Down {
			w.Down = 1
		}
		return w, nil

	case m.ActiveNodeChanged != nil:
		w := &wireActiveNodeChanged{wireHeader: wireHeader{MsgType: uint16(PayloadActiveNodeChanged)}, wireAddr: addr}
		w.NameLen = uint8(len(m.ActiveNodeChanged.Name))
		w.Name = []byte(m.ActiveNodeChanged.Name)
		return w, nil

	case m.Clipboard != nil:
		w := &wireClipboard{wireHeader: wireHeader{MsgType: uint16(PayloadClipboard)}, wireAddr: addr}
		w.DataLen = uint32(len(m.Clipboard.Data))
		w.Data = m.Clipboard.Data
		w.MimeLen = uint8(len(m.Clipboard.MimeType))
		w.MimeType = []byte(m.Clipboard.MimeType)
		return w, nil
	}
	return nil, fmt.Errorf("proto: message has no payload")
}

// fromWire is the inverse of toWire, dispatching on the leading MsgType the
// same way gnunet/message.NewEmptyMessage does before handing the buffer to
// data.Unmarshal.
func fromWire(kind uint16, b []byte) (*Message, error) {
	switch PayloadKind(kind) {
	case PayloadPing:
		var w wirePing
		if err := data.Unmarshal(&w, b); err != nil {
			return nil, err
		}
		return &Message{
			Header: w.wireAddr.toHeader(),
			Ping:   &Ping{Commander: w.Commander != 0, ActiveNode: string(w.ActiveNode)},
		}, nil

	case PayloadInputEvent:
		var w wireInputEvent
		if err := data.Unmarshal(&w, b); err != nil {
			return nil, err
		}
		return &Message{
			Header: w.wireAddr.toHeader(),
			InputEvent: &InputEvent{
				Kind:  InputEventKind(w.Kind),
				Code:  w.Code,
				Down:  w.Down != 0,
				Delta: w.Delta,
			},
		}, nil

	case PayloadActiveNodeChanged:
		var w wireActiveNodeChanged
		if err := data.Unmarshal(&w, b); err != nil {
			return nil, err
		}
		return &Message{
			Header:            w.wireAddr.toHeader(),
			ActiveNodeChanged: &ActiveNodeChanged{Name: string(w.Name)},
		}, nil

	case PayloadClipboard:
		var w wireClipboard
		if err := data.Unmarshal(&w, b); err != nil {
			return nil, err
		}
		return &Message{
			Header:    w.wireAddr.toHeader(),
			Clipboard: &Clipboard{Data: w.Data, MimeType: string(w.MimeType)},
		}, nil
	}
	return nil, fmt.Errorf("proto: unknown message type %d", kind)
}
