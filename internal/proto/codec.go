package proto

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bfix/gospel/data"
)

// maxFrameSize guards against a corrupt length prefix turning into an
// unbounded allocation.
const maxFrameSize = 1 << 20

// EncodeFrame serializes m and writes it to w as a 4-byte big-endian
// length prefix followed by its gospel/data-encoded payload. Used by
// stream-based connectors (the input Unix socket). Mirrors the teacher's
// own length-delimited framing in transport/reader_writer.go, with
// data.Marshal standing in for its data.Marshal(msg) call.
func EncodeFrame(w io.Writer, m *Message) error {
	body, err := encode(m)
	if err != nil {
		return err
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// DecodeFrame reads one length-prefixed frame from r and decodes it.
func DecodeFrame(r io.Reader) (*Message, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("proto: frame too large (%d bytes)", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return decode(body)
}

// EncodeDatagram serializes m for a single UDP datagram -- no length
// prefix needed since a datagram is already a discrete frame.
func EncodeDatagram(m *Message) ([]byte, error) {
	return encode(m)
}

// DecodeDatagram decodes one UDP datagram payload. A decode error here
// means only this datagram is dropped; netconn.Stream.Next logs and drops
// it without propagating to the coordinator (spec.md §4.3, §7.2).
func DecodeDatagram(b []byte) (*Message, error) {
	return decode(b)
}

// encode marshals m through gospel/data the same way the teacher marshals
// every gnunet/message type (data.Marshal against a tagged struct), here
// against the wire-format shadow of m that toWire selects.
func encode(m *Message) ([]byte, error) {
	w, err := toWire(m)
	if err != nil {
		return nil, fmt.Errorf("proto: encode: %w", err)
	}
	b, err := data.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("proto: encode: %w", err)
	}
	return b, nil
}

// decode mirrors gnunet/message.GetMsgHeader + NewEmptyMessage +
// data.Unmarshal: peek the leading MsgType, construct the matching wire
// variant, then unmarshal the full buffer into it.
func decode(b []byte) (*Message, error) {
	var h wireHeader
	if err := data.Unmarshal(&h, b); err != nil {
		return nil, fmt.Errorf("proto: decode: %w", err)
	}
	m, err := fromWire(h.MsgType, b)
	if err != nil {
		return nil, fmt.Errorf("proto: decode: %w", err)
	}
	return m, nil
}
