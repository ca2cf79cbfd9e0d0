// Package netconn implements the Net Connector (spec.md §4.3): a
// conn.Connector over a broadcast UDP socket.
package netconn

import (
	"context"
	"fmt"
	"net"

	"github.com/bfix/gospel/logger"
	"golang.org/x/sys/unix"

	"github.com/markrileybot/rkvm2/internal/conn"
	"github.com/markrileybot/rkvm2/internal/proto"
)

// maxDatagramSize bounds a single recvfrom -- comfortably larger than any
// encoded Ping, InputEvent or ActiveNodeChanged. A Clipboard datagram longer
// than this is truncated on read.
const maxDatagramSize = 8192

// Connector binds a UDP socket enabled for broadcast to broadcastAddr and
// exchanges length-free, datagram-framed proto.Messages with it.
type Connector struct {
	broadcastAddr string
}

// New returns a Net Connector targeting broadcastAddr (host:port, e.g.
// "192.168.24.255:45321" per spec.md §6).
func New(broadcastAddr string) *Connector {
	return &Connector{broadcastAddr: broadcastAddr}
}

func (c *Connector) String() string {
	return fmt.Sprintf("udp broadcast %s", c.broadcastAddr)
}

// Connect binds a UDP socket on the broadcast port (all interfaces),
// enables SO_BROADCAST so outbound sends to broadcastAddr succeed, and
// returns a sink/stream pair framing datagrams with proto.Encode/DecodeDatagram.
func (c *Connector) Connect(ctx context.Context) (conn.MessageSink, conn.MessageStream, error) {
	target, err := net.ResolveUDPAddr("udp4", c.broadcastAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("netconn: resolve %s: %w", c.broadcastAddr, err)
	}

	laddr := &net.UDPAddr{Port: target.Port}
	sock, err := net.ListenUDP("udp4", laddr)
	if err != nil {
		return nil, nil, fmt.Errorf("netconn: listen :%d: %w", target.Port, err)
	}

	if err := enableBroadcast(sock); err != nil {
		sock.Close()
		return nil, nil, fmt.Errorf("netconn: enable broadcast: %w", err)
	}

	return &Sink{conn: sock, target: target}, &Stream{conn: sock}, nil
}

func enableBroadcast(c *net.UDPConn) error {
	raw, err := c.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// Sink sends Messages as UDP datagrams to the broadcast target.
type Sink struct {
	conn   *net.UDPConn
	target *net.UDPAddr
}

func (s *Sink) Send(ctx context.Context, m *proto.Message) error {
	b, err := proto.EncodeDatagram(m)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(b, s.target)
	return err
}

func (s *Sink) Close() error { return s.conn.Close() }

// Stream reads inbound datagrams from any sender on the socket. A single
// malformed datagram is logged and dropped here, without affecting the
// stream (spec.md §4.3, §7 error taxonomy #2).
type Stream struct {
	conn *net.UDPConn
}

func (s *Stream) Next(ctx context.Context) (*proto.Message, error) {
	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return nil, err
		}
		m, err := proto.DecodeDatagram(buf[:n])
		if err != nil {
			logger.Printf(logger.WARN, "netconn: dropping undecodable datagram (%d bytes): %s", n, err)
			continue
		}
		return m, nil
	}
}

func (s *Stream) Close() error { return s.conn.Close() }
