// Package inputconn implements the Input Connector (spec.md §4.2): a
// conn.Connector that dials the local input daemon's Unix socket. The
// daemon itself -- the process that owns the real keyboard/mouse device --
// is internal/inputsvc; this package is only the client half used by the
// coordinator.
package inputconn

import (
	"context"
	"fmt"
	"net"

	"github.com/markrileybot/rkvm2/internal/conn"
	"github.com/markrileybot/rkvm2/internal/proto"
)

// Connector dials socketPath, a Unix domain socket, to obtain a duplex
// stream to the local input endpoint (spec.md §6).
type Connector struct {
	socketPath string
}

// New returns an Input Connector for the given Unix socket path (e.g.
// "/var/run/<name>.sock").
func New(socketPath string) *Connector {
	return &Connector{socketPath: socketPath}
}

func (c *Connector) String() string {
	return fmt.Sprintf("input socket %s", c.socketPath)
}

func (c *Connector) Connect(ctx context.Context) (conn.MessageSink, conn.MessageStream, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, nil, fmt.Errorf("inputconn: dial %s: %w", c.socketPath, err)
	}
	return &endpoint{conn: nc}, &endpoint{conn: nc}, nil
}

// endpoint is both the sink and the stream half of one connection; the
// frame codec is symmetric so a single type can satisfy both roles.
type endpoint struct {
	conn net.Conn
}

func (e *endpoint) Send(ctx context.Context, m *proto.Message) error {
	return proto.EncodeFrame(e.conn, m)
}

func (e *endpoint) Next(ctx context.Context) (*proto.Message, error) {
	return proto.DecodeFrame(e.conn)
}

func (e *endpoint) Close() error {
	return e.conn.Close()
}
