// Package conn provides the generic Connector / Reconnecting Connection
// Supervisor abstraction (spec.md §4.1, design note "Generic connector
// abstraction"). Concrete Connectors (internal/netconn, internal/inputconn)
// only need to know how to produce a (MessageSink, MessageStream) pair;
// the supervisor owns reconnect, pumping and lifetime.
package conn

import (
	"context"

	"github.com/markrileybot/rkvm2/internal/proto"
)

// MessageSink accepts outbound messages.
type MessageSink interface {
	Send(ctx context.Context, m *proto.Message) error
	Close() error
}

// MessageStream yields inbound messages, one at a time.
type MessageStream interface {
	Next(ctx context.Context) (*proto.Message, error)
	Close() error
}

// Connector is a factory for a duplex (sink, stream) pair against some
// external endpoint (a Unix socket, a UDP broadcast socket, ...). connect
// is retried by Supervisor on failure.
type Connector interface {
	Connect(ctx context.Context) (MessageSink, MessageStream, error)
	String() string
}
