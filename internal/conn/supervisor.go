package conn

import (
	"context"
	"time"

	"github.com/bfix/gospel/logger"

	"github.com/markrileybot/rkvm2/internal/proto"
)

// reconnectDelay is the back-off between failed connect attempts (spec.md
// §4.1 step 1, §5 "Supervisors use a 1 s reconnect back-off").
const reconnectDelay = time.Second

// outboundQueueSize bounds how many outbound messages are buffered while a
// connector is down. Once full, new sends are dropped -- best effort, as
// spec.md §4.1 step 3 requires.
const outboundQueueSize = 256

// Supervisor drives one Connector forever: connect, pump inbound messages
// to a shared receiver, pump outbound messages from its own sender, and
// transparently reconnect on any failure. All transient I/O faults are
// absorbed here; the coordinator only ever sees well-formed Messages.
type Supervisor struct {
	connector Connector
	inbound   chan<- *proto.Message
	outbound  chan *proto.Message
}

// NewSupervisor starts a supervisor task for connector and returns an
// outbound sender handle. Inbound messages are forwarded to inbound.
func NewSupervisor(ctx context.Context, connector Connector, inbound chan<- *proto.Message) *Supervisor {
	s := &Supervisor{
		connector: connector,
		inbound:   inbound,
		outbound:  make(chan *proto.Message, outboundQueueSize),
	}
	go s.run(ctx)
	return s
}

// Send enqueues an outbound message. Best effort: if the queue is full
// (the connector has been down for a while) the message is dropped.
func (s *Supervisor) Send(m *proto.Message) {
	select {
	case s.outbound <- m:
	default:
		logger.Printf(logger.WARN, "[conn] %s: outbound queue full, dropping message", s.connector)
	}
}

func (s *Supervisor) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		sink, stream, err := s.connector.Connect(ctx)
		if err != nil {
			logger.Printf(logger.WARN, "[conn] %s: connect failed: %s", s.connector, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}
		s.pump(ctx, sink, stream)
	}
}

// pump drives one live connection until it fails, then returns so run can
// reconnect.
func (s *Supervisor) pump(ctx context.Context, sink MessageSink, stream MessageStream) {
	defer sink.Close()
	defer stream.Close()

	type result struct {
		msg *proto.Message
		err error
	}
	recvCh := make(chan result)
	go func() {
		for {
			m, err := stream.Next(ctx)
			recvCh <- result{m, err}
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case r := <-recvCh:
			if r.err != nil {
				logger.Printf(logger.WARN, "[conn] %s: read failed: %s", s.connector, r.err)
				return
			}
			select {
			case s.inbound <- r.msg:
			case <-ctx.Done():
				return
			}

		case m := <-s.outbound:
			if err := sink.Send(ctx, m); err != nil {
				logger.Printf(logger.WARN, "[conn] %s: write failed: %s", s.connector, err)
				return
			}
		}
	}
}
