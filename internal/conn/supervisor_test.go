package conn

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/markrileybot/rkvm2/internal/proto"
)

type fakeSink struct {
	sent chan *proto.Message
}

func (s *fakeSink) Send(ctx context.Context, m *proto.Message) error {
	select {
	case s.sent <- m:
	default:
	}
	return nil
}

func (s *fakeSink) Close() error { return nil }

type fakeStream struct {
	once chan *proto.Message
	done <-chan struct{}
}

func (s *fakeStream) Next(ctx context.Context) (*proto.Message, error) {
	select {
	case m, ok := <-s.once:
		if !ok {
			return nil, context.Canceled
		}
		return m, nil
	case <-s.done:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *fakeStream) Close() error { return nil }

type fakeConnector struct {
	failUntil  int32
	attempts   int32
	sentValues chan *proto.Message
	done       chan struct{}
}

func (c *fakeConnector) String() string { return "fake" }

func (c *fakeConnector) Connect(ctx context.Context) (MessageSink, MessageStream, error) {
	n := atomic.AddInt32(&c.attempts, 1)
	if n <= c.failUntil {
		return nil, nil, context.DeadlineExceeded
	}
	once := make(chan *proto.Message, 1)
	once <- &proto.Message{Ping: &proto.Ping{}}
	return &fakeSink{sent: c.sentValues}, &fakeStream{once: once, done: c.done}, nil
}

func TestSupervisorForwardsInbound(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connector := &fakeConnector{sentValues: make(chan *proto.Message, 1), done: make(chan struct{})}
	inbound := make(chan *proto.Message, 1)
	NewSupervisor(ctx, connector, inbound)

	select {
	case m := <-inbound:
		if m.Ping == nil {
			t.Fatalf("expected a ping message, got %+v", m)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for inbound message")
	}
}

func TestSupervisorReconnectsOnFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connector := &fakeConnector{failUntil: 1, sentValues: make(chan *proto.Message, 1), done: make(chan struct{})}
	inbound := make(chan *proto.Message, 1)
	NewSupervisor(ctx, connector, inbound)

	select {
	case <-inbound:
		if atomic.LoadInt32(&connector.attempts) < 2 {
			t.Fatalf("expected at least 2 connect attempts, got %d", connector.attempts)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for reconnect to succeed")
	}
}

func TestSupervisorDeliversOutboundOnceConnected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connector := &fakeConnector{sentValues: make(chan *proto.Message, 1), done: make(chan struct{})}
	s := NewSupervisor(ctx, connector, make(chan *proto.Message, 1))

	out := &proto.Message{Clipboard: &proto.Clipboard{Data: []byte("x")}}
	s.Send(out)

	select {
	case got := <-connector.sentValues:
		if got.Clipboard == nil || string(got.Clipboard.Data) != "x" {
			t.Fatalf("expected clipboard payload to round-trip, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for outbound delivery")
	}
}

func TestSupervisorSendDropsWhenQueueFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A connector that never succeeds leaves the outbound queue undrained.
	connector := &fakeConnector{failUntil: 1 << 20, sentValues: make(chan *proto.Message, 1), done: make(chan struct{})}
	s := NewSupervisor(ctx, connector, make(chan *proto.Message))

	for i := 0; i < outboundQueueSize+10; i++ {
		s.Send(&proto.Message{Ping: &proto.Ping{}})
	}
	if len(s.outbound) != outboundQueueSize {
		t.Fatalf("expected outbound queue capped at %d, got %d", outboundQueueSize, len(s.outbound))
	}
}
