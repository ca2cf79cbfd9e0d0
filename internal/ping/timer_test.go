package ping

import (
	"context"
	"testing"
	"time"

	"github.com/markrileybot/rkvm2/internal/proto"
)

func TestRunEmitsPingTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan *proto.Message, 4)
	go Run(ctx, out)

	select {
	case m := <-out:
		if m.Ping == nil {
			t.Fatalf("expected a ping message, got %+v", m)
		}
	case <-time.After(2 * Period):
		t.Fatalf("timed out waiting for first tick")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan *proto.Message, 4)

	stopped := make(chan struct{})
	go func() {
		Run(ctx, out)
		close(stopped)
	}()

	// drain the first tick so Run is parked on the ticker, then cancel.
	<-out
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * Period):
		t.Fatalf("Run did not return after context cancellation")
	}
}
