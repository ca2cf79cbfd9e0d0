package inputsvc

import (
	"context"

	"github.com/markrileybot/rkvm2/internal/proto"
)

// LoopbackEventSource is an EventSource test double: events handed to
// Inject become available from Read, and Write records what was played
// out locally. Safe for use only from a single test goroutine driving it.
type LoopbackEventSource struct {
	in      chan *proto.InputEvent
	Written []*proto.InputEvent
}

// NewLoopbackEventSource returns an empty loopback source.
func NewLoopbackEventSource() *LoopbackEventSource {
	return &LoopbackEventSource{in: make(chan *proto.InputEvent, 16)}
}

// Inject makes e available from the next Read call.
func (l *LoopbackEventSource) Inject(e *proto.InputEvent) {
	l.in <- e
}

func (l *LoopbackEventSource) Read(ctx context.Context) (*proto.InputEvent, error) {
	select {
	case e := <-l.in:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *LoopbackEventSource) Write(ctx context.Context, e *proto.InputEvent) error {
	l.Written = append(l.Written, e)
	return nil
}
