// Package ping implements the Ping / Expiry Timer (spec.md §4.5): a 1Hz
// self-addressed loopback tick that lets the coordinator own all ping and
// expiry state mutation on its single goroutine.
package ping

import (
	"context"
	"time"

	"github.com/markrileybot/rkvm2/internal/proto"
)

// Period is the ping/expiry-check interval.
const Period = time.Second

// Run enqueues a header-less Ping message onto out once per Period until
// ctx is canceled. The coordinator turns each tick into a fresh broadcast
// and an expiry sweep (spec.md §4.4 "Ping tick").
func Run(ctx context.Context, out chan<- *proto.Message) {
	t := time.NewTicker(Period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case out <- &proto.Message{Ping: &proto.Ping{}}:
			case <-ctx.Done():
				return
			}
		}
	}
}
