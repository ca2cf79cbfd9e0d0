package inputconn

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/markrileybot/rkvm2/internal/proto"
)

func TestConnectRoundTrip(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "rkvm2.sock")
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	c := New(sockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sink, stream, err := c.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer sink.Close()
	defer stream.Close()

	server := <-accepted
	defer server.Close()

	want := &proto.Message{InputEvent: &proto.InputEvent{Kind: proto.EventKey, Code: 1, Down: true}}
	if err := sink.Send(ctx, want); err != nil {
		t.Fatalf("send: %v", err)
	}

	got, err := proto.DecodeFrame(server)
	if err != nil {
		t.Fatalf("server decode: %v", err)
	}
	if got.InputEvent == nil || got.InputEvent.Code != 1 {
		t.Fatalf("unexpected message: %+v", got)
	}
}
