// Package inputsvc implements the server side of the local input
// transport described in spec.md §6: a Unix domain socket at
// /var/run/<name>.sock, mode 0770, owned by a configurable group, that a
// single coordinator client dials into (internal/inputconn is that
// client). The real OS-specific capture/synthesis of input events is
// explicitly out of scope (spec.md §1); EventSource is the opaque
// boundary a platform backend would implement.
package inputsvc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/bfix/gospel/logger"
	"golang.org/x/sys/unix"

	"github.com/markrileybot/rkvm2/internal/proto"
)

// EventSource is the opaque local input endpoint: it yields captured
// events and accepts synthesized ones to be played out locally. A real
// implementation backs onto evdev/uinput or the platform equivalent; this
// package only defines the boundary (mirrors original_source's
// EventManager.read/write).
type EventSource interface {
	Read(ctx context.Context) (*proto.InputEvent, error)
	Write(ctx context.Context, e *proto.InputEvent) error
}

// Server accepts a single coordinator connection at a time on a Unix
// socket and bridges it to an EventSource.
type Server struct {
	socketPath string
	gid        uint32
	source     EventSource
}

// New returns an input daemon server listening at socketPath, chowning the
// socket file to gid, bridging to source.
func New(socketPath string, gid uint32, source EventSource) *Server {
	return &Server{socketPath: socketPath, gid: gid, source: source}
}

// Run binds the socket and serves connections until ctx is canceled. A
// bind failure due to a stale socket file is resolved by unlinking and
// retrying, matching original_source/pipe/src/linux/pipe.rs; any other
// bind failure is fatal per spec.md §7 error #5.
func (s *Server) Run(ctx context.Context) error {
	for {
		ln, err := s.bind()
		if err != nil {
			return err
		}

		go func() {
			<-ctx.Done()
			ln.Close()
		}()

		nc, err := ln.Accept()
		ln.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Printf(logger.WARN, "[inputsvc] accept failed: %s", err)
			continue
		}

		s.serve(ctx, nc)
		if ctx.Err() != nil {
			return nil
		}
		// client disconnected -- rebind and wait for the next one
	}
}

func (s *Server) bind() (*net.UnixListener, error) {
	addr := &net.UnixAddr{Name: s.socketPath, Net: "unix"}
	ln, err := net.ListenUnix("unix", addr)
	if err != nil && errors.Is(err, syscall.EADDRINUSE) {
		if rmErr := os.Remove(s.socketPath); rmErr != nil {
			return nil, fmt.Errorf("inputsvc: remove stale socket %s: %w", s.socketPath, rmErr)
		}
		ln, err = net.ListenUnix("unix", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("inputsvc: bind %s: %w", s.socketPath, err)
	}

	if err := os.Chmod(s.socketPath, 0770); err != nil {
		logger.Printf(logger.WARN, "[inputsvc] chmod %s: %s", s.socketPath, err)
	}
	if err := unix.Chown(s.socketPath, -1, int(s.gid)); err != nil {
		logger.Printf(logger.WARN, "[inputsvc] chown %s to gid %d: %s", s.socketPath, s.gid, err)
	}
	return ln, nil
}

// serve bridges one connection: captured events go out to the client,
// messages from the client are played out locally via source.Write.
func (s *Server) serve(ctx context.Context, nc net.Conn) {
	defer nc.Close()
	logger.Println(logger.INFO, "[inputsvc] client connected")

	captured := make(chan *proto.InputEvent)
	captureErr := make(chan error, 1)
	go func() {
		for {
			e, err := s.source.Read(ctx)
			if err != nil {
				captureErr <- err
				return
			}
			select {
			case captured <- e:
			case <-ctx.Done():
				return
			}
		}
	}()

	inbound := make(chan *proto.Message)
	inboundErr := make(chan error, 1)
	go func() {
		for {
			m, err := proto.DecodeFrame(nc)
			if err != nil {
				inboundErr <- err
				return
			}
			select {
			case inbound <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case e := <-captured:
			if err := proto.EncodeFrame(nc, &proto.Message{InputEvent: e}); err != nil {
				logger.Printf(logger.WARN, "[inputsvc] send to client failed: %s", err)
				return
			}

		case err := <-captureErr:
			logger.Printf(logger.ERROR, "[inputsvc] event source unreadable: %s", err)
			return

		case m := <-inbound:
			if m.InputEvent == nil {
				logger.Printf(logger.WARN, "[inputsvc] ignoring non-input message from client")
				continue
			}
			if err := s.source.Write(ctx, m.InputEvent); err != nil {
				logger.Printf(logger.WARN, "[inputsvc] write to device failed: %s", err)
			}

		case err := <-inboundErr:
			logger.Printf(logger.INFO, "[inputsvc] client disconnected: %s", err)
			return
		}
	}
}
