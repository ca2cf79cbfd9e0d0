package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/markrileybot/rkvm2/internal/coordinator"
)

type fakeSource struct {
	snap *coordinator.Snapshot
}

func (f *fakeSource) Snapshot() *coordinator.Snapshot { return f.snap }

func TestStatusEndpointServesSnapshot(t *testing.T) {
	src := &fakeSource{snap: &coordinator.Snapshot{
		Nodes:      []coordinator.NodeView{{Name: "A", Local: true, Commander: true}},
		ActiveNode: "A",
		Pressed:    []int32{97},
	}}
	s := New("127.0.0.1:0", src)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got coordinator.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ActiveNode != "A" || len(got.Nodes) != 1 || got.Nodes[0].Name != "A" {
		t.Fatalf("unexpected snapshot payload: %+v", got)
	}
}

func TestStatusServiceGet(t *testing.T) {
	src := &fakeSource{snap: &coordinator.Snapshot{ActiveNode: "B"}}
	svc := &StatusService{src: src}

	var reply GetReply
	if err := svc.Get(&http.Request{}, &GetArgs{}, &reply); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reply.ActiveNode != "B" {
		t.Fatalf("expected active node B, got %q", reply.ActiveNode)
	}
}

func TestStatusServicePeers(t *testing.T) {
	src := &fakeSource{snap: &coordinator.Snapshot{
		Nodes: []coordinator.NodeView{{Name: "A"}, {Name: "B"}},
	}}
	svc := &StatusService{src: src}

	var reply PeersReply
	if err := svc.Peers(&http.Request{}, &PeersArgs{}, &reply); err != nil {
		t.Fatalf("Peers: %v", err)
	}
	if len(reply.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(reply.Nodes))
	}
}

func TestRunShutsDownOnContextCancel(t *testing.T) {
	src := &fakeSource{snap: &coordinator.Snapshot{}}
	s := New("127.0.0.1:0", src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}
