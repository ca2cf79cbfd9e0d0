// Package coordinator implements the Message Router / Coordinator
// (spec.md §4.4): the node table, active-node arbitration, pressed-keys
// tracking, key bindings, and the switch state machine. It is the single
// owner of all of that state and is driven by one goroutine consuming one
// merged channel -- no locking is visible to callers (spec.md §5).
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bfix/gospel/logger"

	"github.com/markrileybot/rkvm2/internal/clipboard"
	"github.com/markrileybot/rkvm2/internal/notify"
	"github.com/markrileybot/rkvm2/internal/proto"
)

// Sentinel errors for recognizable conditions, matching the teacher's
// core.ErrCoreNoUpnpDyn style (package-level errors.New vars, wrapped with
// %w at the point of use rather than compared against magic strings).
var (
	// ErrNodeNotFound is returned when a name doesn't resolve against the
	// current node table -- e.g. an ActiveNodeChanged naming a node that
	// has since expired or was never heard from.
	ErrNodeNotFound = errors.New("coordinator: node not found")
	// ErrNoActiveNode is returned when the active-node index doesn't
	// resolve against the current node table (spec.md §9: any index that
	// doesn't resolve is treated as none).
	ErrNoActiveNode = errors.New("coordinator: no active node")
)

// noActiveNode is the "none" sentinel for Coordinator.active, normalized
// away from the original source's usize::MAX per spec.md §9's open
// question: any index that doesn't resolve in the current table is none.
const noActiveNode = -1

// expiryWindow is the non-commander/non-local node timeout (spec.md §3).
const expiryWindow = 3 * time.Second

// sender is satisfied by *conn.Supervisor; narrowed here so this package
// doesn't need to import conn just to hold an outbound handle.
type sender interface {
	Send(m *proto.Message)
}

// Coordinator is the Message Router described in spec.md §4.4.
type Coordinator struct {
	name string

	nodes  []*Node
	active int
	pressed map[int32]struct{}

	bindings []KeyBinding

	inputSink sender
	netSink   sender
	pending   []*proto.Message

	notifier     notify.Notifier
	notifyHandle notify.Handle
	clip         clipboard.Clipboard

	snapshots snapshotStore
}

// Config carries the pieces of spec.md §6's configuration surface the
// coordinator itself needs.
type Config struct {
	Name          string
	Commander     bool
	SwitchKeys    []int32
	CommanderKeys []int32
}

// New builds a Coordinator for Config, wired to inputSink/netSink for
// outbound delivery and notifier/clip for switch-boundary side effects.
// The local node (index 0) is created here and never expires.
func New(cfg Config, inputSink, netSink sender, notifier notify.Notifier, clip clipboard.Clipboard) *Coordinator {
	local := &Node{Name: cfg.Name, Commander: cfg.Commander, Local: true, LastHeard: time.Now()}

	active := noActiveNode
	if cfg.Commander {
		active = 0
	}

	c := &Coordinator{
		name:      cfg.Name,
		nodes:     []*Node{local},
		active:    active,
		pressed:   make(map[int32]struct{}),
		bindings:  DefaultBindings(cfg.SwitchKeys, cfg.CommanderKeys),
		inputSink: inputSink,
		netSink:   netSink,
		notifier:  notifier,
		clip:      clip,
	}
	c.publish()
	return c
}

// Run consumes messages until ctx is canceled. messages carries input
// events, network traffic and the 1Hz ping tick, all merged by the
// caller's connectors (spec.md §4.4, design note "single-owner state").
func (c *Coordinator) Run(ctx context.Context, messages <-chan *proto.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-messages:
			c.dispatch(m)
			c.drainPending()
		}
	}
}

// Snapshot returns the most recently published read-only state view.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.snapshots.Load()
}

//----------------------------------------------------------------------
// dispatch

func (c *Coordinator) dispatch(m *proto.Message) {
	var fromNet bool
	var origin string

	if m.Header != nil {
		if m.Header.FromID == c.name {
			// self-echo: testable property #1
			return
		}
		if m.Header.ToID != "" && m.Header.ToID != c.name {
			// addressed elsewhere: testable property #2
			return
		}
		origin = m.Header.FromID
		fromNet = origin != ""
	}

	switch {
	case m.Ping != nil:
		if fromNet {
			c.handlePingFromNet(m.Ping, origin)
		} else {
			c.handlePingTick()
		}
	case m.InputEvent != nil:
		c.handleInputEvent(m.InputEvent, fromNet)
	case m.ActiveNodeChanged != nil:
		c.handleActiveNodeChanged(m.ActiveNodeChanged, fromNet)
	case m.Clipboard != nil:
		c.handleClipboard(m.Clipboard)
	default:
		logger.Println(logger.WARN, "[coordinator] dropping message with unknown payload")
	}
}

// drainPending processes loopback messages queued by the handlers above
// before the next external receive. A synchronous self-send on the shared
// inbound channel would deadlock this single goroutine (unlike the
// original Rust implementation's async unbounded_channel, where recv()
// yields control); queuing here preserves the same observable ordering
// without that hazard.
func (c *Coordinator) drainPending() {
	for len(c.pending) > 0 {
		m := c.pending[0]
		c.pending = c.pending[1:]
		c.dispatch(m)
	}
}

func (c *Coordinator) injectLoopback(m *proto.Message) {
	c.pending = append(c.pending, m)
}

//----------------------------------------------------------------------
// ping

func (c *Coordinator) handlePingFromNet(p *proto.Ping, origin string) {
	if n, ok := c.byName(origin); ok {
		n.LastHeard = time.Now()
		n.Commander = p.Commander
	} else {
		c.nodes = append(c.nodes, &Node{Name: origin, Commander: p.Commander, LastHeard: time.Now()})
	}

	if p.Commander {
		if idx, ok := c.indexByName(p.ActiveNode); ok && idx != c.active {
			c.injectLoopback(&proto.Message{ActiveNodeChanged: &proto.ActiveNodeChanged{Name: p.ActiveNode}})
		}
	}
	c.publish()
}

func (c *Coordinator) handlePingTick() {
	now := time.Now()

	activeName := ""
	if idx, ok := c.activeIndex(); ok {
		activeName = c.nodes[idx].Name
	}

	kept := c.nodes[:0:0]
	activeExpiring := false
	for _, n := range c.nodes {
		if n.expired(now, expiryWindow) {
			logger.Printf(logger.INFO, "[coordinator] expiring %s", n.Name)
			if n.Name == activeName {
				activeExpiring = true
			}
			continue
		}
		kept = append(kept, n)
	}
	c.nodes = kept

	if idx, ok := c.indexByName(activeName); ok {
		c.active = idx
	} else {
		c.active = noActiveNode
	}

	if activeExpiring {
		if cmd, ok := c.commander(); ok {
			c.injectLoopback(&proto.Message{ActiveNodeChanged: &proto.ActiveNodeChanged{Name: cmd.Name}})
		}
	}

	out := &proto.Ping{Commander: c.local().Commander}
	if out.Commander {
		if idx, ok := c.activeIndex(); ok {
			out.ActiveNode = c.nodes[idx].Name
		}
	}
	c.broadcast(&proto.Message{Ping: out})
	c.publish()
}

//----------------------------------------------------------------------
// input events

func (c *Coordinator) handleInputEvent(e *proto.InputEvent, fromNet bool) {
	if fromNet {
		// admission filter already enforced to_id == self.name
		c.sendInput(e)
		return
	}

	if e.Kind == proto.EventKey {
		var changed bool
		if e.Down {
			changed = c.addPressed(e.Code)
		} else {
			changed = c.removePressed(e.Code)
		}
		if changed && c.local().Commander {
			for i := range c.bindings {
				if c.bindings[i].matches(c.pressed) {
					c.fire(c.bindings[i].Action)
				}
			}
		}
	}

	if idx, err := c.requireActiveIndex(); err == nil {
		target := c.nodes[idx]
		switch {
		case target.Local:
			c.sendInput(e)
		case c.local().Commander:
			c.sendNet(&proto.Message{InputEvent: e}, target.Name)
		default:
			// active node is remote but we aren't the one capturing for
			// it -- fail-safe per spec.md §9 open question #2.
			c.sendInput(e)
		}
	} else {
		logger.Printf(logger.DBG, "[coordinator] input event with %s, echoing locally", err)
		c.sendInput(e)
	}
	c.publish()
}

func (c *Coordinator) fire(a Action) {
	switch a.Kind {
	case ActionSwitchToNext:
		if len(c.nodes) == 0 {
			return
		}
		idx := c.active
		if idx < 0 || idx >= len(c.nodes) {
			idx = -1
		}
		idx = (idx + 1) % len(c.nodes)
		c.injectLoopback(&proto.Message{ActiveNodeChanged: &proto.ActiveNodeChanged{Name: c.nodes[idx].Name}})
	case ActionSwitchToIndex:
		if a.Index < 0 || a.Index >= len(c.nodes) {
			return
		}
		c.injectLoopback(&proto.Message{ActiveNodeChanged: &proto.ActiveNodeChanged{Name: c.nodes[a.Index].Name}})
	}
}

//----------------------------------------------------------------------
// active-node switching

func (c *Coordinator) handleActiveNodeChanged(e *proto.ActiveNodeChanged, fromNet bool) {
	idx, err := c.requireIndexByName(e.Name)
	if err != nil {
		logger.Printf(logger.WARN, "[coordinator] active-node change: %s", err)
		return
	}
	if idx == c.active {
		return
	}

	if c.active == 0 {
		// we're about to be switched away from: propagate clipboard and
		// release every pressed key before the switch takes effect.
		text, err := c.clip.GetText()
		if err != nil {
			logger.Printf(logger.WARN, "[coordinator] clipboard read failed: %s", err)
		} else {
			c.broadcast(&proto.Message{Clipboard: &proto.Clipboard{Data: []byte(text), MimeType: "text/plain"}})
		}
		for code := range c.pressed {
			c.sendInput(&proto.InputEvent{Kind: proto.EventKey, Code: code, Down: false})
		}
		c.pressed = make(map[int32]struct{})
	}

	c.active = idx
	if idx == 0 {
		c.showNotification("I'm over here!")
	} else {
		c.showNotification(fmt.Sprintf("Switched to %s", c.nodes[idx].Name))
	}

	if !fromNet {
		c.broadcast(&proto.Message{ActiveNodeChanged: &proto.ActiveNodeChanged{Name: c.nodes[idx].Name}})
	}
	c.publish()
}

func (c *Coordinator) handleClipboard(cl *proto.Clipboard) {
	if err := c.clip.SetText(string(cl.Data)); err != nil {
		logger.Printf(logger.WARN, "[coordinator] clipboard write failed: %s", err)
	}
}

//----------------------------------------------------------------------
// helpers

func (c *Coordinator) local() *Node { return c.nodes[0] }

func (c *Coordinator) activeIndex() (int, bool) {
	if c.active < 0 || c.active >= len(c.nodes) {
		return 0, false
	}
	return c.active, true
}

// requireActiveIndex is activeIndex's error-returning counterpart, for call
// sites that want the recognizable condition named rather than silently
// folded into a bool.
func (c *Coordinator) requireActiveIndex() (int, error) {
	idx, ok := c.activeIndex()
	if !ok {
		return 0, ErrNoActiveNode
	}
	return idx, nil
}

// requireIndexByName is indexByName's error-returning counterpart.
func (c *Coordinator) requireIndexByName(name string) (int, error) {
	idx, ok := c.indexByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return idx, nil
}

func (c *Coordinator) byName(name string) (*Node, bool) {
	for _, n := range c.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

func (c *Coordinator) indexByName(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i, n := range c.nodes {
		if n.Name == name {
			return i, true
		}
	}
	return 0, false
}

// commander returns the node table entry most recently heard from among
// those claiming to be commander (spec.md §3: "if two claims arrive, the
// most recently heard wins").
func (c *Coordinator) commander() (*Node, bool) {
	var best *Node
	for _, n := range c.nodes {
		if !n.Commander {
			continue
		}
		if best == nil || n.LastHeard.After(best.LastHeard) {
			best = n
		}
	}
	return best, best != nil
}

func (c *Coordinator) addPressed(code int32) bool {
	if _, ok := c.pressed[code]; ok {
		return false
	}
	c.pressed[code] = struct{}{}
	return true
}

func (c *Coordinator) removePressed(code int32) bool {
	if _, ok := c.pressed[code]; !ok {
		return false
	}
	delete(c.pressed, code)
	return true
}

func (c *Coordinator) sendInput(e *proto.InputEvent) {
	c.inputSink.Send(&proto.Message{InputEvent: e})
}

func (c *Coordinator) sendNet(m *proto.Message, toID string) {
	m.Header = &proto.Header{FromID: c.name, ToID: toID}
	c.netSink.Send(m)
}

func (c *Coordinator) broadcast(m *proto.Message) {
	c.sendNet(m, "")
}

func (c *Coordinator) showNotification(text string) {
	h, err := c.notifier.Show(text)
	if err != nil {
		logger.Printf(logger.WARN, "[coordinator] notify failed: %s", err)
		return
	}
	if c.notifyHandle != nil {
		if err := c.notifyHandle.Close(); err != nil {
			logger.Printf(logger.WARN, "[coordinator] closing previous notification: %s", err)
		}
	}
	c.notifyHandle = h
}

func (c *Coordinator) publish() {
	snap := &Snapshot{}
	for _, n := range c.nodes {
		snap.Nodes = append(snap.Nodes, NodeView{Name: n.Name, Commander: n.Commander, Local: n.Local})
	}
	if idx, ok := c.activeIndex(); ok {
		snap.ActiveNode = c.nodes[idx].Name
	}
	for code := range c.pressed {
		snap.Pressed = append(snap.Pressed, code)
	}
	c.snapshots.store(snap)
}
