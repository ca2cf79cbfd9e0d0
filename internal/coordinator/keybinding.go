package coordinator

// ActionKind is the effect a KeyBinding fires when its trigger chord is
// observed.
type ActionKind int

const (
	// ActionSwitchToNext advances the active node to (current+1) mod len(nodes).
	ActionSwitchToNext ActionKind = iota
	// ActionSwitchToIndex jumps directly to a fixed node-table index.
	ActionSwitchToIndex
)

// Action is what a KeyBinding does once its trigger fires.
type Action struct {
	Kind  ActionKind
	Index int // meaningful only for ActionSwitchToIndex
}

// KeyBinding fires Action exactly when the pressed-keys set equals Trigger
// -- set equality, not superset (spec.md §3, testable property #4: a
// binding with trigger {A,B} does not fire for {A,B,C}).
type KeyBinding struct {
	Trigger map[int32]struct{}
	Action  Action
}

func newTrigger(codes []int32) map[int32]struct{} {
	t := make(map[int32]struct{}, len(codes))
	for _, c := range codes {
		t[c] = struct{}{}
	}
	return t
}

// matches reports whether pressed is exactly the trigger set.
func (b *KeyBinding) matches(pressed map[int32]struct{}) bool {
	if len(b.Trigger) != len(pressed) {
		return false
	}
	for k := range b.Trigger {
		if _, ok := pressed[k]; !ok {
			return false
		}
	}
	return true
}

// DefaultBindings builds the two standard bindings described in spec.md
// §6: switchKeys cycles to the next node, commanderKeys jumps back to the
// local node (index 0).
func DefaultBindings(switchKeys, commanderKeys []int32) []KeyBinding {
	return []KeyBinding{
		{Trigger: newTrigger(switchKeys), Action: Action{Kind: ActionSwitchToNext}},
		{Trigger: newTrigger(commanderKeys), Action: Action{Kind: ActionSwitchToIndex, Index: 0}},
	}
}
