package fsm

import "github.com/fluxorio/iotfsm/containers"

// tableKey is the composite (state, event) row key. The spec packs
// both fields into one integer (state in the low half, event in the
// high half) so a single hash map can key on it; in Go, a two-field
// comparable struct is the idiomatic equivalent — it is just as usable
// as a map key and sidesteps picking a bit width for the pack.
type tableKey struct {
	State StateId
	Event EventSymbol
}

// TransitionTable maps (current-state-id, event-symbol) to Transition,
// derives the alphabet from every symbol ever inserted, and answers
// acceptance queries with hierarchical fall-through.
type TransitionTable struct {
	rows     containers.OrderedMap[tableKey, Transition]
	alphabet containers.Set[EventSymbol]
}

// NewTransitionTable builds an empty table using policy's container
// families.
func NewTransitionTable(policy Policy) *TransitionTable {
	return &TransitionTable{
		rows:     policy.NewTransitionRows(),
		alphabet: policy.NewAlphabet(),
	}
}

// Insert adds a row keyed on (state, transition.Event) if absent,
// extending the alphabet on success. It reports whether the row was
// inserted.
func (t *TransitionTable) Insert(state StateId, tr Transition) bool {
	if !t.rows.Insert(tableKey{State: state, Event: tr.Event}, tr) {
		return false
	}
	t.alphabet.Insert(tr.Event)
	return true
}

// AddSymbol set-inserts event into the alphabet directly, independent
// of any transition row — the backing for Engine.AddAlphabetSymbol.
func (t *TransitionTable) AddSymbol(event EventSymbol) bool {
	return t.alphabet.Insert(event)
}

// HasDirect reports whether state has its own row for event, without
// climbing to ancestors.
func (t *TransitionTable) HasDirect(state StateId, event EventSymbol) bool {
	return t.rows.Contains(tableKey{State: state, Event: event})
}

// Lookup returns the row for (state, event), climbing the parent chain
// (via registry) on a miss. There is no cycle detection: a cyclic
// parent chain makes this loop forever, a documented sharp edge the
// spec accepts rather than pays for with a visited-set on every call.
func (t *TransitionTable) Lookup(registry containers.OrderedMap[StateId, State], state StateId, event EventSymbol) (Transition, bool) {
	current := state
	for {
		if tr, ok := t.rows.Find(tableKey{State: current, Event: event}); ok {
			return tr, true
		}
		st, found := registry.Find(current)
		if !found || !st.HasParent() {
			return Transition{}, false
		}
		current = st.Parent()
	}
}

// Alphabet returns the accumulated set of event symbols.
func (t *TransitionTable) Alphabet() containers.Set[EventSymbol] { return t.alphabet }

// Range iterates every row in unspecified order, for use by Engine's
// copy support.
func (t *TransitionTable) Range(fn func(state StateId, tr Transition) bool) {
	t.rows.Range(func(k tableKey, tr Transition) bool {
		return fn(k.State, tr)
	})
}
