package game

import "fmt"

// History records the accepted actions of one match on top of its initial
// state, so a match can be audited, replayed or rewound.
type History struct {
	initial State
	current State
	actions []Action
}

func NewHistory(initial State) *History {
	return &History{initial: initial.Clone(), current: initial.Clone()}
}

func (h *History) Current() State { return h.current }

func (h *History) Len() int { return len(h.actions) }

// Actions returns a copy of the recorded actions in play order.
func (h *History) Actions() []Action {
	out := make([]Action, len(h.actions))
	copy(out, h.actions)
	return out
}

// Apply plays a against the current state and records it when accepted.
func (h *History) Apply(a Action) Result {
	res := Apply(h.current, a)
	if res.Accepted() {
		h.current = res.State
		h.actions = append(h.actions, a)
	}
	return res
}

// Undo drops the last action and rebuilds the current state from the start.
func (h *History) Undo() (State, bool) {
	if len(h.actions) == 0 {
		return h.current, false
	}
	kept := h.actions[:len(h.actions)-1]
	state, err := Replay(h.initial, kept)
	if err != nil {
		// Replaying actions that were accepted once cannot fail.
		return h.current, false
	}
	h.actions = kept
	h.current = state
	return state, true
}

// Replay folds actions over initial and stops at the first rejection.
func Replay(initial State, actions []Action) (State, error) {
	state := initial
	for i, a := range actions {
		res := Apply(state, a)
		if !res.Accepted() {
			return state, fmt.Errorf("replay action %d (%s): %w", i, a, res.Err)
		}
		state = res.State
	}
	return state, nil
}
