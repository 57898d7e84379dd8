// Package game implements the Quoridor rules engine: move generation, wall
// validation and state transitions over immutable State values.
package game

import (
	"fmt"

	"quoridor/internal/shared"
)

// ActionKind selects between the two things a player can do on a turn.
type ActionKind string

const (
	ActionMove ActionKind = "move"
	ActionWall ActionKind = "wall"
)

// Action is one proposed turn. To is set for moves, Wall for wall placements.
type Action struct {
	Type ActionKind `json:"type"`
	Side Side       `json:"player"`
	To   *Position  `json:"to,omitempty"`
	Wall *Wall      `json:"wall,omitempty"`
}

func MoveAction(side Side, to Position) Action {
	return Action{Type: ActionMove, Side: side, To: &to}
}

func WallAction(side Side, w Wall) Action {
	return Action{Type: ActionWall, Side: side, Wall: &w}
}

func (a Action) String() string {
	switch {
	case a.Type == ActionMove && a.To != nil:
		return fmt.Sprintf("%s move %s", a.Side, *a.To)
	case a.Type == ActionWall && a.Wall != nil:
		return fmt.Sprintf("%s wall %s", a.Side, *a.Wall)
	default:
		return fmt.Sprintf("%s %s", a.Side, a.Type)
	}
}

// Result is the outcome of applying an action. When Err is non-nil the
// action was rejected and State is the input state, untouched.
type Result struct {
	State State
	Err   error
}

func (r Result) Accepted() bool { return r.Err == nil }

func reject(s State, err error) Result { return Result{State: s, Err: err} }

func checkActor(s State, side Side) error {
	if side != First && side != Second {
		return rejectf(ReasonIllegalAction, "unknown side %d", side)
	}
	if s.Status != Playing {
		return rejectf(ReasonGameNotPlaying, "match is %s", s.Status)
	}
	if side != s.Turn {
		return rejectf(ReasonNotYourTurn, "%s to move", s.Turn)
	}
	return nil
}

// ApplyMove moves side's pawn to the destination if it is among LegalMoves,
// hands the turn over and settles the winner.
func ApplyMove(s State, side Side, to Position) Result {
	if err := checkActor(s, side); err != nil {
		return reject(s, err)
	}
	if !shared.InBounds(to) {
		return reject(s, rejectf(ReasonOutOfBounds, "destination %s outside the board", to))
	}
	if !LegalMoveSet(s, side).Has(to) {
		return reject(s, rejectf(ReasonIllegalMove, "%s cannot reach %s", side, to))
	}

	next := s.Clone()
	ps := next.Players.Get(side)
	ps.Pos = to
	next.Players.set(side, ps)
	next.Turn = side.Opposite()
	settle(&next)
	return Result{State: next}
}

// ApplyWall places a wall for side if the side has walls left and the wall
// passes CheckWall. Placing a wall never ends the match.
func ApplyWall(s State, side Side, w Wall) Result {
	if err := checkActor(s, side); err != nil {
		return reject(s, err)
	}
	ps := s.Players.Get(side)
	if ps.Walls <= 0 {
		return reject(s, rejectf(ReasonNoWallsLeft, "%s has no walls left", side))
	}
	if err := CheckWall(s, w); err != nil {
		return reject(s, err)
	}

	next := s.Clone()
	next.Walls = append(next.Walls, w)
	ps.Walls--
	next.Players.set(side, ps)
	next.Turn = side.Opposite()
	return Result{State: next}
}

// Apply dispatches an Action to ApplyMove or ApplyWall.
func Apply(s State, a Action) Result {
	switch a.Type {
	case ActionMove:
		if a.To == nil {
			return reject(s, rejectf(ReasonIllegalAction, "move without destination"))
		}
		return ApplyMove(s, a.Side, *a.To)
	case ActionWall:
		if a.Wall == nil {
			return reject(s, rejectf(ReasonIllegalAction, "wall action without wall"))
		}
		return ApplyWall(s, a.Side, *a.Wall)
	default:
		return reject(s, rejectf(ReasonIllegalAction, "unsupported action %q", a.Type))
	}
}
