package game

import "quoridor/internal/shared"

// LegalMoves returns every cell the pawn of side may move to in one turn.
// Generation ignores whose turn it is so it can drive previews for either
// side. Order is deterministic: directions Up, Down, Left, Right, and for a
// blocked jump the two side-steps in Perpendicular order.
func LegalMoves(s State, side Side) []Position {
	me := s.Players.Get(side).Pos
	opp := s.Players.Get(side.Opposite()).Pos
	moves := make([]Position, 0, 5)

	for _, d := range shared.Directions {
		next := shared.Step(me, d)
		if !shared.InBounds(next) || shared.IsBlocked(me, next, s.Walls) {
			continue
		}
		if next != opp {
			moves = append(moves, next)
			continue
		}

		// Opponent adjacent: straight jump, never chained.
		jump := shared.Step(next, d)
		if shared.InBounds(jump) && !shared.IsBlocked(next, jump, s.Walls) {
			moves = append(moves, jump)
			continue
		}

		// Jump off the board or behind a wall: side-step around the opponent.
		// me->next is already known to be open.
		for _, p := range d.Perpendicular() {
			diag := shared.Step(next, p)
			if shared.InBounds(diag) && !shared.IsBlocked(next, diag, s.Walls) {
				moves = append(moves, diag)
			}
		}
	}
	return moves
}

// LegalMoveSet is LegalMoves as a CellSet for membership tests.
func LegalMoveSet(s State, side Side) CellSet {
	var set CellSet
	for _, p := range LegalMoves(s, side) {
		set = set.Add(p)
	}
	return set
}
