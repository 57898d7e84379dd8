package game

// Winner reports the side whose pawn stands on its goal row, if any.
// First is checked before Second.
func Winner(s State) (Side, bool) {
	if s.Players.First.Pos.Row == First.GoalRow() {
		return First, true
	}
	if s.Players.Second.Pos.Row == Second.GoalRow() {
		return Second, true
	}
	return First, false
}

// settle finishes the match when a pawn has reached its goal. The turn is
// left as it was and has no meaning once the match is finished.
func settle(s *State) {
	w, ok := Winner(*s)
	if !ok {
		return
	}
	s.Status = Finished
	s.Winner = &w
}
