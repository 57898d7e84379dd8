package game

import (
	"errors"
	"fmt"
)

// Reason is a machine-readable cause for a rejected action.
type Reason string

const (
	ReasonOutOfBounds    Reason = "OUT_OF_BOUNDS"
	ReasonOverlap        Reason = "OVERLAP"
	ReasonDisconnects    Reason = "DISCONNECTS"
	ReasonNotYourTurn    Reason = "NOT_YOUR_TURN"
	ReasonNoWallsLeft    Reason = "NO_WALLS_LEFT"
	ReasonGameNotPlaying Reason = "GAME_NOT_PLAYING"
	ReasonIllegalMove    Reason = "ILLEGAL_MOVE"
	ReasonIllegalAction  Reason = "ILLEGAL_ACTION"
)

// RejectError describes why the engine refused an action. Two RejectErrors
// match under errors.Is when their reasons are equal, so callers compare
// against the sentinels below regardless of Detail.
type RejectError struct {
	Reason Reason
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *RejectError) Is(target error) bool {
	t, ok := target.(*RejectError)
	return ok && t.Reason == e.Reason
}

var (
	ErrOutOfBounds    = &RejectError{Reason: ReasonOutOfBounds}
	ErrOverlap        = &RejectError{Reason: ReasonOverlap}
	ErrDisconnects    = &RejectError{Reason: ReasonDisconnects}
	ErrNotYourTurn    = &RejectError{Reason: ReasonNotYourTurn}
	ErrNoWallsLeft    = &RejectError{Reason: ReasonNoWallsLeft}
	ErrGameNotPlaying = &RejectError{Reason: ReasonGameNotPlaying}
	ErrIllegalMove    = &RejectError{Reason: ReasonIllegalMove}
	ErrIllegalAction  = &RejectError{Reason: ReasonIllegalAction}
)

func rejectf(reason Reason, format string, args ...any) *RejectError {
	return &RejectError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var re *RejectError
	if !errors.As(err, &re) || re == nil {
		return "", false
	}
	return re.Reason, true
}
