package shared

import (
	"fmt"
	"strings"
)

const (
	// BoardSize is the number of cells along each side of the board.
	BoardSize = 9
	// WallSlots is the number of wall anchors along each side (intersections).
	WallSlots = BoardSize - 1
	// WallsPerPlayer is the starting wall allowance for each side.
	WallsPerPlayer = 10
)

// Side identifies one of the two seats in a match.
type Side uint8

const (
	First Side = iota
	Second
)

func (s Side) Opposite() Side {
	if s == First {
		return Second
	}
	return First
}

func (s Side) String() string {
	if s == First {
		return "first"
	}
	return "second"
}

// GoalRow is the row the side's pawn must reach to win.
func (s Side) GoalRow() int {
	if s == First {
		return BoardSize - 1
	}
	return 0
}

// StartPosition is the cell the side's pawn occupies in a fresh match.
func (s Side) StartPosition() Position {
	if s == First {
		return Position{Row: 0, Col: BoardSize / 2}
	}
	return Position{Row: BoardSize - 1, Col: BoardSize / 2}
}

func ParseSide(s string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "player1", "p1", "1":
		return First, true
	case "second", "player2", "p2", "2":
		return Second, true
	default:
		return First, false
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(text []byte) error {
	parsed, ok := ParseSide(string(text))
	if !ok {
		return fmt.Errorf("invalid side %q", string(text))
	}
	*s = parsed
	return nil
}

// Status is the lifecycle stage of a match.
type Status uint8

const (
	Waiting Status = iota
	Playing
	Finished
)

func (s Status) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "waiting":
		return Waiting, true
	case "playing":
		return Playing, true
	case "finished":
		return Finished, true
	default:
		return Waiting, false
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(text []byte) error {
	parsed, ok := ParseStatus(string(text))
	if !ok {
		return fmt.Errorf("invalid status %q", string(text))
	}
	*s = parsed
	return nil
}

// ---------------------------
// Cells and walls
// ---------------------------

// Position identifies a pawn cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Index maps an in-bounds position to 0..80.
func (p Position) Index() int { return p.Row*BoardSize + p.Col }

func PositionFromIndex(idx int) Position {
	return Position{Row: idx / BoardSize, Col: idx % BoardSize}
}

type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "v"
	}
	return "h"
}

func ParseOrientation(s string) (Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, true
	case "v", "vertical":
		return Vertical, true
	default:
		return Horizontal, false
	}
}

func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, ok := ParseOrientation(string(text))
	if !ok {
		return fmt.Errorf("invalid wall orientation %q", string(text))
	}
	*o = parsed
	return nil
}

// Wall is a two-cell blocking segment anchored at the intersection below and
// to the right of cell (Row, Col). A horizontal wall separates rows Row and
// Row+1 across columns Col and Col+1; a vertical wall separates columns Col and
// Col+1 across rows Row and Row+1.
type Wall struct {
	Row int         `json:"row"`
	Col int         `json:"col"`
	Dir Orientation `json:"dir"`
}

func (w Wall) String() string { return fmt.Sprintf("%s(%d,%d)", w.Dir, w.Row, w.Col) }
