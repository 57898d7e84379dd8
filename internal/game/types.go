package game

import "quoridor/internal/shared"

type (
	Position    = shared.Position
	Wall        = shared.Wall
	Orientation = shared.Orientation
	Side        = shared.Side
	Status      = shared.Status
)

const (
	First  = shared.First
	Second = shared.Second

	Horizontal = shared.Horizontal
	Vertical   = shared.Vertical

	Waiting  = shared.Waiting
	Playing  = shared.Playing
	Finished = shared.Finished
)

// PlayerState is one seat's view of the match.
type PlayerState struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Pos   Position `json:"pos"`
	Walls int      `json:"walls"`
}

// Players holds both seats, addressed by Side through Get.
type Players struct {
	First  PlayerState `json:"first"`
	Second PlayerState `json:"second"`
}

func (p Players) Get(side Side) PlayerState {
	if side == Second {
		return p.Second
	}
	return p.First
}

func (p *Players) set(side Side, ps PlayerState) {
	if side == Second {
		p.Second = ps
		return
	}
	p.First = ps
}

// State is an immutable snapshot of a match. Every transition returns a new
// State; none of the functions in this package modify their arguments.
type State struct {
	Status  Status  `json:"status"`
	Turn    Side    `json:"turn"`
	Winner  *Side   `json:"winner"`
	Players Players `json:"players"`
	Walls   []Wall  `json:"walls"`
}

const (
	defaultFirstName  = "Red"
	defaultSecondName = "Green"
)

// NewState returns a fresh match: both pawns on their start cells, full wall
// allowances, no walls on the board and First to move.
func NewState(firstID, firstName, secondID, secondName string, status Status) State {
	if firstName == "" {
		firstName = defaultFirstName
	}
	if secondName == "" {
		secondName = defaultSecondName
	}
	return State{
		Status: status,
		Turn:   First,
		Players: Players{
			First: PlayerState{
				ID:    firstID,
				Name:  firstName,
				Pos:   First.StartPosition(),
				Walls: shared.WallsPerPlayer,
			},
			Second: PlayerState{
				ID:    secondID,
				Name:  secondName,
				Pos:   Second.StartPosition(),
				Walls: shared.WallsPerPlayer,
			},
		},
		Walls: []Wall{},
	}
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	out.Walls = make([]Wall, len(s.Walls))
	copy(out.Walls, s.Walls)
	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}
	return out
}

// Equal reports whether two snapshots describe the same match position.
// A nil and an empty wall list compare equal.
func (s State) Equal(o State) bool {
	if s.Status != o.Status || s.Turn != o.Turn || s.Players != o.Players {
		return false
	}
	if (s.Winner == nil) != (o.Winner == nil) {
		return false
	}
	if s.Winner != nil && *s.Winner != *o.Winner {
		return false
	}
	if len(s.Walls) != len(o.Walls) {
		return false
	}
	for i := range s.Walls {
		if s.Walls[i] != o.Walls[i] {
			return false
		}
	}
	return true
}

// SideOf resolves an identity token to the seat holding it.
func (s State) SideOf(playerID string) (Side, bool) {
	if playerID == "" {
		return First, false
	}
	switch playerID {
	case s.Players.First.ID:
		return First, true
	case s.Players.Second.ID:
		return Second, true
	default:
		return First, false
	}
}
