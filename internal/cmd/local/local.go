// Package local runs a pass-and-play match over a line-based terminal.
package local

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quoridor/internal/game"
	"quoridor/internal/shared"
)

const help = `commands:
  m ROW COL          move the pawn
  w ROW COL h|v      place a wall anchored at ROW COL
  moves              list legal destinations
  undo               take back the last action
  log                list the actions played so far
  board              print the board
  help               show this text
  quit               leave
`

// Session is one local match.
type Session struct {
	history *game.History
	out     io.Writer
}

func NewSession(firstName, secondName string, out io.Writer) *Session {
	return &Session{
		history: game.NewHistory(game.NewState("local-1", firstName, "local-2", secondName, game.Playing)),
		out:     out,
	}
}

func (s *Session) State() game.State { return s.history.Current() }

// Run reads commands from in until quit or end of input.
func Run(in io.Reader, out io.Writer, firstName, secondName string) error {
	s := NewSession(firstName, secondName, out)
	s.printBoard()
	s.prompt()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if !s.Exec(sc.Text()) {
			return nil
		}
		s.prompt()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// Exec runs one command line and reports whether the session continues.
func (s *Session) Exec(line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return false
	case "h", "help", "?":
		fmt.Fprint(s.out, help)
	case "b", "board":
		s.printBoard()
	case "moves":
		s.printMoves()
	case "log":
		s.printLog()
	case "u", "undo":
		if _, ok := s.history.Undo(); !ok {
			fmt.Fprintln(s.out, "nothing to undo")
			return true
		}
		s.printBoard()
	case "m", "move":
		to, err := parsePosition(fields[1:])
		if err != nil {
			fmt.Fprintf(s.out, "usage: m ROW COL (%v)\n", err)
			return true
		}
		s.apply(game.MoveAction(s.State().Turn, to))
	case "w", "wall":
		if len(fields) != 4 {
			fmt.Fprintln(s.out, "usage: w ROW COL h|v")
			return true
		}
		at, err := parsePosition(fields[1:3])
		if err != nil {
			fmt.Fprintf(s.out, "usage: w ROW COL h|v (%v)\n", err)
			return true
		}
		dir, ok := shared.ParseOrientation(fields[3])
		if !ok {
			fmt.Fprintf(s.out, "unknown orientation %q\n", fields[3])
			return true
		}
		s.apply(game.WallAction(s.State().Turn, game.Wall{Row: at.Row, Col: at.Col, Dir: dir}))
	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", fields[0])
	}
	return true
}

func (s *Session) apply(a game.Action) {
	res := s.history.Apply(a)
	if !res.Accepted() {
		fmt.Fprintf(s.out, "rejected: %v\n", res.Err)
		return
	}
	s.printBoard()
	if w, ok := game.Winner(res.State); ok {
		fmt.Fprintf(s.out, "%s wins!\n", res.State.Players.Get(w).Name)
	}
}

func (s *Session) printBoard() {
	st := s.State()
	fmt.Fprint(s.out, game.Render(st))
	fmt.Fprintf(s.out, "walls: %s %d, %s %d\n",
		st.Players.First.Name, st.Players.First.Walls,
		st.Players.Second.Name, st.Players.Second.Walls)
}

func (s *Session) printMoves() {
	st := s.State()
	moves := game.LegalMoves(st, st.Turn)
	parts := make([]string, 0, len(moves))
	for _, p := range moves {
		parts = append(parts, p.String())
	}
	fmt.Fprintf(s.out, "%s can move to %s\n", st.Players.Get(st.Turn).Name, strings.Join(parts, " "))
}

func (s *Session) printLog() {
	actions := s.history.Actions()
	if len(actions) == 0 {
		fmt.Fprintln(s.out, "no actions yet")
		return
	}
	for i, a := range actions {
		fmt.Fprintf(s.out, "%3d. %s\n", i+1, a)
	}
}

func (s *Session) prompt() {
	st := s.State()
	if st.Status == game.Finished {
		fmt.Fprint(s.out, "game over (undo or quit)> ")
		return
	}
	fmt.Fprintf(s.out, "%s (%s)> ", st.Players.Get(st.Turn).Name, st.Turn)
}

func parsePosition(fields []string) (game.Position, error) {
	if len(fields) != 2 {
		return game.Position{}, fmt.Errorf("want row and column")
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return game.Position{}, fmt.Errorf("row: %w", err)
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return game.Position{}, fmt.Errorf("col: %w", err)
	}
	return game.Position{Row: row, Col: col}, nil
}
