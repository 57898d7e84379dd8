package game

import (
	"strings"

	"quoridor/internal/shared"
)

// Render draws the board as text. Pawns are 1 (First) and 2 (Second);
// '|' and '-' mark edges a wall blocks.
func Render(s State) string {
	var b strings.Builder
	b.WriteString("   ")
	for c := 0; c < shared.BoardSize; c++ {
		b.WriteByte(byte('0' + c))
		b.WriteByte(' ')
	}
	b.WriteByte('\n')

	for r := 0; r < shared.BoardSize; r++ {
		b.WriteByte(byte('0' + r))
		b.WriteString("  ")
		for c := 0; c < shared.BoardSize; c++ {
			p := Position{Row: r, Col: c}
			switch p {
			case s.Players.First.Pos:
				b.WriteByte('1')
			case s.Players.Second.Pos:
				b.WriteByte('2')
			default:
				b.WriteByte('.')
			}
			if c < shared.BoardSize-1 {
				if shared.IsBlocked(p, Position{Row: r, Col: c + 1}, s.Walls) {
					b.WriteByte('|')
				} else {
					b.WriteByte(' ')
				}
			}
		}
		b.WriteByte('\n')

		if r == shared.BoardSize-1 {
			break
		}
		b.WriteString("   ")
		for c := 0; c < shared.BoardSize; c++ {
			if shared.IsBlocked(Position{Row: r, Col: c}, Position{Row: r + 1, Col: c}, s.Walls) {
				b.WriteByte('-')
			} else {
				b.WriteByte(' ')
			}
			if c < shared.BoardSize-1 {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
