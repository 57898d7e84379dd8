package game

import (
	"math/bits"

	"quoridor/internal/shared"
)

// CellSet is an 81-bit set of board cells, one bit per Position.Index.
type CellSet [2]uint64

func cellBit(p Position) (word int, mask uint64) {
	idx := p.Index()
	return idx >> 6, 1 << (uint(idx) & 63)
}

func (b CellSet) Empty() bool { return b[0] == 0 && b[1] == 0 }

func (b CellSet) Len() int { return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1]) }

func (b CellSet) Has(p Position) bool {
	if !shared.InBounds(p) {
		return false
	}
	w, m := cellBit(p)
	return b[w]&m != 0
}

func (b CellSet) Add(p Position) CellSet {
	if !shared.InBounds(p) {
		return b
	}
	w, m := cellBit(p)
	b[w] |= m
	return b
}

func (b CellSet) Remove(p Position) CellSet {
	if !shared.InBounds(p) {
		return b
	}
	w, m := cellBit(p)
	b[w] &^= m
	return b
}

// Iter visits the members in ascending index order (row-major).
func (b CellSet) Iter(fn func(Position)) {
	for w, word := range b {
		for word != 0 {
			tz := bits.TrailingZeros64(word)
			fn(shared.PositionFromIndex(w*64 + tz))
			word &= word - 1
		}
	}
}

func (b CellSet) Slice() []Position {
	out := make([]Position, 0, b.Len())
	b.Iter(func(p Position) { out = append(out, p) })
	return out
}
