package game

import (
	"errors"
	"testing"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Wall
		want bool
	}{
		{"same horizontal", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 3, Col: 3, Dir: Horizontal}, true},
		{"horizontal shifted by one", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 3, Col: 4, Dir: Horizontal}, true},
		{"horizontal shifted by two", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 3, Col: 5, Dir: Horizontal}, false},
		{"horizontal other row", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 4, Col: 3, Dir: Horizontal}, false},
		{"vertical shifted by one", Wall{Row: 3, Col: 3, Dir: Vertical}, Wall{Row: 4, Col: 3, Dir: Vertical}, true},
		{"vertical shifted by two", Wall{Row: 3, Col: 3, Dir: Vertical}, Wall{Row: 5, Col: 3, Dir: Vertical}, false},
		{"vertical other column", Wall{Row: 3, Col: 3, Dir: Vertical}, Wall{Row: 3, Col: 4, Dir: Vertical}, false},
		{"crossing at same anchor", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 3, Col: 3, Dir: Vertical}, true},
		{"perpendicular touching", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 3, Col: 4, Dir: Vertical}, false},
		{"perpendicular tee", Wall{Row: 3, Col: 3, Dir: Horizontal}, Wall{Row: 2, Col: 3, Dir: Vertical}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Fatalf("Overlaps is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestCheckWallBounds(t *testing.T) {
	s := NewState("a", "A", "b", "B", Playing)
	for _, w := range []Wall{{Row: 8, Col: 0, Dir: Horizontal}, {Row: 0, Col: 8, Dir: Vertical}, {Row: -1, Col: 3, Dir: Horizontal}, {Row: 3, Col: 3, Dir: Orientation(7)}} {
		if err := CheckWall(s, w); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("CheckWall(%v) = %v, want out of bounds", w, err)
		}
	}
}

func TestCheckWallOverlap(t *testing.T) {
	s := NewState("a", "A", "b", "B", Playing)
	s.Walls = []Wall{{Row: 4, Col: 4, Dir: Horizontal}}

	if err := CheckWall(s, Wall{Row: 4, Col: 5, Dir: Horizontal}); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected overlap, got %v", err)
	}
	if err := CheckWall(s, Wall{Row: 4, Col: 4, Dir: Vertical}); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected crossing to overlap, got %v", err)
	}
	if err := CheckWall(s, Wall{Row: 4, Col: 6, Dir: Horizontal}); err != nil {
		t.Fatalf("expected adjacent non-touching wall to be legal, got %v", err)
	}
}

func TestCheckWallRejectsSealingSecond(t *testing.T) {
	// Second sits in the bottom-left 2x2 pocket; H(6,0) closes its top and
	// V(7,1) would close its right side.
	s := playingState(Position{Row: 0, Col: 4}, Position{Row: 8, Col: 0})
	s.Walls = []Wall{{Row: 6, Col: 0, Dir: Horizontal}}

	w := Wall{Row: 7, Col: 1, Dir: Vertical}
	if err := CheckWall(s, w); !errors.Is(err, ErrDisconnects) {
		t.Fatalf("expected disconnect, got %v", err)
	}
	if IsLegalWall(s, w) {
		t.Fatalf("IsLegalWall must agree with CheckWall")
	}
	if !CanReachGoal(Position{Row: 8, Col: 0}, 0, s.Walls) {
		t.Fatalf("the candidate wall must not leak into the state")
	}
}

func TestCheckWallRejectsSealingFirst(t *testing.T) {
	s := playingState(Position{Row: 0, Col: 0}, Position{Row: 8, Col: 4})
	s.Walls = []Wall{{Row: 1, Col: 0, Dir: Horizontal}}

	if err := CheckWall(s, Wall{Row: 0, Col: 1, Dir: Vertical}); !errors.Is(err, ErrDisconnects) {
		t.Fatalf("expected disconnect, got %v", err)
	}
}

func TestCheckWallAcceptsLongDetour(t *testing.T) {
	// A barrier across row 3 with a single gap at column 8 still leaves a path.
	s := NewState("a", "A", "b", "B", Playing)
	s.Walls = []Wall{
		{Row: 3, Col: 0, Dir: Horizontal},
		{Row: 3, Col: 2, Dir: Horizontal},
		{Row: 3, Col: 4, Dir: Horizontal},
	}
	if err := CheckWall(s, Wall{Row: 3, Col: 6, Dir: Horizontal}); err != nil {
		t.Fatalf("expected wall with a remaining gap to be legal, got %v", err)
	}
}

func TestShortestPath(t *testing.T) {
	dist, ok := ShortestPath(Position{Row: 0, Col: 4}, 8, nil)
	if !ok || dist != 8 {
		t.Fatalf("open board distance = %d,%v, want 8", dist, ok)
	}

	walls := []Wall{{Row: 0, Col: 3, Dir: Horizontal}, {Row: 0, Col: 5, Dir: Horizontal}}
	// Columns 3..6 are closed below row 0; the pawn walks to column 2 or 7.
	dist, ok = ShortestPath(Position{Row: 0, Col: 4}, 8, walls)
	if !ok || dist != 10 {
		t.Fatalf("detour distance = %d,%v, want 10", dist, ok)
	}

	if _, ok := ShortestPath(Position{Row: -1, Col: 0}, 8, nil); ok {
		t.Fatalf("expected off-board start to fail")
	}
}

func TestLegalWallsCount(t *testing.T) {
	s := NewState("a", "A", "b", "B", Playing)
	if got := len(LegalWalls(s, First)); got != 128 {
		t.Fatalf("expected every anchor and orientation on an empty board, got %d", got)
	}
	s.Players.First.Walls = 0
	if got := LegalWalls(s, First); got != nil {
		t.Fatalf("expected no walls for an empty allowance, got %d", len(got))
	}
}
