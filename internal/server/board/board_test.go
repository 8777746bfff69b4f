package board

import (
	"strings"
	"testing"

	"chessplay/internal/server/core"
)

func TestNewStandardLayout(t *testing.T) {
	b := NewStandard()

	want := []string{
		"rnbqkbnr",
		"pppppppp",
		"........",
		"........",
		"........",
		"........",
		"PPPPPPPP",
		"RNBQKBNR",
	}
	got := b.Rows()
	for r := range want {
		if got[r] != want[r] {
			t.Fatalf("row %d: got %q, want %q", r, got[r], want[r])
		}
	}
}

func TestPieceAt(t *testing.T) {
	b := NewStandard()

	tests := []struct {
		name  string
		sq    Square
		want  Piece
		found bool
	}{
		{"white king", Sq(7, 4), Piece{Color: core.ColorWhite, Kind: King}, true},
		{"black queen", Sq(0, 3), Piece{Color: core.ColorBlack, Kind: Queen}, true},
		{"empty centre", Sq(4, 4), Piece{}, false},
		{"off board row", Sq(8, 0), Piece{}, false},
		{"off board col", Sq(0, -1), Piece{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.PieceAt(tt.sq)
			if ok != tt.found || got != tt.want {
				t.Fatalf("PieceAt(%v) = %v, %v; want %v, %v", tt.sq, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestLocateKing(t *testing.T) {
	b := NewStandard()

	if sq, ok := b.LocateKing(core.ColorWhite); !ok || sq != Sq(7, 4) {
		t.Fatalf("white king at %v (%v), want e1", sq, ok)
	}
	if sq, ok := b.LocateKing(core.ColorBlack); !ok || sq != Sq(0, 4) {
		t.Fatalf("black king at %v (%v), want e8", sq, ok)
	}

	var empty Board
	if _, ok := empty.LocateKing(core.ColorWhite); ok {
		t.Fatalf("expected no king on empty board")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewStandard()
	c := b.Clone()

	c = c.Set(Sq(6, 4), Piece{})
	if _, ok := b.PieceAt(Sq(6, 4)); !ok {
		t.Fatalf("mutating clone changed the original")
	}
	if _, ok := c.PieceAt(Sq(6, 4)); ok {
		t.Fatalf("clone was not updated")
	}
}

func TestSquareNames(t *testing.T) {
	tests := []struct {
		name string
		sq   Square
	}{
		{"a8", Sq(0, 0)},
		{"h8", Sq(0, 7)},
		{"e2", Sq(6, 4)},
		{"a1", Sq(7, 0)},
		{"H1", Sq(7, 7)},
	}
	for _, tt := range tests {
		sq, err := ParseSquare(tt.name)
		if err != nil {
			t.Fatalf("ParseSquare(%q): %v", tt.name, err)
		}
		if sq != tt.sq {
			t.Fatalf("ParseSquare(%q) = %v, want %v", tt.name, sq, tt.sq)
		}
		if got := sq.String(); got != strings.ToLower(tt.name) {
			t.Fatalf("String() = %q, want %q", got, strings.ToLower(tt.name))
		}
	}

	for _, bad := range []string{"", "e", "e9", "i1", "e22", "11"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Fatalf("ParseSquare(%q) should fail", bad)
		}
	}
}

func TestFENRoundTrip(t *testing.T) {
	b := NewStandard()
	if got := b.FEN(core.ColorWhite); got != StartingFEN {
		t.Fatalf("FEN() = %q, want %q", got, StartingFEN)
	}

	fen := "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	parsed, turn, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if turn != core.ColorBlack {
		t.Fatalf("turn = %v, want b", turn)
	}
	if p, ok := parsed.PieceAt(Sq(1, 5)); !ok || p != (Piece{Color: core.ColorWhite, Kind: Queen}) {
		t.Fatalf("f7 = %v, want white queen", p)
	}
	if got := parsed.FEN(turn); got != fen {
		t.Fatalf("re-encoded FEN = %q, want %q", got, fen)
	}
}

func TestParseFENRejectsGarbage(t *testing.T) {
	if _, _, err := ParseFEN("not a fen"); err == nil {
		t.Fatalf("expected error for malformed FEN")
	}
}

func TestToASCII(t *testing.T) {
	b := NewStandard()
	lines := strings.Split(b.ToASCII(), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want 10", len(lines))
	}
	if lines[1] != "8 r n b q k b n r  8" {
		t.Fatalf("rank 8 line = %q", lines[1])
	}
	if lines[8] != "1 R N B Q K B N R  1" {
		t.Fatalf("rank 1 line = %q", lines[8])
	}
}
