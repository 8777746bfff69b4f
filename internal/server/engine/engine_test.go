package engine

import (
	"testing"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/rules"
)

func mustFEN(t *testing.T, fen string) board.Board {
	t.Helper()
	b, _, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func TestSelectMovePrefersQueenCapture(t *testing.T) {
	// Black knight on f6 can take the undefended queen on d5
	b := mustFEN(t, "7k/8/5n2/3Q4/8/8/8/4K3 b - - 0 1")

	for seed := uint64(1); seed <= 20; seed++ {
		res, ok := New(seed).SelectMove(&b, core.ColorBlack)
		if !ok {
			t.Fatalf("seed %d: no move selected", seed)
		}
		if got := res.Move.String(); got != "f6d5" {
			t.Fatalf("seed %d: selected %s, want f6d5", seed, got)
		}
		if res.Score < 90 {
			t.Fatalf("seed %d: capture score %.2f below 90", seed, res.Score)
		}
	}
}

func TestSelectMovePrefersPromotion(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		color core.Color
		want  string
	}{
		{"white pawn", "k7/4P3/8/8/8/8/8/7K w - - 0 1", core.ColorWhite, "e7e8"},
		{"black pawn", "7k/8/8/8/8/8/3p4/K7 b - - 0 1", core.ColorBlack, "d2d1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			res, ok := New(7).SelectMove(&b, tt.color)
			if !ok {
				t.Fatalf("no move selected")
			}
			if got := res.Move.String(); got != tt.want {
				t.Fatalf("selected %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSelectMoveHasMaximalDeterministicScore(t *testing.T) {
	b := board.NewStandard()

	var best float64
	for i, m := range rules.AllLegalMoves(&b, core.ColorWhite) {
		if s := Evaluate(&b, m); i == 0 || s > best {
			best = s
		}
	}

	for seed := uint64(1); seed <= 50; seed++ {
		res, ok := New(seed).SelectMove(&b, core.ColorWhite)
		if !ok {
			t.Fatalf("seed %d: no move selected", seed)
		}
		if s := Evaluate(&b, res.Move); s < best-jitterRange {
			t.Fatalf("seed %d: %s scores %.3f, best deterministic %.3f", seed, res.Move, s, best)
		}
	}
}

func TestSelectMoveNoLegalMoves(t *testing.T) {
	b := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if _, ok := New(1).SelectMove(&b, core.ColorBlack); ok {
		t.Fatalf("stalemated side must not select a move")
	}
}

func TestSameSeedSameChoice(t *testing.T) {
	b := board.NewStandard()
	a, _ := New(42).SelectMove(&b, core.ColorWhite)
	c, _ := New(42).SelectMove(&b, core.ColorWhite)
	if a.Move != c.Move || a.Score != c.Score {
		t.Fatalf("seeded engines disagree: %v (%.4f) vs %v (%.4f)", a.Move, a.Score, c.Move, c.Score)
	}
}

func TestEvaluateComponents(t *testing.T) {
	b := board.NewStandard()
	e2 := board.Sq(6, 4)
	e4 := board.Sq(4, 4)

	m := rules.PlacedMove{
		Move:  rules.Move{From: e2, To: e4, Kind: rules.MoveQuiet},
		Piece: board.Piece{Color: core.ColorWhite, Kind: board.Pawn},
	}
	// rank term (3.5-0.5)*0.2 plus file term (3.5-0.5)*0.05
	want := 3*rankCentrality + 3*fileCentrality
	if got := Evaluate(&b, m); got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("Evaluate(e2e4) = %v, want %v", got, want)
	}
}
