package rules

import (
	"sort"
	"testing"

	"chessplay/internal/server/board"

	"github.com/notnil/chess"
)

// Positions without castling rights or en passant targets, where the
// generator must agree with a full chess implementation. Underpromotions
// are folded into the queen move since pawns always become queens.
func TestLegalMovesMatchReference(t *testing.T) {
	positions := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w - - 1 8",
		"4k3/8/8/8/8/8/4q3/4K3 w - - 0 1",
	}

	for _, fen := range positions {
		t.Run(fen, func(t *testing.T) {
			b, turn, err := board.ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}

			var got []string
			for _, m := range AllLegalMoves(&b, turn) {
				got = append(got, m.From.String()+m.To.String())
			}

			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatalf("reference FEN: %v", err)
			}
			var want []string
			for _, m := range chess.NewGame(opt).ValidMoves() {
				if p := m.Promo(); p != chess.NoPieceType && p != chess.Queen {
					continue
				}
				want = append(want, m.S1().String()+m.S2().String())
			}

			sort.Strings(got)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("generated %d moves, reference has %d\ngot  %v\nwant %v", len(got), len(want), got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("move %d = %s, reference %s\ngot  %v\nwant %v", i, got[i], want[i], got, want)
				}
			}
		})
	}
}
