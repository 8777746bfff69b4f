// Package rules implements attack detection, move generation and move
// application over board.Board values. Castling and en passant are not part
// of the rule set.
package rules

import (
	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
)

type offset struct{ dr, dc int }

var (
	knightOffsets = []offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalRays  = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	straightRays  = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	allRays       = append(append([]offset{}, diagonalRays...), straightRays...)
)

// forward returns the row step of color's pawns; White moves toward row 0
func forward(color core.Color) int {
	if color == core.ColorWhite {
		return -1
	}
	return 1
}

// IsAttacked reports whether any piece of color by could capture on sq next move
func IsAttacked(b *board.Board, sq board.Square, by core.Color) bool {
	holds := func(at board.Square, kind board.Kind) bool {
		p, ok := b.PieceAt(at)
		return ok && p.Color == by && p.Kind == kind
	}

	for _, o := range knightOffsets {
		if holds(sq.Offset(o.dr, o.dc), board.Knight) {
			return true
		}
	}

	for _, o := range kingOffsets {
		if holds(sq.Offset(o.dr, o.dc), board.King) {
			return true
		}
	}

	// An attacking pawn sits one step behind sq relative to its own forward direction
	behind := -forward(by)
	for _, dc := range []int{-1, 1} {
		if holds(sq.Offset(behind, dc), board.Pawn) {
			return true
		}
	}

	if rayAttacked(b, sq, by, diagonalRays, board.Bishop) {
		return true
	}
	return rayAttacked(b, sq, by, straightRays, board.Rook)
}

// rayAttacked walks each ray from sq; only the first piece met on a ray can attack
func rayAttacked(b *board.Board, sq board.Square, by core.Color, rays []offset, slider board.Kind) bool {
	for _, o := range rays {
		for at := sq.Offset(o.dr, o.dc); at.Inside(); at = at.Offset(o.dr, o.dc) {
			p, ok := b.PieceAt(at)
			if !ok {
				continue
			}
			if p.Color == by && (p.Kind == slider || p.Kind == board.Queen) {
				return true
			}
			break
		}
	}
	return false
}

// InCheck reports whether color's king is attacked. A side without a king is never in check.
func InCheck(b *board.Board, color core.Color) bool {
	k, ok := b.LocateKing(color)
	if !ok {
		return false
	}
	return IsAttacked(b, k, core.OppositeColor(color))
}
