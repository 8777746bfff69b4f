package rules

import (
	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
)

// PromotionRow returns the row on which color's pawns promote
func PromotionRow(color core.Color) int {
	if color == core.ColorWhite {
		return 0
	}
	return 7
}

// IsPromotion reports whether moving p onto to promotes it
func IsPromotion(p board.Piece, to board.Square) bool {
	return p.Kind == board.Pawn && to.Row == PromotionRow(p.Color)
}

// ApplyMove returns a new board with the piece on from moved to to. Pawns
// reaching their last row become queens. Legality is not checked; an empty
// from square yields an unchanged copy.
func ApplyMove(b *board.Board, from, to board.Square) board.Board {
	p, ok := b.PieceAt(from)
	if !ok || !to.Inside() {
		return b.Clone()
	}

	if IsPromotion(p, to) {
		p.Kind = board.Queen
	}
	next := b.Set(from, board.Piece{})
	return next.Set(to, p)
}
