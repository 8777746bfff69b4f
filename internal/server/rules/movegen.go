package rules

import (
	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
)

// MoveKind tags a destination as a quiet move or a capture
type MoveKind int

const (
	MoveQuiet MoveKind = iota
	MoveCapture
)

func (k MoveKind) String() string {
	if k == MoveCapture {
		return "capture"
	}
	return "move"
}

// Move is a transition from one square to another
type Move struct {
	From board.Square `json:"from"`
	To   board.Square `json:"to"`
	Kind MoveKind     `json:"kind"`
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// PlacedMove is a legal move together with the piece making it
type PlacedMove struct {
	Move
	Piece board.Piece
}

// GameStatus classifies a position for the side to move
type GameStatus int

const (
	StatusOngoing GameStatus = iota
	StatusCheckmate
	StatusStalemate
)

func (s GameStatus) String() string {
	switch s {
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

// PseudoMoves enumerates destinations that obey the geometry of the piece on
// sq without regard to the safety of its own king. Empty squares yield nil.
func PseudoMoves(b *board.Board, sq board.Square) []Move {
	p, ok := b.PieceAt(sq)
	if !ok {
		return nil
	}

	var moves []Move
	// target classifies a destination; it returns false when the square is unusable
	target := func(to board.Square) (MoveKind, bool) {
		if !to.Inside() {
			return 0, false
		}
		t, occupied := b.PieceAt(to)
		if !occupied {
			return MoveQuiet, true
		}
		if t.Color != p.Color {
			return MoveCapture, true
		}
		return 0, false
	}
	step := func(offsets []offset) {
		for _, o := range offsets {
			to := sq.Offset(o.dr, o.dc)
			if kind, ok := target(to); ok {
				moves = append(moves, Move{From: sq, To: to, Kind: kind})
			}
		}
	}
	slide := func(rays []offset) {
		for _, o := range rays {
			for to := sq.Offset(o.dr, o.dc); to.Inside(); to = to.Offset(o.dr, o.dc) {
				kind, ok := target(to)
				if !ok {
					break
				}
				moves = append(moves, Move{From: sq, To: to, Kind: kind})
				if kind == MoveCapture {
					break
				}
			}
		}
	}

	switch p.Kind {
	case board.Knight:
		step(knightOffsets)
	case board.King:
		step(kingOffsets)
	case board.Bishop:
		slide(diagonalRays)
	case board.Rook:
		slide(straightRays)
	case board.Queen:
		slide(allRays)
	case board.Pawn:
		moves = pawnMoves(b, sq, p.Color)
	}
	return moves
}

func pawnMoves(b *board.Board, sq board.Square, color core.Color) []Move {
	var moves []Move
	dir := forward(color)
	startRow := 6
	if color == core.ColorBlack {
		startRow = 1
	}

	one := sq.Offset(dir, 0)
	if _, occupied := b.PieceAt(one); one.Inside() && !occupied {
		moves = append(moves, Move{From: sq, To: one, Kind: MoveQuiet})
		two := sq.Offset(2*dir, 0)
		if _, occupied := b.PieceAt(two); sq.Row == startRow && two.Inside() && !occupied {
			moves = append(moves, Move{From: sq, To: two, Kind: MoveQuiet})
		}
	}

	for _, dc := range []int{-1, 1} {
		to := sq.Offset(dir, dc)
		if t, ok := b.PieceAt(to); ok && t.Color != color {
			moves = append(moves, Move{From: sq, To: to, Kind: MoveCapture})
		}
	}
	return moves
}

// LegalMoves filters PseudoMoves down to moves that leave the mover's king safe
func LegalMoves(b *board.Board, sq board.Square) []Move {
	p, ok := b.PieceAt(sq)
	if !ok {
		return nil
	}

	var legal []Move
	for _, m := range PseudoMoves(b, sq) {
		next := ApplyMove(b, m.From, m.To)
		if !InCheck(&next, p.Color) {
			legal = append(legal, m)
		}
	}
	return legal
}

// AllLegalMoves collects the legal moves of every piece of color in row-major order
func AllLegalMoves(b *board.Board, color core.Color) []PlacedMove {
	var all []PlacedMove
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			sq := board.Sq(r, c)
			p, ok := b.PieceAt(sq)
			if !ok || p.Color != color {
				continue
			}
			for _, m := range LegalMoves(b, sq) {
				all = append(all, PlacedMove{Move: m, Piece: p})
			}
		}
	}
	return all
}

// HasLegalMove reports whether color has at least one legal move
func HasLegalMove(b *board.Board, color core.Color) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			sq := board.Sq(r, c)
			if p, ok := b.PieceAt(sq); ok && p.Color == color && len(LegalMoves(b, sq)) > 0 {
				return true
			}
		}
	}
	return false
}

// Status classifies the position for color as the side to move
func Status(b *board.Board, color core.Color) GameStatus {
	if HasLegalMove(b, color) {
		return StatusOngoing
	}
	if InCheck(b, color) {
		return StatusCheckmate
	}
	return StatusStalemate
}
