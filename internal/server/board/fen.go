package board

import (
	"fmt"

	"chessplay/internal/server/core"

	"github.com/notnil/chess"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"
)

var (
	fromChessKind = map[chess.PieceType]Kind{
		chess.King:   King,
		chess.Queen:  Queen,
		chess.Rook:   Rook,
		chess.Bishop: Bishop,
		chess.Knight: Knight,
		chess.Pawn:   Pawn,
	}
	toChessKind = map[Kind]chess.PieceType{
		King:   chess.King,
		Queen:  chess.Queen,
		Rook:   chess.Rook,
		Bishop: chess.Bishop,
		Knight: chess.Knight,
		Pawn:   chess.Pawn,
	}
)

// ParseFEN decodes the placement and side-to-move fields of a FEN string.
// Castling and en passant fields are accepted but ignored.
func ParseFEN(fen string) (Board, core.Color, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Board{}, 0, fmt.Errorf("invalid FEN: %w", err)
	}
	pos := chess.NewGame(opt).Position()

	var b Board
	for sq, pc := range pos.Board().SquareMap() {
		kind, ok := fromChessKind[pc.Type()]
		if !ok {
			continue
		}
		color := core.ColorWhite
		if pc.Color() == chess.Black {
			color = core.ColorBlack
		}
		b.squares[7-int(sq.Rank())][int(sq.File())] = Piece{Color: color, Kind: kind}
	}

	turn := core.ColorWhite
	if pos.Turn() == chess.Black {
		turn = core.ColorBlack
	}
	return b, turn, nil
}

// FEN encodes the board with the given side to move. Castling and en passant
// are never available, so those fields are always "-".
func (b *Board) FEN(turn core.Color) string {
	return fmt.Sprintf("%s %s - - 0 1", chess.NewBoard(b.squareMap()).String(), turn)
}

func (b *Board) squareMap() map[chess.Square]chess.Piece {
	m := make(map[chess.Square]chess.Piece)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := b.squares[r][c]
			if p.IsEmpty() {
				continue
			}
			color := chess.White
			if p.Color == core.ColorBlack {
				color = chess.Black
			}
			m[chess.Square((7-r)*8+c)] = chess.NewPiece(toChessKind[p.Kind], color)
		}
	}
	return m
}
