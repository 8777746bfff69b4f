// Package board holds the value-typed 8x8 board used by the rules engine.
package board

import (
	"fmt"
	"strings"

	"chessplay/internal/server/core"
)

// Kind is the closed set of piece kinds
type Kind byte

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// Letter returns the uppercase FEN letter of the kind
func (k Kind) Letter() byte {
	switch k {
	case King:
		return 'K'
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	default:
		return '.'
	}
}

func (k Kind) String() string {
	switch k {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return "none"
	}
}

// Piece is a colored piece; the zero value marks an empty square
type Piece struct {
	Color core.Color
	Kind  Kind
}

// IsEmpty reports whether p is the empty marker
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Letter returns the FEN letter, uppercase for White, '.' when empty
func (p Piece) Letter() byte {
	l := p.Kind.Letter()
	if p.Kind != NoKind && p.Color == core.ColorBlack {
		l += 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.Name() + " " + p.Kind.String()
}

// Square is a (row, column) coordinate. Row 0 is rank 8, column 0 is file a.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Sq is shorthand for Square{row, col}
func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

// Inside reports whether the square lies on the board
func (s Square) Inside() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// Offset returns the square shifted by dr rows and dc columns, possibly off board
func (s Square) Offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

func (s Square) String() string {
	if !s.Inside() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+s.Col, '8'-s.Row)
}

// ParseSquare converts a coordinate name like "e2" into a Square
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", name)
	}
	file := name[0] | 0x20 // lowercase
	rank := name[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, fmt.Errorf("invalid square %q", name)
	}
	return Square{Row: int('8' - rank), Col: int(file - 'a')}, nil
}

// Board maps every square to a piece or the empty marker.
// Board is a value: assignment and Clone produce independent copies.
type Board struct {
	squares [8][8]Piece
}

// NewStandard returns the standard starting position
func NewStandard() Board {
	var b Board
	back := [8]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for c := 0; c < 8; c++ {
		b.squares[0][c] = Piece{Color: core.ColorBlack, Kind: back[c]}
		b.squares[1][c] = Piece{Color: core.ColorBlack, Kind: Pawn}
		b.squares[6][c] = Piece{Color: core.ColorWhite, Kind: Pawn}
		b.squares[7][c] = Piece{Color: core.ColorWhite, Kind: back[c]}
	}
	return b
}

// PieceAt returns the piece on sq; ok is false for empty or off-board squares
func (b *Board) PieceAt(sq Square) (Piece, bool) {
	if !sq.Inside() {
		return Piece{}, false
	}
	p := b.squares[sq.Row][sq.Col]
	return p, !p.IsEmpty()
}

// LocateKing scans row-major and returns the first king of color
func (b *Board) LocateKing(color core.Color) (Square, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := b.squares[r][c]
			if p.Kind == King && p.Color == color {
				return Square{Row: r, Col: c}, true
			}
		}
	}
	return Square{}, false
}

// Clone returns an independent copy
func (b *Board) Clone() Board {
	return *b
}

// Set returns a copy of the board with sq holding p. Off-board squares are ignored.
func (b *Board) Set(sq Square, p Piece) Board {
	nb := *b
	if sq.Inside() {
		nb.squares[sq.Row][sq.Col] = p
	}
	return nb
}

// Count returns the number of pieces of color and kind
func (b *Board) Count(color core.Color, kind Kind) int {
	n := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b.squares[r][c] == (Piece{Color: color, Kind: kind}) {
				n++
			}
		}
	}
	return n
}

// Rows renders each row as 8 FEN letters with '.' for empty squares, row 0 first
func (b *Board) Rows() []string {
	rows := make([]string, 8)
	for r := 0; r < 8; r++ {
		var sb strings.Builder
		for c := 0; c < 8; c++ {
			sb.WriteByte(b.squares[r][c].Letter())
		}
		rows[r] = sb.String()
	}
	return rows
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for c := 0; c < 8; c++ {
			sb.WriteByte(b.squares[r][c].Letter())
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
