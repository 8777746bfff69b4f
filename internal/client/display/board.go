package display

import (
	"fmt"
	"strings"

	"chessplay/internal/server/core"
)

// BoardView is what the terminal board needs from a game state
type BoardView struct {
	Rows      []string // Rank 8 first, '.' for empty
	Selection string
	Targets   map[string]bool
	Check     string
	Flip      bool // Draw from Black's side
}

// ViewFromGame builds a view oriented for the human player
func ViewFromGame(g *core.GameResponse) BoardView {
	v := BoardView{
		Rows:      g.Board,
		Selection: g.Selection,
		Targets:   make(map[string]bool, len(g.Moves)),
		Check:     g.CheckSquare,
		Flip:      g.HumanColor == "b",
	}
	for _, m := range g.Moves {
		v.Targets[m.To] = true
	}
	return v
}

// FormatBoard draws the board with coordinates. Without color, the selected
// square is marked '>', destinations '*' and a checked king '!'.
func FormatBoard(v BoardView, colored bool) string {
	files := []byte("abcdefgh")
	rows := []int{0, 1, 2, 3, 4, 5, 6, 7}
	if v.Flip {
		files = []byte("hgfedcba")
		rows = []int{7, 6, 5, 4, 3, 2, 1, 0}
	}

	var sb strings.Builder
	header := "  "
	for _, f := range files {
		header += " " + string(f)
	}
	writeCoord(&sb, header, colored)
	sb.WriteString("\n")

	for _, r := range rows {
		rank := fmt.Sprintf("%d", 8-r)
		writeCoord(&sb, rank+" ", colored)
		for _, f := range files {
			col := int(f - 'a')
			piece := byte('.')
			if r < len(v.Rows) && col < len(v.Rows[r]) {
				piece = v.Rows[r][col]
			}
			square := string(f) + rank
			sb.WriteString(formatCell(square, piece, v, colored))
		}
		sb.WriteString(" ")
		writeCoord(&sb, rank, colored)
		sb.WriteString("\n")
	}

	writeCoord(&sb, header, colored)
	sb.WriteString("\n")
	return sb.String()
}

func writeCoord(sb *strings.Builder, s string, colored bool) {
	if colored {
		sb.WriteString(Cyan + s + Reset)
	} else {
		sb.WriteString(s)
	}
}

func formatCell(square string, piece byte, v BoardView, colored bool) string {
	var marker byte = ' '
	bg := ""
	switch {
	case square == v.Check:
		marker, bg = '!', BgCheck
	case square == v.Selection:
		marker, bg = '>', BgSelected
	case v.Targets[square]:
		marker, bg = '*', BgTarget
	}

	if !colored {
		return string([]byte{marker, piece})
	}

	fg := ""
	switch {
	case piece >= 'A' && piece <= 'Z':
		fg = Blue
	case piece >= 'a' && piece <= 'z':
		fg = Red
	}
	return " " + bg + fg + string(piece) + Reset
}

// RenderBoard prints the board, colored, to stdout
func RenderBoard(g *core.GameResponse) {
	fmt.Print(FormatBoard(ViewFromGame(g), true))
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
