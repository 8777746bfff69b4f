package display

import (
	"strings"
	"testing"

	"chessplay/internal/server/core"
)

var startRows = []string{
	"rnbqkbnr",
	"pppppppp",
	"........",
	"........",
	"........",
	"........",
	"PPPPPPPP",
	"RNBQKBNR",
}

func TestFormatBoardMarksSelection(t *testing.T) {
	g := &core.GameResponse{
		Board:      startRows,
		HumanColor: "w",
		Selection:  "e2",
		Moves: []core.MoveInfo{
			{From: "e2", To: "e3", Kind: "move"},
			{From: "e2", To: "e4", Kind: "move"},
		},
	}

	lines := strings.Split(FormatBoard(ViewFromGame(g), false), "\n")
	want := map[int]string{
		0: "   a b c d e f g h",
		1: "8  r n b q k b n r 8",
		5: "4  . . . .*. . . . 4",
		6: "3  . . . .*. . . . 3",
		7: "2  P P P P>P P P P 2",
		9: "   a b c d e f g h",
	}
	for i, line := range want {
		if lines[i] != line {
			t.Fatalf("line %d = %q, want %q", i, lines[i], line)
		}
	}
}

func TestFormatBoardFlippedWithCheck(t *testing.T) {
	g := &core.GameResponse{
		Board:       startRows,
		HumanColor:  "b",
		CheckSquare: "e8",
	}

	lines := strings.Split(FormatBoard(ViewFromGame(g), false), "\n")
	if lines[0] != "   h g f e d c b a" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "1  R N B K Q B N R 1" {
		t.Fatalf("first rank = %q", lines[1])
	}
	if lines[8] != "8  r n b!k q b n r 8" {
		t.Fatalf("last rank = %q", lines[8])
	}
}
