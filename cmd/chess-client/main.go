// Package main implements an interactive terminal client for the chess server API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessplay/internal/client/commands"
	"chessplay/internal/client/display"
	"chessplay/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Chess server base URL")
	history := flag.String("history", ".chess_history", "Readline history file, empty to disable")
	flag.Parse()

	s := session.New(*apiURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChess Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands, 'new' to start a game\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		s.Verbose = strings.HasSuffix(line, " -v")
		line = strings.TrimSuffix(line, " -v")

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	var parts []string

	if s.Username != "" {
		parts = append(parts, display.Magenta+s.Username+display.Reset)
	}
	if s.CurrentGame != "" {
		id := s.CurrentGame
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, display.White+id+display.Reset)
	}
	if s.CurrentGameState != nil && s.PlayerColor != "" {
		parts = append(parts, display.ColorForTurn(s.PlayerColor))
	}

	prompt := "chess"
	if len(parts) > 0 {
		prompt += display.Yellow + " [" + display.Reset +
			strings.Join(parts, display.Yellow+" - "+display.Reset) +
			display.Yellow + "]" + display.Reset
	}

	if g := s.CurrentGameState; g != nil {
		switch {
		case g.GameOver:
			prompt += " - " + g.Result
		case g.Busy:
			prompt += " - " + display.Magenta + "thinking" + display.Reset
		default:
			prompt += " - Turn:" + display.ColorForTurn(g.Turn)
		}
	}

	return display.Prompt(prompt)
}
