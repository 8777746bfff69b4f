package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chessplay/internal/client/api"
	"chessplay/internal/client/display"
)

// Long-polls to wait for one computer reply
const maxReplyPolls = 3

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new game against the computer",
		Usage:       "new [w|b] [thinkMs] [fen...]",
		Handler:     newGameHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current game ID",
		Usage:       "join <gameId>",
		Handler:     joinGameHandler,
	})

	r.Register(&Command{
		Name:        "select",
		ShortName:   "c",
		Description: "Click a square",
		Usage:       "select <square>",
		Handler:     selectHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Select a piece and its destination",
		Usage:       "move <from><to> | move <from> <to>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "moves",
		ShortName:   "g",
		Description: "List legal moves from a square",
		Usage:       "moves <square>",
		Handler:     movesHandler,
	})

	r.Register(&Command{
		Name:        "reset",
		ShortName:   "z",
		Description: "Start a new round from the standard position",
		Usage:       "reset",
		Handler:     resetHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and game state",
		Usage:       "show",
		Handler:     showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw game JSON",
		Usage:       "state",
		Handler:     gameStateHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll for game updates",
		Usage:       "poll",
		Handler:     pollHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a game",
		Usage:       "delete [gameId]",
		Handler:     deleteGameHandler,
	})
}

func currentGame(s Session) (string, error) {
	gameID := s.GetCurrentGame()
	if gameID == "" {
		return "", fmt.Errorf("no current game, use 'new' or 'join <gameId>'")
	}
	return gameID, nil
}

// parseNewGameArgs reads the optional color, think time and FEN of "new"
func parseNewGameArgs(args []string) (*api.CreateGameRequest, error) {
	req := &api.CreateGameRequest{HumanColor: "w"}

	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "w", "white":
			req.HumanColor = "w"
		case "b", "black":
			req.HumanColor = "b"
		default:
			return nil, fmt.Errorf("color must be w or b")
		}
		args = args[1:]
	}

	if len(args) > 0 {
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("think time must be a non-negative number of milliseconds")
		}
		req.ThinkTime = &ms
		args = args[1:]
	}

	req.FEN = strings.Join(args, " ")
	return req, nil
}

func newGameHandler(s Session, args []string) error {
	req, err := parseNewGameArgs(args)
	if err != nil {
		return err
	}

	c := s.GetClient()
	resp, err := c.CreateGame(req)
	if err != nil {
		return err
	}

	s.SetCurrentGame(resp.GameID)
	s.SetGameState(resp)
	fmt.Printf("%sGame created: %s%s\n", display.Green, resp.GameID, display.Reset)
	fmt.Printf("You play %s\n", display.ColorForTurn(resp.HumanColor))

	if resp.Busy {
		fmt.Printf("%sComputer is thinking...%s\n", display.Magenta, display.Reset)
		resp = awaitReply(s, resp)
	}

	printGame(resp)
	return nil
}

func joinGameHandler(s Session, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: join <gameId>")
	}

	resp, err := s.GetClient().GetGame(args[0])
	if err != nil {
		return err
	}

	s.SetCurrentGame(resp.GameID)
	s.SetGameState(resp)
	fmt.Printf("%sJoined game: %s%s\n", display.Green, resp.GameID, display.Reset)
	printGame(resp)
	return nil
}

func selectHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: select <square>")
	}
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Select(gameID, strings.ToLower(args[0]))
	if err != nil {
		return err
	}
	return afterSelect(s, resp)
}

// splitMove accepts "e2e4" or "e2 e4"
func splitMove(args []string) (string, string, error) {
	switch {
	case len(args) == 1 && len(args[0]) == 4:
		return args[0][:2], args[0][2:], nil
	case len(args) == 2:
		return args[0], args[1], nil
	default:
		return "", "", fmt.Errorf("usage: move <from><to> | move <from> <to>")
	}
}

func moveHandler(s Session, args []string) error {
	from, to, err := splitMove(args)
	if err != nil {
		return err
	}
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	c := s.GetClient()
	resp, err := c.Select(gameID, strings.ToLower(from))
	if err != nil {
		return err
	}
	if !resp.Accepted || resp.Selection == "" {
		s.SetGameState(resp)
		printGame(resp)
		return fmt.Errorf("cannot select %s", from)
	}

	if resp, err = c.Select(gameID, strings.ToLower(to)); err != nil {
		return err
	}
	if !resp.Moved {
		s.SetGameState(resp)
		printGame(resp)
		return fmt.Errorf("%s%s is not a legal move", from, to)
	}
	return afterSelect(s, resp)
}

func afterSelect(s Session, resp *api.GameResponse) error {
	s.SetGameState(resp)

	switch {
	case !resp.Accepted && resp.GameOver:
		fmt.Printf("%sGame is over, use 'reset' to play again%s\n", display.Yellow, display.Reset)
	case !resp.Accepted:
		fmt.Printf("%sComputer is thinking, click ignored%s\n", display.Yellow, display.Reset)
	case resp.WrongTurn:
		fmt.Printf("%sNot your piece%s\n", display.Yellow, display.Reset)
	}

	if resp.Moved && resp.Busy {
		fmt.Printf("%sComputer is thinking...%s\n", display.Magenta, display.Reset)
		resp = awaitReply(s, resp)
	}

	printGame(resp)
	return nil
}

// awaitReply long-polls until the computer has moved
func awaitReply(s Session, resp *api.GameResponse) *api.GameResponse {
	c := s.GetClient()
	for i := 0; i < maxReplyPolls && resp.Busy; i++ {
		next, err := c.WaitGame(resp.GameID, resp.Version)
		if err != nil {
			fmt.Printf("%sWaiting for computer failed: %s%s\n", display.Red, err.Error(), display.Reset)
			return resp
		}
		resp = next
		s.SetGameState(resp)
	}
	return resp
}

func movesHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: moves <square>")
	}
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetMoves(gameID, strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	if len(resp.Moves) == 0 {
		fmt.Printf("No legal moves from %s\n", resp.Square)
		return nil
	}
	targets := make([]string, 0, len(resp.Moves))
	for _, m := range resp.Moves {
		t := m.To
		if m.Kind == "capture" {
			t += "x"
		}
		targets = append(targets, t)
	}
	fmt.Printf("%s: %s\n", resp.Square, strings.Join(targets, " "))
	return nil
}

func resetHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Reset(gameID)
	if err != nil {
		return err
	}
	s.SetGameState(resp)
	fmt.Printf("%sBoard reset%s\n", display.Green, display.Reset)

	if resp.Busy {
		resp = awaitReply(s, resp)
	}
	printGame(resp)
	return nil
}

func showBoardHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}
	s.SetGameState(resp)
	printGame(resp)
	return nil
}

func gameStateHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().GetGame(gameID)
	if err != nil {
		return err
	}
	s.SetGameState(resp)
	display.PrettyPrintJSON(resp)
	return nil
}

func pollHandler(s Session, args []string) error {
	gameID, err := currentGame(s)
	if err != nil {
		return err
	}

	version := s.GetLastVersion()
	fmt.Printf("%sLong-polling for updates (version: %d)...%s\n", display.Cyan, version, display.Reset)
	fmt.Printf("%sThis may take up to 25 seconds%s\n", display.Cyan, display.Reset)

	resp, err := s.GetClient().WaitGame(gameID, version)
	if err != nil {
		return err
	}
	s.SetGameState(resp)

	if resp.Version != version {
		fmt.Printf("%sGame updated%s\n", display.Green, display.Reset)
		printGame(resp)
	} else {
		fmt.Printf("%sNo updates (timeout)%s\n", display.Yellow, display.Reset)
	}
	return nil
}

func deleteGameHandler(s Session, args []string) error {
	gameID := s.GetCurrentGame()
	if len(args) > 0 {
		gameID = args[0]
	}
	if gameID == "" {
		return fmt.Errorf("no game ID provided")
	}

	if err := s.GetClient().DeleteGame(gameID); err != nil {
		return err
	}

	fmt.Printf("%sGame deleted: %s%s\n", display.Green, gameID, display.Reset)
	if gameID == s.GetCurrentGame() {
		s.SetCurrentGame("")
	}
	return nil
}

func printGame(g *api.GameResponse) {
	fmt.Println()
	display.RenderBoard(g)

	fmt.Printf("Turn: %s  Phase: %s\n", display.ColorForTurn(g.Turn), g.Phase)
	if g.LastMove != nil {
		fmt.Printf("Last move: %s %s-%s (%s)\n", g.LastMove.Piece, g.LastMove.From, g.LastMove.To, g.LastMove.PlayerColor)
	}
	if g.Selection != "" {
		fmt.Printf("Selected: %s (%d moves)\n", g.Selection, len(g.Moves))
	}
	if g.Message != "" {
		color := display.Yellow
		if g.GameOver {
			color = display.Magenta
		}
		fmt.Printf("%s%s%s\n", color, g.Message, display.Reset)
	}
}
