package processor

import (
	"testing"
	"time"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/service"
)

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	svc := service.New(nil, []byte("secret"))
	p := New(svc, Config{Workers: 2, Seed: 7, ThinkTime: 0})
	t.Cleanup(func() {
		p.Close()
		svc.Shutdown(time.Second)
	})
	return p
}

func thinkMs(ms int) *int {
	return &ms
}

func gameData(t *testing.T, resp ProcessorResponse) core.GameResponse {
	t.Helper()
	if !resp.Success {
		t.Fatalf("command failed: %+v", resp.Error)
	}
	data, ok := resp.Data.(core.GameResponse)
	if !ok {
		t.Fatalf("data is %T, want core.GameResponse", resp.Data)
	}
	return data
}

func errorCode(resp ProcessorResponse) string {
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

// waitIdle polls until the computer has replied
func waitIdle(t *testing.T, p *Processor, gameID string) core.GameResponse {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		data := gameData(t, p.Execute(NewGetGameCommand(gameID)))
		if !data.Busy {
			return data
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("game %s still busy", gameID)
	return core.GameResponse{}
}

func selectSquare(p *Processor, gameID, square string) ProcessorResponse {
	return p.Execute(NewSelectCommand(gameID, core.SelectRequest{Square: square}))
}

func TestCreateDefaultGame(t *testing.T) {
	p := newProcessor(t)

	resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{}))
	data := gameData(t, resp)
	if resp.Pending || data.Busy {
		t.Fatalf("computer should not move first")
	}
	if data.FEN != board.StartingFEN {
		t.Fatalf("FEN = %q", data.FEN)
	}
	if data.Turn != "w" || data.HumanColor != "w" || data.Phase != core.PhaseAwaitingSelection.String() {
		t.Fatalf("unexpected game: %+v", data)
	}
	if len(data.Board) != 8 || data.Board[7] != "RNBQKBNR" {
		t.Fatalf("board rows = %v", data.Board)
	}
	if data.Players.Black == nil || data.Players.Black.Type != core.PlayerComputer {
		t.Fatalf("black should be the computer: %+v", data.Players.Black)
	}
}

func TestCreateGameFEN(t *testing.T) {
	p := newProcessor(t)

	tests := []struct {
		name string
		fen  string
		code string
	}{
		{"garbage", "not a fen", core.ErrInvalidFEN},
		{"control char", "4k3/8/8/8/8/8/8/4K3 w\x00", core.ErrInvalidFEN},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1", core.ErrInvalidFEN},
		{"no black king", "8/8/8/8/8/8/8/4K3 w - - 0 1", core.ErrInvalidFEN},
		{"mover can capture king", "4k3/8/8/8/8/8/8/4RK2 w - - 0 1", core.ErrInvalidFEN},
		{"white pawn on last rank", "P3k3/8/8/8/8/8/8/4K3 w", core.ErrInvalidFEN},
		{"black pawn on first rank", "4k3/8/8/8/8/8/8/p3K3 b", core.ErrInvalidFEN},
		{"white pawn on first rank", "4k3/8/8/8/8/8/8/4K2P w", core.ErrInvalidFEN},
		{"pawns one step from promoting", "4k3/P7/8/8/8/8/7p/4K3 w", ""},
		{"short form", "4k3/8/8/8/8/8/8/4K3 w", ""},
		{"four fields", "4k3/8/8/8/8/8/8/4K3 w - -", ""},
	}

	for _, tt := range tests {
		resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{FEN: tt.fen}))
		if got := errorCode(resp); got != tt.code {
			t.Fatalf("%s: code = %q, want %q", tt.name, got, tt.code)
		}
	}
}

func TestComputerOpensAsWhite(t *testing.T) {
	p := newProcessor(t)

	resp := p.Execute(NewCreateGameCommand(core.CreateGameRequest{HumanColor: "b", ThinkTime: thinkMs(0)}))
	data := gameData(t, resp)
	if !resp.Pending || !data.Busy {
		t.Fatalf("computer should be thinking: %+v", data)
	}

	data = waitIdle(t, p, data.GameID)
	if data.Turn != "b" || data.LastMove == nil || data.LastMove.PlayerColor != "w" {
		t.Fatalf("computer did not open: %+v", data)
	}
}

func TestSelectAndReply(t *testing.T) {
	p := newProcessor(t)
	created := gameData(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{ThinkTime: thinkMs(0)})))
	id := created.GameID

	data := gameData(t, selectSquare(p, id, "e2"))
	if !data.Accepted || data.Selection != "e2" || len(data.Moves) != 2 {
		t.Fatalf("select e2: %+v", data)
	}

	resp := selectSquare(p, id, "e4")
	data = gameData(t, resp)
	if !data.Moved || !resp.Pending {
		t.Fatalf("e2e4 not played: %+v", data)
	}

	// Clicks are ignored while the computer thinks
	if data.Busy {
		if busy := gameData(t, selectSquare(p, id, "d2")); busy.Accepted && busy.Busy {
			t.Fatalf("click accepted while computing")
		}
	}

	data = waitIdle(t, p, id)
	if data.Turn != "w" || data.LastMove == nil || data.LastMove.PlayerColor != "b" {
		t.Fatalf("no reply from computer: %+v", data)
	}
	if data.Version <= created.Version {
		t.Fatalf("version did not advance: %d -> %d", created.Version, data.Version)
	}
}

func TestSelectErrors(t *testing.T) {
	p := newProcessor(t)
	id := gameData(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{}))).GameID

	if code := errorCode(selectSquare(p, id, "z9")); code != core.ErrInvalidSquare {
		t.Fatalf("z9: code = %q", code)
	}
	if code := errorCode(selectSquare(p, "missing", "e2")); code != core.ErrGameNotFound {
		t.Fatalf("unknown game: code = %q", code)
	}
	if code := errorCode(p.Execute(Command{Type: CmdSelect, GameID: id, Args: "e2"})); code != core.ErrInvalidRequest {
		t.Fatalf("bad args: code = %q", code)
	}
}

func TestGetMovesAndBoard(t *testing.T) {
	p := newProcessor(t)
	id := gameData(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{}))).GameID

	resp := p.Execute(NewGetMovesCommand(id, "g1"))
	moves, ok := resp.Data.(core.MovesResponse)
	if !resp.Success || !ok || len(moves.Moves) != 2 {
		t.Fatalf("g1 moves: %+v", resp)
	}

	// Querying moves does not change the selection
	if data := gameData(t, p.Execute(NewGetGameCommand(id))); data.Selection != "" {
		t.Fatalf("selection changed to %q", data.Selection)
	}

	resp = p.Execute(NewGetBoardCommand(id))
	br, ok := resp.Data.(core.BoardResponse)
	if !resp.Success || !ok || br.FEN != board.StartingFEN || br.Board == "" {
		t.Fatalf("board: %+v", resp)
	}
}

func TestResetDiscardsPendingReply(t *testing.T) {
	p := newProcessor(t)
	id := gameData(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{ThinkTime: thinkMs(150)}))).GameID

	selectSquare(p, id, "e2")
	if data := gameData(t, selectSquare(p, id, "e4")); !data.Busy {
		t.Fatalf("computer should be thinking")
	}

	data := gameData(t, p.Execute(NewResetCommand(id)))
	if data.Busy || data.FEN != board.StartingFEN {
		t.Fatalf("reset: %+v", data)
	}

	time.Sleep(400 * time.Millisecond)
	data = gameData(t, p.Execute(NewGetGameCommand(id)))
	if data.FEN != board.StartingFEN || data.LastMove != nil {
		t.Fatalf("stale reply applied after reset: %+v", data)
	}
}

func TestDeleteWhileThinking(t *testing.T) {
	p := newProcessor(t)
	id := gameData(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{HumanColor: "b", ThinkTime: thinkMs(50)}))).GameID

	if resp := p.Execute(NewDeleteGameCommand(id)); !resp.Success {
		t.Fatalf("delete: %+v", resp.Error)
	}
	time.Sleep(150 * time.Millisecond)

	if code := errorCode(p.Execute(NewGetGameCommand(id))); code != core.ErrGameNotFound {
		t.Fatalf("deleted game still present: %q", code)
	}
	if code := errorCode(p.Execute(NewDeleteGameCommand(id))); code != core.ErrGameNotFound {
		t.Fatalf("second delete: %q", code)
	}
}
