package processor

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/engine"
	"chessplay/internal/server/game"
	"chessplay/internal/server/rules"
	"chessplay/internal/server/service"
)

const DefaultThinkTime = 420 * time.Millisecond

// FEN placement and side to move, with optional castling/en passant and clocks
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb]( [KQkq-]+ [a-h1-8-]+( \d+ \d+)?)?$`)

// Config tunes the opponent
type Config struct {
	Workers   int
	Seed      uint64
	ThinkTime time.Duration // Default delay before the computer replies
}

// Processor executes commands against the service and drives the computer opponent
type Processor struct {
	svc       *service.Service
	queue     *EngineQueue
	thinkTime time.Duration
	fallback  *engine.Engine // Used when the queue cannot take a task
	mu        sync.Mutex
}

// New creates a processor with its own engine worker pool
func New(svc *service.Service, cfg Config) *Processor {
	if cfg.ThinkTime < 0 {
		cfg.ThinkTime = 0
	}
	return &Processor{
		svc:       svc,
		queue:     NewEngineQueue(cfg.Workers, cfg.Seed),
		thinkTime: cfg.ThinkTime,
		fallback:  engine.New(cfg.Seed),
	}
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdSelect:
		return p.handleSelect(cmd)
	case CmdReset:
		return p.handleReset(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetMoves:
		return p.handleGetMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// normalizeFEN rejects control characters and pads a short FEN to six fields
func normalizeFEN(fen string) (string, bool) {
	for _, r := range fen {
		if unicode.IsControl(r) {
			return "", false
		}
	}

	fen = strings.Join(strings.Fields(fen), " ")
	if !fenPattern.MatchString(fen) {
		return "", false
	}

	switch len(strings.Fields(fen)) {
	case 2:
		fen += " - - 0 1"
	case 4:
		fen += " 0 1"
	}
	return fen, true
}

// parseStartPosition decodes fen and checks the position is playable: one king
// per side, no pawns on the first or last rank and the side not to move is not
// in check
func parseStartPosition(fen string) (board.Board, core.Color, error) {
	b, turn, err := board.ParseFEN(fen)
	if err != nil {
		return board.Board{}, 0, err
	}

	for _, c := range []core.Color{core.ColorWhite, core.ColorBlack} {
		if n := b.Count(c, board.King); n != 1 {
			return board.Board{}, 0, fmt.Errorf("%s has %d kings, want 1", c.Name(), n)
		}
	}
	for _, row := range []int{0, 7} {
		for col := 0; col < 8; col++ {
			if p, ok := b.PieceAt(board.Sq(row, col)); ok && p.Kind == board.Pawn {
				return board.Board{}, 0, fmt.Errorf("pawn on %s cannot move", board.Sq(row, col))
			}
		}
	}
	if rules.InCheck(&b, core.OppositeColor(turn)) {
		return board.Board{}, 0, fmt.Errorf("side not to move is in check")
	}
	return b, turn, nil
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	humanColor := core.ColorWhite
	if args.HumanColor != "" {
		if humanColor, ok = core.ParseColor(args.HumanColor); !ok {
			return p.errorResponse("humanColor must be w or b", core.ErrInvalidRequest)
		}
	}

	thinkTime := int(p.thinkTime / time.Millisecond)
	if args.ThinkTime != nil {
		thinkTime = *args.ThinkTime
	}

	b, turn := board.NewStandard(), core.ColorWhite
	if args.FEN != "" {
		fen, safe := normalizeFEN(args.FEN)
		if !safe {
			return p.errorResponse("invalid FEN format or characters", core.ErrInvalidFEN)
		}
		var err error
		if b, turn, err = parseStartPosition(fen); err != nil {
			return p.errorResponse(fmt.Sprintf("invalid FEN: %v", err), core.ErrInvalidFEN)
		}
	}

	human := core.NewHuman(humanColor, cmd.UserID)
	computer := core.NewComputer(core.OppositeColor(humanColor), thinkTime)

	gameID := p.svc.GenerateGameID()
	snap, err := p.svc.CreateGame(gameID, game.New(b, turn, human, computer), cmd.UserID, thinkTime)
	if err != nil {
		if errors.Is(err, service.ErrGameLimit) {
			return p.errorResponse("too many active games", core.ErrResourceLimit)
		}
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Pending: p.scheduleComputerMove(gameID, snap),
		Data:    p.buildGameResponse(gameID, snap),
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Pending: snap.Busy(),
		Data:    p.buildGameResponse(cmd.GameID, snap),
	}
}

// handleSelect feeds a square click into the game. Clicks while the computer
// thinks or after the game ended succeed with Accepted=false.
func (p *Processor) handleSelect(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.SelectRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	sq, err := board.ParseSquare(strings.TrimSpace(args.Square))
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidSquare)
	}

	res, snap, err := p.svc.Select(cmd.GameID, sq)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	pending := false
	if res.OpponentPending {
		pending = p.scheduleComputerMove(cmd.GameID, snap)
	}

	resp := p.buildGameResponse(cmd.GameID, snap)
	resp.Accepted = res.Accepted
	resp.Moved = res.Moved
	resp.WrongTurn = res.WrongTurn

	return ProcessorResponse{
		Success: true,
		Pending: pending,
		Data:    resp,
	}
}

func (p *Processor) handleReset(cmd Command) ProcessorResponse {
	snap, err := p.svc.Reset(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Pending: p.scheduleComputerMove(cmd.GameID, snap),
		Data:    p.buildGameResponse(cmd.GameID, snap),
	}
}

// handleDeleteGame removes a game; an in-flight opponent result is dropped on arrival
func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
	}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   snap.FEN(),
			Board: snap.Board.ToASCII(),
		},
	}
}

func (p *Processor) handleGetMoves(cmd Command) ProcessorResponse {
	square, _ := cmd.Args.(string)
	sq, err := board.ParseSquare(strings.TrimSpace(square))
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidSquare)
	}

	snap, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.MovesResponse{
			Square: sq.String(),
			Moves:  moveInfos(rules.LegalMoves(&snap.Board, sq)),
		},
	}
}

// scheduleComputerMove queues the opponent search when the computer is on
// move. It reports whether a move is now pending.
func (p *Processor) scheduleComputerMove(gameID string, snap game.Snapshot) bool {
	if !snap.Busy() {
		return false
	}

	delay := p.thinkTime
	if player := computerPlayer(snap); player != nil {
		delay = time.Duration(player.ThinkTime) * time.Millisecond
	}

	epoch := snap.Epoch
	err := p.queue.SubmitAsync(gameID, epoch, snap.Board, snap.Turn, delay, func(result EngineResult) {
		p.completeComputerMove(gameID, epoch, result)
	})
	if err != nil {
		log.Printf("Engine queue rejected game %s: %v, using fallback", gameID, err)
		b, color := snap.Board, snap.Turn
		time.AfterFunc(delay, func() {
			p.completeComputerMove(gameID, epoch, p.fallbackSearch(gameID, epoch, b, color))
		})
	}
	return true
}

func (p *Processor) fallbackSearch(gameID string, epoch int, b board.Board, color core.Color) EngineResult {
	p.mu.Lock()
	search, ok := p.fallback.SelectMove(&b, color)
	p.mu.Unlock()

	return EngineResult{
		GameID: gameID,
		Epoch:  epoch,
		Move:   search.Move.Move,
		Found:  ok,
		Score:  search.Score,
	}
}

// completeComputerMove applies an opponent result; results for a deleted game
// or an earlier round are discarded
func (p *Processor) completeComputerMove(gameID string, epoch int, result EngineResult) {
	if result.Error != nil {
		log.Printf("Engine error for game %s: %v", gameID, result.Error)
		snap, err := p.svc.GetGame(gameID)
		if err != nil || snap.Epoch != epoch || !snap.Busy() {
			return
		}
		result = p.fallbackSearch(gameID, epoch, snap.Board, snap.Turn)
	}

	snap, err := p.svc.CompleteComputerMove(gameID, epoch, result.Move, result.Found, result.Score)
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return
	case errors.Is(err, game.ErrStaleResult), errors.Is(err, game.ErrNotComputing):
		log.Printf("Discarding opponent result for game %s: %v", gameID, err)
		return
	case err != nil:
		log.Printf("Failed to apply opponent move for game %s: %v", gameID, err)
		return
	}

	p.scheduleComputerMove(gameID, snap)
}

func computerPlayer(snap game.Snapshot) *core.Player {
	if snap.HumanColor == core.ColorWhite {
		return snap.Black
	}
	return snap.White
}

func moveInfos(moves []rules.Move) []core.MoveInfo {
	infos := make([]core.MoveInfo, 0, len(moves))
	for _, m := range moves {
		infos = append(infos, core.MoveInfo{
			From: m.From.String(),
			To:   m.To.String(),
			Kind: m.Kind.String(),
		})
	}
	return infos
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(gameID string, snap game.Snapshot) core.GameResponse {
	resp := core.GameResponse{
		GameID:     gameID,
		FEN:        snap.FEN(),
		Board:      snap.Board.Rows(),
		Turn:       snap.Turn.String(),
		HumanColor: snap.HumanColor.String(),
		Phase:      snap.Phase.String(),
		Moves:      moveInfos(snap.Moves),
		InCheck:    snap.InCheck,
		Message:    snap.Message,
		Busy:       snap.Busy(),
		GameOver:   snap.GameOver(),
		Result:     snap.Result.String(),
		Version:    snap.Version,
		Players: core.PlayersResponse{
			White: snap.White,
			Black: snap.Black,
		},
	}

	if snap.HasSelection {
		resp.Selection = snap.Selection.String()
	}
	if snap.InCheck {
		resp.CheckSquare = snap.CheckSquare.String()
	}
	if lm := snap.LastMove; lm != nil {
		resp.LastMove = &core.LastMoveInfo{
			From:        lm.Move.From.String(),
			To:          lm.Move.To.String(),
			Piece:       lm.Piece.Kind.String(),
			PlayerColor: lm.PlayerColor.String(),
			Score:       lm.Score,
		}
	}

	return resp
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
