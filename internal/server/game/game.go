package game

import (
	"errors"
	"slices"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/rules"
)

var (
	ErrStaleResult  = errors.New("opponent result belongs to a previous round")
	ErrNotComputing = errors.New("game is not waiting for the opponent")
)

const (
	MessageCheck     = "Check"
	MessageStalemate = "Stalemate — draw"
)

// CheckmateMessage returns the status line announcing winner
func CheckmateMessage(winner core.Color) string {
	return "Checkmate — " + winner.Name() + " wins"
}

// MoveResult tracks the last applied move
type MoveResult struct {
	Move        rules.Move  `json:"move"`
	Piece       board.Piece `json:"piece"`
	PlayerColor core.Color  `json:"playerColor"`
	Score       float64     `json:"score"` // Computer moves only
}

// SelectResult reports what a square selection did
type SelectResult struct {
	Accepted        bool // Input was processed; false while busy or over
	Moved           bool // Selection completed a move
	WrongTurn       bool // Square holds a piece of the side not to move
	OpponentPending bool // The computer is now on move
}

// Snapshot is a read-only copy of everything a renderer needs
type Snapshot struct {
	Board        board.Board
	Turn         core.Color
	HumanColor   core.Color
	Phase        core.Phase
	Selection    board.Square
	HasSelection bool
	Moves        []rules.Move
	InCheck      bool
	CheckSquare  board.Square
	Message      string
	Result       core.Result
	Epoch        int
	Version      int
	Round        int
	LastMove     *MoveResult
	White        *core.Player
	Black        *core.Player
	InitialFEN   string
}

func (s Snapshot) Busy() bool {
	return s.Phase == core.PhaseComputingOpponentMove
}

func (s Snapshot) GameOver() bool {
	return s.Phase == core.PhaseGameOver
}

// FEN encodes the current position
func (s Snapshot) FEN() string {
	return s.Board.FEN(s.Turn)
}

// Game is one human-versus-computer game. A Game is not safe for concurrent
// use; the service serializes access.
type Game struct {
	board      board.Board
	turn       core.Color
	players    map[core.Color]*core.Player
	human      core.Color
	selection  board.Square
	selected   bool
	moves      []rules.Move
	phase      core.Phase
	message    string
	result     core.Result
	epoch      int
	version    int
	round      int
	initialFEN string
	lastMove   *MoveResult
}

// New starts a game from position b with turn to move. human must be the
// opposite color of computer. The position is evaluated immediately, so a
// game may start over or with the computer on move.
func New(b board.Board, turn core.Color, human, computer *core.Player) *Game {
	g := &Game{
		board: b,
		turn:  turn,
		players: map[core.Color]*core.Player{
			human.Color:    human,
			computer.Color: computer,
		},
		human:      human.Color,
		round:      1,
		initialFEN: b.FEN(turn),
	}
	g.settle()
	return g
}

// Select feeds one square selection into the state machine
func (g *Game) Select(sq board.Square) SelectResult {
	if g.phase == core.PhaseComputingOpponentMove || g.phase == core.PhaseGameOver {
		return SelectResult{}
	}
	if !sq.Inside() {
		return SelectResult{}
	}

	if g.phase == core.PhaseAwaitingDestination {
		if i := slices.IndexFunc(g.moves, func(m rules.Move) bool { return m.To == sq }); i >= 0 {
			g.apply(g.moves[i], 0)
			return SelectResult{
				Accepted:        true,
				Moved:           true,
				OpponentPending: g.phase == core.PhaseComputingOpponentMove,
			}
		}
	}

	res := SelectResult{Accepted: true}
	prevSelection, prevSelected, prevPhase := g.selection, g.selected, g.phase
	p, occupied := g.board.PieceAt(sq)
	switch {
	case occupied && p.Color == g.turn:
		g.selection = sq
		g.selected = true
		g.moves = rules.LegalMoves(&g.board, sq)
		g.phase = core.PhaseAwaitingDestination
	default:
		res.WrongTurn = occupied
		g.clearSelection()
		g.phase = core.PhaseAwaitingSelection
	}
	// Clicks that leave the selection as it was are not observable changes
	if g.selection != prevSelection || g.selected != prevSelected || g.phase != prevPhase {
		g.version++
	}
	return res
}

// CompleteComputerMove applies the opponent's choice for the round identified
// by epoch. found is false when the opponent had no move; the turn passes anyway.
func (g *Game) CompleteComputerMove(epoch int, m rules.Move, found bool, score float64) error {
	if epoch != g.epoch {
		return ErrStaleResult
	}
	if g.phase != core.PhaseComputingOpponentMove {
		return ErrNotComputing
	}

	if found {
		g.apply(m, score)
		return nil
	}
	g.turn = core.OppositeColor(g.turn)
	g.settle()
	g.version++
	return nil
}

// Reset returns to the standard starting position with White to move and
// starts a new round. Results computed for earlier rounds become stale.
func (g *Game) Reset() {
	g.board = board.NewStandard()
	g.turn = core.ColorWhite
	g.clearSelection()
	g.result = core.ResultOngoing
	g.lastMove = nil
	g.epoch++
	g.round++
	g.version++
	g.settle()
}

func (g *Game) apply(m rules.Move, score float64) {
	p, _ := g.board.PieceAt(m.From)
	g.board = rules.ApplyMove(&g.board, m.From, m.To)
	g.lastMove = &MoveResult{
		Move:        m,
		Piece:       p,
		PlayerColor: g.turn,
		Score:       score,
	}
	g.clearSelection()
	g.turn = core.OppositeColor(g.turn)
	g.settle()
	g.version++
}

// settle evaluates termination for the side to move and picks the next phase
func (g *Game) settle() {
	inCheck := rules.InCheck(&g.board, g.turn)

	if !rules.HasLegalMove(&g.board, g.turn) {
		g.phase = core.PhaseGameOver
		if inCheck {
			winner := core.OppositeColor(g.turn)
			g.result = core.WinnerResult(winner)
			g.message = CheckmateMessage(winner)
		} else {
			g.result = core.ResultStalemate
			g.message = MessageStalemate
		}
		return
	}

	g.message = ""
	if inCheck {
		g.message = MessageCheck
	}
	if g.turn == g.human {
		g.phase = core.PhaseAwaitingSelection
	} else {
		g.phase = core.PhaseComputingOpponentMove
	}
}

func (g *Game) clearSelection() {
	g.selection = board.Square{}
	g.selected = false
	g.moves = nil
}

func (g *Game) Phase() core.Phase {
	return g.phase
}

func (g *Game) Turn() core.Color {
	return g.turn
}

func (g *Game) Epoch() int {
	return g.epoch
}

func (g *Game) Version() int {
	return g.version
}

func (g *Game) Round() int {
	return g.round
}

func (g *Game) Result() core.Result {
	return g.result
}

func (g *Game) HumanColor() core.Color {
	return g.human
}

func (g *Game) ComputerColor() core.Color {
	return core.OppositeColor(g.human)
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	return g.players[color]
}

// Board returns a copy of the current position
func (g *Game) Board() board.Board {
	return g.board
}

func (g *Game) CurrentFEN() string {
	return g.board.FEN(g.turn)
}

func (g *Game) InitialFEN() string {
	return g.initialFEN
}

// Snapshot copies the observable state
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		Board:        g.board,
		Turn:         g.turn,
		HumanColor:   g.human,
		Phase:        g.phase,
		Selection:    g.selection,
		HasSelection: g.selected,
		Moves:        slices.Clone(g.moves),
		Message:      g.message,
		Result:       g.result,
		Epoch:        g.epoch,
		Version:      g.version,
		Round:        g.round,
		White:        g.players[core.ColorWhite],
		Black:        g.players[core.ColorBlack],
		InitialFEN:   g.initialFEN,
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		s.LastMove = &lm
	}
	if k, ok := g.board.LocateKing(g.turn); ok && rules.InCheck(&g.board, g.turn) {
		s.InCheck = true
		s.CheckSquare = k
	}
	return s
}
