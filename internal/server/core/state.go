package core

// Phase is the selection state of a game's input loop
type Phase int

const (
	PhaseAwaitingSelection     Phase = iota
	PhaseAwaitingDestination         // A piece of the side to move is selected
	PhaseComputingOpponentMove       // Computer is calculating a move, input rejected
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingSelection:
		return "awaiting_selection"
	case PhaseAwaitingDestination:
		return "awaiting_destination"
	case PhaseComputingOpponentMove:
		return "computing"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Result is the outcome of a game round
type Result int

const (
	ResultOngoing Result = iota
	ResultWhiteWins
	ResultBlackWins
	ResultStalemate
)

func (r Result) String() string {
	switch r {
	case ResultWhiteWins:
		return "white wins"
	case ResultBlackWins:
		return "black wins"
	case ResultStalemate:
		return "stalemate"
	case ResultOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// WinnerResult returns the result for a checkmate delivered by color
func WinnerResult(winner Color) Result {
	if winner == ColorWhite {
		return ResultWhiteWins
	}
	return ResultBlackWins
}
