package processor

import (
	"chessplay/internal/server/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdCreateGame CommandType = iota
	CmdGetGame
	CmdDeleteGame
	CmdSelect
	CmdReset
	CmdGetBoard
	CmdGetMoves
)

// Command is a unified structure for all processor operations
type Command struct {
	Type   CommandType
	UserID string
	GameID string // For game-specific commands
	Args   any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending,omitempty"` // Computer move scheduled
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewCreateGameCommand(req core.CreateGameRequest) Command {
	return Command{
		Type: CmdCreateGame,
		Args: req,
	}
}

func NewGetGameCommand(gameID string) Command {
	return Command{
		Type:   CmdGetGame,
		GameID: gameID,
	}
}

func NewSelectCommand(gameID string, req core.SelectRequest) Command {
	return Command{
		Type:   CmdSelect,
		GameID: gameID,
		Args:   req,
	}
}

func NewResetCommand(gameID string) Command {
	return Command{
		Type:   CmdReset,
		GameID: gameID,
	}
}

func NewDeleteGameCommand(gameID string) Command {
	return Command{
		Type:   CmdDeleteGame,
		GameID: gameID,
	}
}

func NewGetBoardCommand(gameID string) Command {
	return Command{
		Type:   CmdGetBoard,
		GameID: gameID,
	}
}

// NewGetMovesCommand queries the legal moves from square without touching the selection
func NewGetMovesCommand(gameID, square string) Command {
	return Command{
		Type:   CmdGetMoves,
		GameID: gameID,
		Args:   square,
	}
}
