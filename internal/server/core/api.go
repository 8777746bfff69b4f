package core

// Request types

type CreateGameRequest struct {
	HumanColor string `json:"humanColor" validate:"omitempty,oneof=w b white black"`
	FEN        string `json:"fen,omitempty" validate:"omitempty,max=100"`
	ThinkTime  *int   `json:"thinkTime,omitempty" validate:"omitempty,min=0,max=10000"` // Milliseconds before the computer replies; nil uses the server default
}

type SelectRequest struct {
	Square string `json:"square" validate:"required,len=2"`
}

// Response types

type GameResponse struct {
	GameID      string          `json:"gameId"`
	FEN         string          `json:"fen"`
	Board       []string        `json:"board"` // 8 rows from rank 8 to rank 1, '.' for empty
	Turn        string          `json:"turn"`  // "w" or "b"
	HumanColor  string          `json:"humanColor"`
	Phase       string          `json:"phase"`
	Selection   string          `json:"selection,omitempty"`
	Moves       []MoveInfo      `json:"moves"`
	InCheck     bool            `json:"inCheck"`
	CheckSquare string          `json:"checkSquare,omitempty"`
	Message     string          `json:"message"`
	Busy        bool            `json:"busy"`
	GameOver    bool            `json:"gameOver"`
	Result      string          `json:"result"`
	Version     int             `json:"version"`
	Players     PlayersResponse `json:"players"`
	LastMove    *LastMoveInfo   `json:"lastMove,omitempty"`

	// Set on select responses only
	Accepted  bool `json:"accepted,omitempty"`
	Moved     bool `json:"moved,omitempty"`
	WrongTurn bool `json:"wrongTurn,omitempty"`
}

type MoveInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"` // "move" or "capture"
}

type LastMoveInfo struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	Piece       string  `json:"piece"`
	PlayerColor string  `json:"playerColor"`
	Score       float64 `json:"score,omitempty"` // Computer moves only
}

type MovesResponse struct {
	Square string     `json:"square"`
	Moves  []MoveInfo `json:"moves"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
