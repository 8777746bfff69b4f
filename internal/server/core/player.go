package core

import (
	"fmt"

	"github.com/google/uuid"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota + 1
	PlayerComputer
)

func (t PlayerType) String() string {
	switch t {
	case PlayerHuman:
		return "human"
	case PlayerComputer:
		return "computer"
	default:
		return "unknown"
	}
}

// Player is one side of a game
type Player struct {
	ID        string     `json:"id"`
	Color     Color      `json:"color"`
	Type      PlayerType `json:"type"`
	ThinkTime int        `json:"thinkTime,omitempty"` // Only for computer, milliseconds
}

// NewHuman creates the human side; userID is kept when the request was authenticated
func NewHuman(color Color, userID string) *Player {
	id := userID
	if id == "" {
		id = uuid.New().String()
	}
	return &Player{
		ID:    id,
		Color: color,
		Type:  PlayerHuman,
	}
}

// NewComputer creates the automated side
func NewComputer(color Color, thinkTime int) *Player {
	return &Player{
		ID:        uuid.New().String(),
		Color:     color,
		Type:      PlayerComputer,
		ThinkTime: thinkTime,
	}
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the capitalized color name used in status messages
func (c Color) Name() string {
	if c == ColorWhite {
		return "White"
	}
	return "Black"
}

// ParseColor accepts "w"/"b" and "white"/"black"
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "white":
		return ColorWhite, true
	case "b", "black":
		return ColorBlack, true
	}
	return 0, false
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// MarshalText encodes the color as "w" or "b"
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any form ParseColor accepts
func (c *Color) UnmarshalText(b []byte) error {
	parsed, ok := ParseColor(string(b))
	if !ok {
		return fmt.Errorf("invalid color %q", b)
	}
	*c = parsed
	return nil
}
