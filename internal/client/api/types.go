package api

import (
	"time"

	"chessplay/internal/server/core"
)

// Game payloads are shared with the server
type (
	CreateGameRequest = core.CreateGameRequest
	SelectRequest     = core.SelectRequest
	GameResponse      = core.GameResponse
	MovesResponse     = core.MovesResponse
	BoardResponse     = core.BoardResponse
	ErrorResponse     = core.ErrorResponse
)

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Games   int    `json:"games"`
	Storage string `json:"storage,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
