package http

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"chessplay/internal/server/core"
	"chessplay/internal/server/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Socket message types
const (
	SocketSelect = "select"
	SocketReset  = "reset"
	SocketState  = "state"
	SocketError  = "error"
)

// SocketMessage is a client command sent over the game socket
type SocketMessage struct {
	Type   string `json:"type"`
	Square string `json:"square,omitempty"`
}

// SocketEvent is pushed to the client on every state change and in reply to commands
type SocketEvent struct {
	Type  string              `json:"type"`
	Game  *core.GameResponse  `json:"game,omitempty"`
	Error *core.ErrorResponse `json:"error,omitempty"`
}

// websocketUpgrade only lets WebSocket handshakes through
func websocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// GameSocket streams game state and accepts select/reset commands
func (h *HTTPHandler) GameSocket(c *websocket.Conn) {
	gameID := c.Params("gameId")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	send := func(ev SocketEvent) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return c.WriteJSON(ev)
	}

	go func() {
		defer cancel()
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}

			var msg SocketMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				send(socketError("invalid message", core.ErrInvalidRequest))
				continue
			}

			ev := h.handleSocketMessage(gameID, msg)
			if err := send(ev); err != nil {
				return
			}
		}
	}()

	version := -1
	for {
		resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
		if !resp.Success {
			send(SocketEvent{Type: SocketError, Error: resp.Error})
			return
		}

		state := resp.Data.(core.GameResponse)
		if state.Version != version {
			version = state.Version
			if err := send(SocketEvent{Type: SocketState, Game: &state}); err != nil {
				log.Printf("Socket write for game %s failed: %v", gameID, err)
				return
			}
		}

		select {
		case <-h.svc.RegisterWait(ctx, gameID, version):
		case <-ctx.Done():
			return
		}
	}
}

func (h *HTTPHandler) handleSocketMessage(gameID string, msg SocketMessage) SocketEvent {
	var resp processor.ProcessorResponse
	switch msg.Type {
	case SocketSelect:
		req := core.SelectRequest{Square: msg.Square}
		if err := validate.Struct(&req); err != nil {
			return socketError("square must be two characters", core.ErrInvalidSquare)
		}
		resp = h.proc.Execute(processor.NewSelectCommand(gameID, req))
	case SocketReset:
		resp = h.proc.Execute(processor.NewResetCommand(gameID))
	default:
		return socketError("unknown message type: "+msg.Type, core.ErrInvalidRequest)
	}

	if !resp.Success {
		return SocketEvent{Type: SocketError, Error: resp.Error}
	}
	state := resp.Data.(core.GameResponse)
	return SocketEvent{Type: msg.Type, Game: &state}
}

func socketError(message, code string) SocketEvent {
	return SocketEvent{
		Type:  SocketError,
		Error: &core.ErrorResponse{Error: message, Code: code},
	}
}
