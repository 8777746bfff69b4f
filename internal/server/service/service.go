package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/game"
	"chessplay/internal/server/rules"
	"chessplay/internal/server/storage"

	"github.com/google/uuid"
)

const (
	MaxGames           = 100
	MaxUsers           = 100
	SessionTTL         = 7 * 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameLimit         = errors.New("game limit reached")
	ErrStorageDisabled   = errors.New("storage disabled")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// Service owns the registry of active games, users and storage
type Service struct {
	games     map[string]*game.Game
	mu        sync.Mutex
	store     *storage.Store
	jwtSecret []byte
	waiter    *WaitRegistry
}

// New creates a new service instance; store may be nil
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		games:     make(map[string]*game.Game),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GenerateGameID returns a UUID not used by any active game
func (s *Service) GenerateGameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// CreateGame registers g under gameID and archives it when storage is on
func (s *Service) CreateGame(gameID string, g *game.Game, userID string, thinkTime int) (game.Snapshot, error) {
	s.mu.Lock()
	if len(s.games) >= MaxGames {
		s.mu.Unlock()
		return game.Snapshot{}, ErrGameLimit
	}
	if _, exists := s.games[gameID]; exists {
		s.mu.Unlock()
		return game.Snapshot{}, fmt.Errorf("game %s already exists", gameID)
	}
	s.games[gameID] = g
	snap := g.Snapshot()
	s.mu.Unlock()

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:       gameID,
			UserID:       userID,
			HumanColor:   snap.HumanColor.String(),
			InitialFEN:   snap.InitialFEN,
			ThinkTime:    thinkTime,
			StartTimeUTC: time.Now().UTC(),
		})
	}
	if snap.GameOver() {
		s.recordResult(gameID, snap)
	}
	return snap, nil
}

// GetGame returns a snapshot of the game
func (s *Service) GetGame(gameID string) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return game.Snapshot{}, ErrGameNotFound
	}
	return g.Snapshot(), nil
}

// Select forwards a square selection to the game
func (s *Service) Select(gameID string, sq board.Square) (game.SelectResult, game.Snapshot, error) {
	var res game.SelectResult
	snap, err := s.mutate(gameID, func(g *game.Game) error {
		res = g.Select(sq)
		return nil
	})
	return res, snap, err
}

// Reset starts a new round of the game
func (s *Service) Reset(gameID string) (game.Snapshot, error) {
	return s.mutate(gameID, func(g *game.Game) error {
		g.Reset()
		return nil
	})
}

// CompleteComputerMove applies an opponent result computed for round epoch
func (s *Service) CompleteComputerMove(gameID string, epoch int, m rules.Move, found bool, score float64) (game.Snapshot, error) {
	return s.mutate(gameID, func(g *game.Game) error {
		return g.CompleteComputerMove(epoch, m, found, score)
	})
}

// DeleteGame removes a game and wakes its waiters
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return ErrGameNotFound
	}
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)
	return nil
}

// GameCount returns the number of active games
func (s *Service) GameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// RegisterWait registers a client to wait for the game to move past version.
// The channel fires at once when the game is gone or already past version.
// Registration happens under the registry lock so a concurrent mutate cannot
// slip its notification in between the version check and the registration.
func (s *Service) RegisterWait(ctx context.Context, gameID string, version int) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok || g.Version() != version {
		return firedWait()
	}
	return s.waiter.RegisterWait(ctx, gameID, version)
}

// mutate runs fn on the game under the registry lock, then notifies waiters
// and archives a round that just ended
func (s *Service) mutate(gameID string, fn func(*game.Game) error) (game.Snapshot, error) {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return game.Snapshot{}, ErrGameNotFound
	}

	before := g.Version()
	wasOver := g.Phase() == core.PhaseGameOver
	err := fn(g)
	snap := g.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return snap, err
	}
	if snap.Version != before {
		s.waiter.NotifyGame(gameID, snap.Version)
	}
	if !wasOver && snap.GameOver() {
		s.recordResult(gameID, snap)
	}
	return snap, nil
}

func (s *Service) recordResult(gameID string, snap game.Snapshot) {
	log.Printf("Game %s round %d finished: %s", gameID, snap.Round, snap.Result)
	if s.store == nil {
		return
	}
	s.store.RecordResult(storage.ResultRecord{
		GameID:     gameID,
		Round:      snap.Round,
		Result:     snap.Result.String(),
		FinalFEN:   snap.FEN(),
		EndTimeUTC: time.Now().UTC(),
	})
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	s.games = make(map[string]*game.Game)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RunCleanupJob periodically removes expired sessions
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if s.store == nil {
		return
	}

	if deleted, err := s.store.DeleteExpiredSessions(); err != nil {
		log.Printf("cleanup: failed to delete expired sessions: %v", err)
	} else if deleted > 0 {
		log.Printf("cleanup: deleted %d expired sessions", deleted)
	}
}
