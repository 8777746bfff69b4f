package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chessplay/internal/server/board"
	"chessplay/internal/server/core"
	"chessplay/internal/server/game"
	"chessplay/internal/server/rules"
	"chessplay/internal/server/storage"

	"github.com/lixenwraith/auth"
)

func newGame(t *testing.T, fen string) *game.Game {
	t.Helper()
	b, turn, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	return game.New(b, turn, core.NewHuman(core.ColorWhite, ""), core.NewComputer(core.ColorBlack, 0))
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	st, err := storage.NewStore(filepath.Join(t.TempDir(), "svc.db"), false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := st.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return st
}

func mustSq(t *testing.T, name string) board.Square {
	t.Helper()
	sq, err := board.ParseSquare(name)
	if err != nil {
		t.Fatalf("ParseSquare: %v", err)
	}
	return sq
}

func received(ch <-chan struct{}, within time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(within):
		return false
	}
}

func TestGameLifecycle(t *testing.T) {
	svc := New(nil, []byte("secret"))
	defer svc.Shutdown(time.Second)

	id := svc.GenerateGameID()
	if _, err := svc.CreateGame(id, newGame(t, board.StartingFEN), "", 0); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := svc.CreateGame(id, newGame(t, board.StartingFEN), "", 0); err == nil {
		t.Fatalf("duplicate game ID accepted")
	}

	snap, err := svc.GetGame(id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	notify := svc.RegisterWait(context.Background(), id, snap.Version)

	res, snap, err := svc.Select(id, mustSq(t, "e2"))
	if err != nil || !res.Accepted {
		t.Fatalf("Select: %+v %v", res, err)
	}
	if !received(notify, time.Second) {
		t.Fatalf("waiter not notified of selection")
	}

	res, snap, err = svc.Select(id, mustSq(t, "e4"))
	if err != nil || !res.Moved || !snap.Busy() {
		t.Fatalf("move: %+v busy=%v err=%v", res, snap.Busy(), err)
	}

	if _, err := svc.CompleteComputerMove(id, snap.Epoch+1, rules.Move{}, false, 0); !errors.Is(err, game.ErrStaleResult) {
		t.Fatalf("stale epoch accepted: %v", err)
	}

	if err := svc.DeleteGame(id); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := svc.GetGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("GetGame after delete: %v", err)
	}
	if _, _, err := svc.Select(id, mustSq(t, "e2")); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("Select after delete: %v", err)
	}
}

func TestFinishedRoundIsArchived(t *testing.T) {
	st := newStore(t)
	svc := New(st, []byte("secret"))
	defer svc.Shutdown(time.Second)

	id := svc.GenerateGameID()
	if _, err := svc.CreateGame(id, newGame(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"), "", 420); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	svc.Select(id, mustSq(t, "a1"))
	_, snap, err := svc.Select(id, mustSq(t, "a8"))
	if err != nil || !snap.GameOver() {
		t.Fatalf("expected mate, got over=%v err=%v", snap.GameOver(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := st.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	results, err := st.QueryResults(id)
	if err != nil {
		t.Fatalf("QueryResults: %v", err)
	}
	if len(results) != 1 || results[0].Result != core.ResultWhiteWins.String() || results[0].Round != 1 {
		t.Fatalf("results = %+v", results)
	}

	games, err := st.QueryGames(id, "")
	if err != nil || len(games) != 1 || games[0].ThinkTime != 420 || games[0].HumanColor != "w" {
		t.Fatalf("games = %+v, %v", games, err)
	}
}

func TestRegisterWaitAfterMissedChange(t *testing.T) {
	svc := New(nil, []byte("secret"))
	defer svc.Shutdown(time.Second)

	id := svc.GenerateGameID()
	if _, err := svc.CreateGame(id, newGame(t, board.StartingFEN), "", 0); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	seen, err := svc.GetGame(id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}

	// The change lands between reading the version and registering
	if _, snap, err := svc.Select(id, mustSq(t, "e2")); err != nil || snap.Version == seen.Version {
		t.Fatalf("Select: version %d -> %d, err %v", seen.Version, snap.Version, err)
	}

	if !received(svc.RegisterWait(context.Background(), id, seen.Version), 100*time.Millisecond) {
		t.Fatalf("waiter for version %d not woken after a newer version exists", seen.Version)
	}
	if !received(svc.RegisterWait(context.Background(), "missing", 0), 100*time.Millisecond) {
		t.Fatalf("waiter for a missing game not woken")
	}

	current, _ := svc.GetGame(id)
	if received(svc.RegisterWait(context.Background(), id, current.Version), 50*time.Millisecond) {
		t.Fatalf("waiter on the current version woken without a change")
	}
}

func TestWaiterIgnoresSameVersion(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)

	notify := w.RegisterWait(context.Background(), "g", 3)
	w.NotifyGame("g", 3)
	if received(notify, 50*time.Millisecond) {
		t.Fatalf("notified without a version change")
	}
	w.NotifyGame("g", 4)
	if !received(notify, time.Second) {
		t.Fatalf("not notified of version 4")
	}
}

func TestWaiterRemoveGameAndCancel(t *testing.T) {
	w := NewWaitRegistry()
	defer w.Shutdown(time.Second)

	gone := w.RegisterWait(context.Background(), "g", 0)
	w.RemoveGame("g")
	if !received(gone, time.Second) {
		t.Fatalf("waiter not woken on game removal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.RegisterWait(ctx, "h", 0)
	cancel()

	deadline := time.Now().Add(time.Second)
	for w.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := w.Count(); n != 0 {
		t.Fatalf("%d waiters left after cancellation", n)
	}
}

func TestWaiterShutdown(t *testing.T) {
	w := NewWaitRegistry()
	notify := w.RegisterWait(context.Background(), "g", 0)

	if err := w.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !received(notify, time.Second) {
		t.Fatalf("waiter not woken on shutdown")
	}

	late := w.RegisterWait(context.Background(), "g", 0)
	if !received(late, time.Second) {
		t.Fatalf("registration after shutdown should fire immediately")
	}
}

func TestAccounts(t *testing.T) {
	st := newStore(t)
	svc := New(st, []byte("0123456789abcdef0123456789abcdef"))
	defer svc.Shutdown(time.Second)

	user, err := svc.CreateUser("carol", "carol@example.com", "hunter22a")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := svc.AuthenticateUser("carol", "wrong-password1"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("wrong password: %v", err)
	}
	got, err := svc.AuthenticateUser("carol@example.com", "hunter22a")
	if err != nil || got.UserID != user.UserID {
		t.Fatalf("AuthenticateUser by email: %+v %v", got, err)
	}

	token, _, err := svc.GenerateUserToken(user.UserID)
	if err != nil {
		t.Fatalf("GenerateUserToken: %v", err)
	}
	userID, claims, err := svc.ValidateToken(token)
	if err != nil || userID != user.UserID || claims["username"] != "carol" {
		t.Fatalf("ValidateToken: %s %v %v", userID, claims, err)
	}

	// A signed token naming carol's session for another subject is refused
	forged, err := auth.GenerateHS256Token(svc.jwtSecret, "someone-else", map[string]any{"sid": claims["sid"]}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateHS256Token: %v", err)
	}
	if _, _, err := svc.ValidateToken(forged); err == nil {
		t.Fatalf("session accepted for a different user")
	}

	if err := svc.Logout(user.UserID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.ValidateToken(token); err == nil {
		t.Fatalf("token valid after logout")
	}
	if err := svc.Logout(user.UserID); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
}

func TestAccountsNeedStorage(t *testing.T) {
	svc := New(nil, []byte("secret"))
	defer svc.Shutdown(time.Second)

	if _, err := svc.CreateUser("dave", "", "password1"); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("CreateUser without storage: %v", err)
	}
	if svc.GetStorageHealth() != "disabled" {
		t.Fatalf("health = %s, want disabled", svc.GetStorageHealth())
	}
}
