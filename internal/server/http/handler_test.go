package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"chessplay/internal/server/core"
	"chessplay/internal/server/processor"
	"chessplay/internal/server/service"
	"chessplay/internal/server/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func newTestApp(t *testing.T, store *storage.Store) *fiber.App {
	t.Helper()
	svc := service.New(store, []byte("0123456789abcdef0123456789abcdef"))
	proc := processor.New(svc, processor.Config{Workers: 1, Seed: 3, ThinkTime: 0})
	t.Cleanup(func() {
		proc.Close()
		svc.Shutdown(time.Second)
	})
	return NewFiberApp(proc, svc, true)
}

func do(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func createGame(t *testing.T, app *fiber.App, body string) core.GameResponse {
	t.Helper()
	status, data := do(t, app, "POST", "/api/v1/games", body)
	if status != fiber.StatusCreated {
		t.Fatalf("create game: %d %s", status, data)
	}
	return decode[core.GameResponse](t, data)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	status, data := do(t, app, "GET", "/health", "")
	if status != fiber.StatusOK {
		t.Fatalf("health: %d", status)
	}
	if got := decode[map[string]any](t, data); got["storage"] != "disabled" {
		t.Fatalf("health = %v", got)
	}
}

func TestGameRoutes(t *testing.T) {
	app := newTestApp(t, nil)
	game := createGame(t, app, `{}`)
	base := "/api/v1/games/" + game.GameID

	status, data := do(t, app, "POST", base+"/select", `{"square":"e2"}`)
	if status != fiber.StatusOK {
		t.Fatalf("select: %d %s", status, data)
	}
	if sel := decode[core.GameResponse](t, data); !sel.Accepted || sel.Selection != "e2" {
		t.Fatalf("select e2: %+v", sel)
	}

	status, data = do(t, app, "GET", base+"/moves?square=g1", "")
	if status != fiber.StatusOK {
		t.Fatalf("moves: %d %s", status, data)
	}
	if moves := decode[core.MovesResponse](t, data); len(moves.Moves) != 2 {
		t.Fatalf("g1 moves = %+v", moves)
	}

	status, data = do(t, app, "GET", base+"/board", "")
	if status != fiber.StatusOK || !strings.Contains(string(data), "fen") {
		t.Fatalf("board: %d %s", status, data)
	}

	status, data = do(t, app, "POST", base+"/reset", "")
	if status != fiber.StatusOK {
		t.Fatalf("reset: %d %s", status, data)
	}
	if reset := decode[core.GameResponse](t, data); reset.Selection != "" || reset.Version <= game.Version {
		t.Fatalf("reset state: %+v", reset)
	}

	if status, _ = do(t, app, "DELETE", base, ""); status != fiber.StatusNoContent {
		t.Fatalf("delete: %d", status)
	}
	if status, _ = do(t, app, "GET", base, ""); status != fiber.StatusNotFound {
		t.Fatalf("get deleted game: %d", status)
	}
}

func TestRequestErrors(t *testing.T) {
	app := newTestApp(t, nil)
	game := createGame(t, app, "")
	base := "/api/v1/games/" + game.GameID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		header []string
		status int
		code   string
	}{
		{"bad game id", "GET", "/api/v1/games/not-a-uuid", "", nil, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"unknown game", "GET", "/api/v1/games/" + uuid.New().String(), "", nil, fiber.StatusNotFound, core.ErrGameNotFound},
		{"long square", "POST", base + "/select", `{"square":"e22"}`, nil, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"off board", "POST", base + "/select", `{"square":"i9"}`, nil, fiber.StatusBadRequest, core.ErrInvalidSquare},
		{"bad color", "POST", "/api/v1/games", `{"humanColor":"red"}`, nil, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad fen", "POST", "/api/v1/games", `{"fen":"8/8/8 w"}`, nil, fiber.StatusBadRequest, core.ErrInvalidFEN},
		{"think too long", "POST", "/api/v1/games", `{"thinkTime":60000}`, nil, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"missing square", "GET", base + "/moves", "", nil, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"content type", "POST", base + "/select", `{"square":"e2"}`, []string{"Content-Type", "text/plain"}, fiber.StatusUnsupportedMediaType, core.ErrInvalidContent},
		{"socket without upgrade", "GET", base + "/ws", "", nil, fiber.StatusUpgradeRequired, core.ErrInvalidRequest},
	}

	for _, tt := range tests {
		status, data := do(t, app, tt.method, tt.path, tt.body, tt.header...)
		if status != tt.status {
			t.Fatalf("%s: status %d, want %d (%s)", tt.name, status, tt.status, data)
		}
		if got := decode[core.ErrorResponse](t, data); got.Code != tt.code {
			t.Fatalf("%s: code %q, want %q", tt.name, got.Code, tt.code)
		}
	}
}

func TestLongPollWakesOnChange(t *testing.T) {
	app := newTestApp(t, nil)
	game := createGame(t, app, `{}`)
	base := "/api/v1/games/" + game.GameID

	type result struct {
		status int
		data   []byte
	}
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest("GET", base+"?wait=true&version="+strconv.Itoa(game.Version), nil)
		resp, err := app.Test(req, 5000)
		if err != nil {
			done <- result{}
			return
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		done <- result{resp.StatusCode, data}
	}()

	time.Sleep(100 * time.Millisecond)
	do(t, app, "POST", base+"/select", `{"square":"e2"}`)

	select {
	case r := <-done:
		if r.status != fiber.StatusOK {
			t.Fatalf("long poll: %d %s", r.status, r.data)
		}
		if got := decode[core.GameResponse](t, r.data); got.Version <= game.Version {
			t.Fatalf("long poll returned version %d, had %d", got.Version, game.Version)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("long poll did not wake")
	}

	// A stale version returns at once
	status, data := do(t, app, "GET", base+"?wait=true&version=-5", "")
	if status != fiber.StatusOK || decode[core.GameResponse](t, data).Selection != "e2" {
		t.Fatalf("stale long poll: %d %s", status, data)
	}
}

func TestAuthFlow(t *testing.T) {
	st, err := storage.NewStore(filepath.Join(t.TempDir(), "http.db"), false)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := st.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	app := newTestApp(t, st)

	status, data := do(t, app, "POST", "/api/v1/auth/register", `{"username":"Erin","password":"letmein42"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("register: %d %s", status, data)
	}
	auth := decode[AuthResponse](t, data)
	if auth.Username != "erin" || auth.Token == "" {
		t.Fatalf("register response: %+v", auth)
	}

	if status, _ = do(t, app, "POST", "/api/v1/auth/register", `{"username":"erin","password":"letmein42"}`); status != fiber.StatusConflict {
		t.Fatalf("duplicate register: %d", status)
	}
	if status, _ = do(t, app, "POST", "/api/v1/auth/register", `{"username":"frank","password":"lettersonly"}`); status != fiber.StatusBadRequest {
		t.Fatalf("weak password: %d", status)
	}
	if status, _ = do(t, app, "POST", "/api/v1/auth/login", `{"identifier":"erin","password":"wrong1234"}`); status != fiber.StatusUnauthorized {
		t.Fatalf("bad login: %d", status)
	}

	status, data = do(t, app, "POST", "/api/v1/auth/login", `{"identifier":"ERIN","password":"letmein42"}`)
	if status != fiber.StatusOK {
		t.Fatalf("login: %d %s", status, data)
	}
	bearer := "Bearer " + decode[AuthResponse](t, data).Token

	status, data = do(t, app, "GET", "/api/v1/auth/me", "", "Authorization", bearer)
	if status != fiber.StatusOK || decode[UserResponse](t, data).Username != "erin" {
		t.Fatalf("me: %d %s", status, data)
	}

	// Games created with a token belong to the user
	status, data = do(t, app, "POST", "/api/v1/games", `{}`, "Authorization", bearer)
	if status != fiber.StatusCreated {
		t.Fatalf("create with auth: %d %s", status, data)
	}
	human := decode[core.GameResponse](t, data).Players.White
	if human == nil || human.ID != auth.UserID {
		t.Fatalf("human player = %+v, want user %s", human, auth.UserID)
	}

	if status, _ = do(t, app, "POST", "/api/v1/auth/logout", "", "Authorization", bearer); status != fiber.StatusNoContent {
		t.Fatalf("logout: %d", status)
	}
	if status, _ = do(t, app, "GET", "/api/v1/auth/me", "", "Authorization", bearer); status != fiber.StatusUnauthorized {
		t.Fatalf("me after logout: %d", status)
	}
}

func TestAuthWithoutStorage(t *testing.T) {
	app := newTestApp(t, nil)

	status, data := do(t, app, "POST", "/api/v1/auth/register", `{"username":"gina","password":"letmein42"}`)
	if status != fiber.StatusServiceUnavailable {
		t.Fatalf("register without storage: %d %s", status, data)
	}
	if status, _ = do(t, app, "GET", "/api/v1/auth/me", ""); status != fiber.StatusUnauthorized {
		t.Fatalf("me without token: %d", status)
	}
}
