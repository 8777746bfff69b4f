// Package session holds the terminal client's per-run state.
package session

import (
	"chessplay/internal/client/api"
)

type Session struct {
	APIBaseURL       string
	Client           *api.Client
	CurrentGame      string
	CurrentUser      string
	Username         string
	AuthToken        string
	LastVersion      int
	CurrentGameState *api.GameResponse
	PlayerColor      string
	Verbose          bool
}

// New creates a session talking to baseURL
func New(baseURL string) *Session {
	return &Session{
		APIBaseURL:  baseURL,
		Client:      api.New(baseURL),
		LastVersion: -1,
	}
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(url string) {
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)
}

func (s *Session) GetCurrentGame() string { return s.CurrentGame }

// SetCurrentGame switches games and forgets the previous game's state
func (s *Session) SetCurrentGame(id string) {
	if id != s.CurrentGame {
		s.CurrentGameState = nil
		s.LastVersion = -1
		s.PlayerColor = ""
	}
	s.CurrentGame = id
}

func (s *Session) GetCurrentUser() string { return s.CurrentUser }
func (s *Session) SetCurrentUser(id string) { s.CurrentUser = id }
func (s *Session) GetUsername() string { return s.Username }
func (s *Session) SetUsername(name string) { s.Username = name }
func (s *Session) GetAuthToken() string { return s.AuthToken }
func (s *Session) GetClient() *api.Client { return s.Client }
func (s *Session) IsVerbose() bool { return s.Verbose }
func (s *Session) GetLastVersion() int { return s.LastVersion }
func (s *Session) GetPlayerColor() string { return s.PlayerColor }
func (s *Session) SetPlayerColor(c string) { s.PlayerColor = c }
func (s *Session) GetGameState() *api.GameResponse { return s.CurrentGameState }

func (s *Session) SetAuthToken(token string) {
	s.AuthToken = token
	s.Client.SetToken(token)
}

// SetGameState records the latest state and its version for long-polling
func (s *Session) SetGameState(g *api.GameResponse) {
	s.CurrentGameState = g
	if g == nil {
		return
	}
	s.LastVersion = g.Version
	s.PlayerColor = g.HumanColor
}
