package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chessplay/internal/client/display"
)

// Long-poll requests must outlive the server's 25s wait
const pollTimeout = 35 * time.Second

type Client struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
	Verbose    bool
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: pollTimeout,
		},
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) SetToken(token string) {
	c.AuthToken = token
}

// APIError is returned for non-2xx responses
type APIError struct {
	Status   int
	Response ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Error != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Response.Error)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	var bodyData []byte
	if body != nil {
		var err error
		if bodyData, err = json.Marshal(body); err != nil {
			return err
		}
		bodyReader = bytes.NewReader(bodyData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AuthToken)
	}

	fmt.Printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if len(bodyData) > 0 {
		if c.Verbose {
			fmt.Printf("%sRequest Body:%s\n", display.Cyan, display.Reset)
			display.PrettyPrintRaw(bodyData)
		} else {
			fmt.Printf("%s%s%s\n", display.Blue, bodyData, display.Reset)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		fmt.Printf("%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	fmt.Printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 {
		fmt.Printf("%sResponse Body:%s\n", display.Cyan, display.Reset)
		display.PrettyPrintRaw(respBody)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Response); err == nil && !c.Verbose {
			fmt.Printf("%sError: %s%s\n", display.Red, apiErr.Response.Error, display.Reset)
			if apiErr.Response.Code != "" {
				fmt.Printf("%sCode: %s%s\n", display.Red, apiErr.Response.Code, display.Reset)
			}
			if apiErr.Response.Details != "" {
				fmt.Printf("%sDetails: %s%s\n", display.Red, apiErr.Response.Details, display.Reset)
			}
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			fmt.Printf("%sResponse parse error: %s%s\n", display.Red, err.Error(), display.Reset)
			fmt.Printf("%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return err
		}
	}

	return nil
}

func gamePath(gameID string, suffix string) string {
	return "/api/v1/games/" + url.PathEscape(gameID) + suffix
}

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(req *CreateGameRequest) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("POST", "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("GET", gamePath(gameID, ""), nil, &resp)
	return &resp, err
}

// WaitGame long-polls until the game moves past version or the server times out
func (c *Client) WaitGame(gameID string, version int) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("GET", gamePath(gameID, fmt.Sprintf("?wait=true&version=%d", version)), nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(gameID string) error {
	return c.doRequest("DELETE", gamePath(gameID, ""), nil, nil)
}

// Select clicks a square such as "e2"
func (c *Client) Select(gameID, square string) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("POST", gamePath(gameID, "/select"), &SelectRequest{Square: square}, &resp)
	return &resp, err
}

func (c *Client) Reset(gameID string) (*GameResponse, error) {
	var resp GameResponse
	err := c.doRequest("POST", gamePath(gameID, "/reset"), nil, &resp)
	return &resp, err
}

func (c *Client) GetMoves(gameID, square string) (*MovesResponse, error) {
	var resp MovesResponse
	err := c.doRequest("GET", gamePath(gameID, "/moves?square="+url.QueryEscape(square)), nil, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*BoardResponse, error) {
	var resp BoardResponse
	err := c.doRequest("GET", gamePath(gameID, "/board"), nil, &resp)
	return &resp, err
}

func (c *Client) Register(username, password, email string) (*AuthResponse, error) {
	req := &RegisterRequest{
		Username: username,
		Password: password,
		Email:    email,
	}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/register", req, &resp)
	return &resp, err
}

func (c *Client) Login(identifier, password string) (*AuthResponse, error) {
	req := &LoginRequest{
		Identifier: identifier,
		Password:   password,
	}
	var resp AuthResponse
	err := c.doRequest("POST", "/api/v1/auth/login", req, &resp)
	return &resp, err
}

// Logout revokes the server session of the current token
func (c *Client) Logout() error {
	return c.doRequest("POST", "/api/v1/auth/logout", nil, nil)
}

func (c *Client) GetCurrentUser() (*UserResponse, error) {
	var resp UserResponse
	err := c.doRequest("GET", "/api/v1/auth/me", nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}

	return c.doRequest(method, path, bodyData, nil)
}
