package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"chessplay/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]  (path without '/' is under /api/v1, '@' is the current game)",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func healthHandler(s Session, args []string) error {
	resp, err := s.GetClient().Health()
	if err != nil {
		return err
	}

	status := display.Green + resp.Status + display.Reset
	if resp.Status != "healthy" {
		status = display.Yellow + resp.Status + display.Reset
	}
	fmt.Printf("%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  Status:  %s\n", status)
	fmt.Printf("  Time:    %s\n", time.Unix(resp.Time, 0).Format("2006-01-02 15:04:05"))
	fmt.Printf("  Games:   %d active\n", resp.Games)
	switch resp.Storage {
	case "":
	case "disabled":
		fmt.Printf("  Storage: disabled (no accounts, results not archived)\n")
	default:
		fmt.Printf("  Storage: %s\n", resp.Storage)
	}
	return nil
}

func normalizeURL(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return strings.TrimRight(url, "/")
}

// urlHandler switches servers. Games and logins do not carry over, so the
// current game and credentials are dropped.
func urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Printf("Current API URL: %s\n", s.GetAPIBaseURL())
		return nil
	}

	url := normalizeURL(args[0])
	if url == s.GetAPIBaseURL() {
		return nil
	}
	s.SetAPIBaseURL(url)
	s.SetCurrentGame("")
	s.SetAuthToken("")
	s.SetCurrentUser("")
	s.SetUsername("")
	fmt.Printf("%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)

	if _, err := s.GetClient().Health(); err != nil {
		fmt.Printf("%sServer not reachable yet: %s%s\n", display.Yellow, err.Error(), display.Reset)
	}
	return nil
}

// rawPath expands shorthand paths: "games/<id>" is relative to /api/v1 and
// "@" stands for the current game
func rawPath(path, currentGame string) string {
	if currentGame != "" {
		path = strings.ReplaceAll(path, "@", currentGame)
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/api/v1/" + path
}

func rawRequestHandler(s Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}
	return s.GetClient().RawRequest(strings.ToUpper(args[0]), rawPath(args[1], s.GetCurrentGame()), body)
}

func clearHandler(s Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
