package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"chessplay/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "register",
		ShortName:   "r",
		Description: "Register a new user",
		Usage:       "register",
		Handler:     registerHandler,
	})

	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login with credentials",
		Usage:       "login",
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "logout",
		ShortName:   "o",
		Description: "End the server session and clear credentials",
		Usage:       "logout",
		Handler:     logoutHandler,
	})

	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show current user",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

func readLine(scanner *bufio.Scanner, prompt string) string {
	fmt.Print(display.Yellow + prompt + display.Reset)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

func registerHandler(s Session, args []string) error {
	scanner := bufio.NewScanner(os.Stdin)

	username := readLine(scanner, "Username: ")
	password, err := readPassword(display.Yellow + "Password: " + display.Reset)
	if err != nil {
		return err
	}
	email := readLine(scanner, "Email (optional): ")

	resp, err := s.GetClient().Register(username, password, email)
	if err != nil {
		return err
	}

	s.SetAuthToken(resp.Token)
	s.SetCurrentUser(resp.UserID)
	s.SetUsername(resp.Username)

	fmt.Printf("%sRegistered successfully%s\n", display.Green, display.Reset)
	fmt.Printf("User ID: %s\n", resp.UserID)
	fmt.Printf("Username: %s\n", resp.Username)
	return nil
}

func loginHandler(s Session, args []string) error {
	scanner := bufio.NewScanner(os.Stdin)

	identifier := readLine(scanner, "Username or Email: ")
	password, err := readPassword(display.Yellow + "Password: " + display.Reset)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Login(identifier, password)
	if err != nil {
		return err
	}

	s.SetAuthToken(resp.Token)
	s.SetCurrentUser(resp.UserID)
	s.SetUsername(resp.Username)

	fmt.Printf("%sLogged in successfully%s\n", display.Green, display.Reset)
	fmt.Printf("User ID: %s\n", resp.UserID)
	fmt.Printf("Token expires: %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func logoutHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	// Local credentials are dropped even if the server call fails
	err := s.GetClient().Logout()
	s.SetAuthToken("")
	s.SetCurrentUser("")
	s.SetUsername("")
	if err != nil {
		return err
	}

	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

func whoamiHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	user, err := s.GetClient().GetCurrentUser()
	if err != nil {
		return err
	}

	fmt.Printf("%sCurrent User:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  User ID:  %s\n", user.UserID)
	fmt.Printf("  Username: %s\n", user.Username)
	if user.Email != "" {
		fmt.Printf("  Email:    %s\n", user.Email)
	}
	fmt.Printf("  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}
