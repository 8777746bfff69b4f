// Package cli implements the "chess-server db" maintenance commands.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"chessplay/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

const minPasswordLength = 8

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, user")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "user":
		if len(args) < 2 {
			return fmt.Errorf("user subcommand required: add, delete, set-password, set-hash, set-email, list")
		}
		return runUser(args[1], args[2:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// parseWithPath parses a flag set that requires -path
func parseWithPath(fs *flag.FlagSet, path *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("database path required")
	}
	return nil
}

func openStore(path string) (*storage.Store, error) {
	store, err := storage.NewStore(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

// runQuery lists archived games, with their finished rounds when -results is set
func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	userID := fs.String("userId", "", "User ID to filter (optional, * for all)")
	results := fs.Bool("results", false, "Include finished rounds of each game")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *userID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Println("No games found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tUser\tHuman\tThink\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		user := "(anonymous)"
		if g.UserID != "" {
			user = shortID(g.UserID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n",
			shortID(g.GameID),
			user,
			g.HumanColor,
			g.ThinkTime,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)

		if !*results {
			continue
		}
		rounds, err := store.QueryResults(g.GameID)
		if err != nil {
			return fmt.Errorf("result query failed: %w", err)
		}
		for _, r := range rounds {
			fmt.Fprintf(w, "\t  round %d\t%s\t\t%s\n", r.Round, r.Result, r.EndTimeUTC.Format("2006-01-02 15:04:05"))
		}
	}
	w.Flush()

	fmt.Printf("\nFound %d game(s)\n", len(games))
	return nil
}

func runUser(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runUserAdd(args)
	case "delete":
		return runUserDelete(args)
	case "set-password":
		return runUserSetPassword(args)
	case "set-hash":
		return runUserSetHash(args)
	case "set-email":
		return runUserSetEmail(args)
	case "list":
		return runUserList(args)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// readPassword returns the flag value or prompts on the terminal when interactive
func readPassword(flagValue string, interactive bool, prompt string) (string, error) {
	password := flagValue
	if interactive {
		if flagValue != "" {
			return "", fmt.Errorf("cannot use -interactive with -password")
		}
		fmt.Print(prompt)
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(pwBytes)
	}

	if password == "" {
		return "", fmt.Errorf("password required: use -password or -interactive")
	}
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}

func runUserAdd(args []string) error {
	fs := flag.NewFlagSet("user add", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (optional)")
	password := fs.String("password", "", "Password (optional, will prompt with -interactive)")
	hash := fs.String("hash", "", "Pre-computed password hash (optional)")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required")
	}

	var passwordHash string
	if *hash != "" {
		if *password != "" || *interactive {
			return fmt.Errorf("cannot combine -hash with -password or -interactive")
		}
		if err := auth.ValidatePHCHashFormat(*hash); err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
		passwordHash = *hash
	} else {
		pw, err := readPassword(*password, *interactive, "Enter password: ")
		if err != nil {
			return err
		}
		if passwordHash, err = auth.HashPassword(pw); err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	record := storage.UserRecord{
		UserID:       uuid.New().String(),
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.CreateUser(record); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", record.UserID)
	fmt.Printf("  Username: %s\n", record.Username)
	if record.Email != "" {
		fmt.Printf("  Email: %s\n", record.Email)
	}
	return nil
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username to delete")
	userID := fs.String("id", "", "User ID to delete")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}
	if (*username == "") == (*userID == "") {
		return fmt.Errorf("specify exactly one of -username or -id")
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	targetID := *userID
	if targetID == "" {
		user, err := store.GetUserByUsername(strings.ToLower(*username))
		if err != nil {
			return fmt.Errorf("user not found: %s", *username)
		}
		targetID = user.UserID
	}

	if err := store.DeleteUserByID(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("User deleted: %s\n", targetID)
	return nil
}

func runUserSetPassword(args []string) error {
	fs := flag.NewFlagSet("user set-password", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "New password")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("username required")
	}

	newPassword, err := readPassword(*password, *interactive, "Enter new password: ")
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return updateUser(*path, *username, "Password", func(store *storage.Store, userID string) error {
		return store.UpdateUserPassword(userID, passwordHash)
	})
}

func runUserSetHash(args []string) error {
	fs := flag.NewFlagSet("user set-hash", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	hash := fs.String("hash", "", "Password hash (required)")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}
	if *username == "" || *hash == "" {
		return fmt.Errorf("username and hash required")
	}

	if err := auth.ValidatePHCHashFormat(*hash); err != nil {
		return fmt.Errorf("invalid hash format: %w", err)
	}

	return updateUser(*path, *username, "Password hash", func(store *storage.Store, userID string) error {
		return store.UpdateUserPassword(userID, *hash)
	})
}

func runUserSetEmail(args []string) error {
	fs := flag.NewFlagSet("user set-email", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "New email address (required)")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}
	if *username == "" || *email == "" {
		return fmt.Errorf("username and email required")
	}

	return updateUser(*path, *username, "Email", func(store *storage.Store, userID string) error {
		return store.UpdateUserEmail(userID, strings.ToLower(*email))
	})
}

// updateUser looks up username and applies fn to its record
func updateUser(path, username, what string, fn func(*storage.Store, string) error) error {
	store, err := openStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := store.GetUserByUsername(strings.ToLower(username))
	if err != nil {
		return fmt.Errorf("user not found: %s", username)
	}

	if err := fn(store, user.UserID); err != nil {
		return fmt.Errorf("failed to update %s: %w", strings.ToLower(what), err)
	}

	fmt.Printf("%s updated for user: %s\n", what, username)
	return nil
}

func runUserList(args []string) error {
	fs := flag.NewFlagSet("user list", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if err := parseWithPath(fs, path, args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tEmail\tCreated\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, u := range users {
		lastLogin := "never"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
		}
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(u.UserID),
			u.Username,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			lastLogin,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal users: %d\n", len(users))
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
