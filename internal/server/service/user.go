package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"chessplay/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

var ErrUserLimit = errors.New("user limit reached")

// User represents a registered user account
type User struct {
	UserID    string
	Username  string
	Email     string
	CreatedAt time.Time
}

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		UserID:    r.UserID,
		Username:  r.Username,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

// CreateUser registers an account with a hashed password
func (s *Service) CreateUser(username, email, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	if n, err := s.store.CountUsers(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	} else if n >= MaxUsers {
		return nil, ErrUserLimit
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.generateUniqueUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate unique ID: %w", err)
	}

	record := storage.UserRecord{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err = s.store.CreateUser(record); err != nil {
		return nil, err
	}

	return userFromRecord(&record), nil
}

// AuthenticateUser verifies credentials; identifier is a username or an email
func (s *Service) AuthenticateUser(identifier, password string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	var (
		record *storage.UserRecord
		err    error
	)
	if strings.Contains(identifier, "@") {
		record, err = s.store.GetUserByEmail(identifier)
	} else {
		record, err = s.store.GetUserByUsername(identifier)
	}

	if err != nil {
		// Hash anyway so unknown users cost the same as wrong passwords
		auth.HashPassword(password)
		return nil, ErrInvalidCredential
	}

	if err := auth.VerifyPassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredential
	}

	return userFromRecord(record), nil
}

// UpdateLastLogin updates the last login timestamp for a user
func (s *Service) UpdateLastLogin(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	return s.store.UpdateUserLastLoginSync(userID, time.Now().UTC())
}

// GetUserByID retrieves user information by user ID
func (s *Service) GetUserByID(userID string) (*User, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	record, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return userFromRecord(record), nil
}

// GenerateUserToken starts a new session for the user and returns its JWT.
// Any previous session of the user is replaced.
func (s *Service) GenerateUserToken(userID string) (string, time.Time, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	session := storage.SessionRecord{
		SessionID: uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.store.CreateSession(session); err != nil {
		return "", time.Time{}, err
	}

	claims := map[string]any{
		"username": user.Username,
		"email":    user.Email,
		"sid":      session.SessionID,
	}

	token, err := auth.GenerateHS256Token(s.jwtSecret, userID, claims, SessionTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, session.ExpiresAt, nil
}

// ValidateToken verifies a JWT and that its session is still active
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	userID, claims, err := auth.ValidateHS256Token(s.jwtSecret, token)
	if err != nil {
		return "", nil, err
	}
	if s.store == nil {
		return userID, claims, nil
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", nil, fmt.Errorf("token has no session")
	}
	owner, err := s.store.SessionOwner(sid)
	if errors.Is(err, storage.ErrNoSession) {
		return "", nil, fmt.Errorf("session expired or revoked")
	}
	if err != nil {
		return "", nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if owner != userID {
		return "", nil, fmt.Errorf("session belongs to another user")
	}
	return userID, claims, nil
}

// Logout revokes the user's session
func (s *Service) Logout(userID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	revoked, err := s.store.RevokeSession(userID)
	if err != nil {
		return err
	}
	if !revoked {
		log.Printf("Logout for user %s found no active session", userID)
	}
	return nil
}

// generateUniqueUserID creates a unique user ID with collision detection
func (s *Service) generateUniqueUserID() (string, error) {
	const maxAttempts = 10

	for i := 0; i < maxAttempts; i++ {
		id := uuid.New().String()
		if _, err := s.store.GetUserByID(id); err != nil {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique ID after %d attempts", maxAttempts)
}
