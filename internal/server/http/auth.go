package http

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"chessplay/internal/server/core"
	"chessplay/internal/server/service"
	"chessplay/internal/server/storage"

	"github.com/gofiber/fiber/v2"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{1,40}$`)
)

// RegisterRequest defines the user registration payload
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=40"`
	Email    string `json:"email" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest defines the authentication payload
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"` // username or email
	Password   string `json:"password" validate:"required,max=128"`
}

// AuthResponse contains JWT token and user information
type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse contains current user information
type UserResponse struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func badRequest(c *fiber.Ctx, message, details string) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   message,
		Code:    core.ErrInvalidRequest,
		Details: details,
	})
}

// storageUnavailable answers account requests on a server running without a database
func storageUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
		Error:   "accounts unavailable",
		Code:    core.ErrResourceLimit,
		Details: "server is running without storage",
	})
}

// RegisterHandler creates a new user account
func (h *HTTPHandler) RegisterHandler(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "validation failed", describeValidation(err))
	}

	if !usernameRegex.MatchString(req.Username) {
		return badRequest(c, "invalid username format", "username must be 1-40 characters, alphanumeric and underscore only")
	}
	if req.Email != "" && !emailRegex.MatchString(req.Email) {
		return badRequest(c, "invalid email format", "email must be a valid email address")
	}
	if err := validatePassword(req.Password); err != nil {
		return badRequest(c, "weak password", err.Error())
	}

	// Normalize for case-insensitive storage
	req.Username = strings.ToLower(req.Username)
	req.Email = strings.ToLower(req.Email)

	user, err := h.svc.CreateUser(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		return storageUnavailable(c)
	case errors.Is(err, storage.ErrUserExists):
		return c.Status(fiber.StatusConflict).JSON(core.ErrorResponse{
			Error:   "user already exists",
			Code:    core.ErrInvalidRequest,
			Details: "username or email already taken",
		})
	case errors.Is(err, service.ErrUserLimit):
		return c.Status(fiber.StatusServiceUnavailable).JSON(core.ErrorResponse{
			Error: "user limit reached",
			Code:  core.ErrResourceLimit,
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to create user",
			Code:  core.ErrInternalError,
		})
	}

	return h.issueToken(c, user, fiber.StatusCreated)
}

// validatePassword requires 8-128 characters with at least one letter and one digit
func validatePassword(password string) error {
	const (
		minPasswordLength = 8
		maxPasswordLength = 128
	)
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsNumber(r):
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return fmt.Errorf("password must contain at least one letter and one number")
	}

	return nil
}

// LoginHandler authenticates user and returns JWT token
func (h *HTTPHandler) LoginHandler(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body", err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return badRequest(c, "validation failed", describeValidation(err))
	}

	user, err := h.svc.AuthenticateUser(strings.ToLower(req.Identifier), req.Password)
	if errors.Is(err, service.ErrStorageDisabled) {
		return storageUnavailable(c)
	}
	if err != nil {
		// Same error for unknown user and wrong password
		return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
			Error: "invalid credentials",
			Code:  core.ErrUnauthorized,
		})
	}

	// Login succeeds even if the timestamp write fails
	_ = h.svc.UpdateLastLogin(user.UserID)

	return h.issueToken(c, user, fiber.StatusOK)
}

func (h *HTTPHandler) issueToken(c *fiber.Ctx, user *service.User, status int) error {
	token, expiresAt, err := h.svc.GenerateUserToken(user.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to generate token",
			Code:  core.ErrInternalError,
		})
	}

	return c.Status(status).JSON(AuthResponse{
		Token:     token,
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	})
}

// GetCurrentUserHandler returns authenticated user information
func (h *HTTPHandler) GetCurrentUserHandler(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
			Error: "unauthorized",
			Code:  core.ErrUnauthorized,
		})
	}

	user, err := h.svc.GetUserByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(core.ErrorResponse{
			Error: "user not found",
			Code:  core.ErrInvalidRequest,
		})
	}

	return c.JSON(UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// LogoutHandler revokes the caller's session so its token stops validating
func (h *HTTPHandler) LogoutHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	if err := h.svc.Logout(userID); err != nil && !errors.Is(err, service.ErrStorageDisabled) {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "failed to end session",
			Code:  core.ErrInternalError,
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
