package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"classtrack/domain/dto"
	"classtrack/domain/services"
	"classtrack/pkg/logger"
	"classtrack/pkg/utils"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a local account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.BadRequestResponse(c, err.Error(), err)
	}

	token, user, err := h.authService.Register(c.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      req.Role,
		StudentID: req.StudentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", err)
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrStudentIDRequired):
			return utils.BadRequestResponse(c, err.Error(), err)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", err)
		}
	}

	return utils.CreatedResponse(c, "Account created", dto.AuthResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

// Login authenticates a local account
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.BadRequestResponse(c, err.Error(), err)
	}

	token, user, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.UnauthorizedResponse(c, "Invalid email or password")
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", err)
	}

	return utils.SuccessResponse(c, "Logged in", dto.AuthResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	token := utils.ExtractTokenFromHeader(c.Get("Authorization"))

	user, err := h.authService.GetCurrentUser(c.Context(), token)
	if err != nil {
		return utils.UnauthorizedResponse(c, "Invalid session")
	}

	return utils.SuccessResponse(c, "Current user", dto.ToUserResponse(user))
}

// GoogleLogin redirects to the Google consent page
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state, err := generateState()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate state", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	authURL := h.authService.GetGoogleAuthURL(state)
	if authURL == "" {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Google login is not configured", nil)
	}

	logger.Auth("GoogleLogin", "redirecting to google", map[string]interface{}{
		"ip": c.IP(),
	})

	return c.Redirect(authURL)
}

// GoogleCallback handles the OAuth redirect back from Google
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	storedState := c.Cookies("oauth_state")
	if state == "" || state != storedState {
		return utils.BadRequestResponse(c, "Invalid state parameter", nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	if errMsg := c.Query("error"); errMsg != "" {
		return utils.BadRequestResponse(c, fmt.Sprintf("Google returned error: %s", errMsg), nil)
	}

	code := c.Query("code")
	if code == "" {
		return utils.BadRequestResponse(c, "Missing authorization code", nil)
	}

	token, user, err := h.authService.HandleGoogleCallback(c.Context(), code)
	if err != nil {
		logger.AuthError("GoogleCallback", "google login failed", err, nil)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Google login failed", err)
	}

	return utils.SuccessResponse(c, "Logged in", dto.AuthResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
