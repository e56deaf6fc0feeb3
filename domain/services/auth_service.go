package services

import (
	"context"
	"errors"

	"classtrack/domain/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrStudentIDRequired  = errors.New("student ID required for students")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// RegisterInput is the payload for local account registration.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Role      string
	StudentID string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GetCurrentUser(ctx context.Context, tokenString string) (*models.User, error)

	// Google OAuth login
	GetGoogleAuthURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (string, *models.User, error)
}
