package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"classtrack/domain/models"
	"classtrack/domain/repositories"
	"classtrack/domain/services"
	"classtrack/infrastructure/oauth"
	"classtrack/pkg/logger"
	"classtrack/pkg/utils"
)

const tokenLifetime = 24 * time.Hour

type AuthServiceImpl struct {
	userRepo  repositories.UserRepository
	google    *oauth.GoogleOAuth
	jwtSecret string
}

func NewAuthService(
	userRepo repositories.UserRepository,
	google *oauth.GoogleOAuth,
	jwtSecret string,
) services.AuthService {
	return &AuthServiceImpl{
		userRepo:  userRepo,
		google:    google,
		jwtSecret: jwtSecret,
	}
}

// Register creates a local account and returns a signed token.
func (s *AuthServiceImpl) Register(ctx context.Context, input services.RegisterInput) (string, *models.User, error) {
	if input.Role != "student" && input.Role != "teacher" {
		return "", nil, services.ErrInvalidRole
	}
	if input.Role == "student" && input.StudentID == "" {
		return "", nil, services.ErrStudentIDRequired
	}

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return "", nil, services.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.New(),
		Email:     input.Email,
		Password:  string(hashed),
		Name:      input.Name,
		Role:      input.Role,
		StudentID: input.StudentID,
		Provider:  "local",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.StudentID, s.jwtSecret, tokenLifetime)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Auth("Register", "user registered", map[string]interface{}{
		"email": user.Email,
		"role":  user.Role,
	})

	return token, user, nil
}

// Login verifies credentials for a local account. OAuth-only accounts cannot
// log in with a password.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, services.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.Password == "" {
		return "", nil, services.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.AuthError("Login", "password mismatch", err, map[string]interface{}{
			"email": email,
		})
		return "", nil, services.ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, user)

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.StudentID, s.jwtSecret, tokenLifetime)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Auth("Login", "user logged in", map[string]interface{}{
		"email": user.Email,
	})

	return token, user, nil
}

// GetCurrentUser resolves a bearer token to its user.
func (s *AuthServiceImpl) GetCurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	userCtx, err := utils.ValidateTokenStringToUUID(tokenString, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userCtx.ID)
}

// GetGoogleAuthURL returns the consent page URL for the given CSRF state.
func (s *AuthServiceImpl) GetGoogleAuthURL(state string) string {
	if s.google == nil || !s.google.IsConfigured() {
		return ""
	}
	return s.google.GetAuthURL(state)
}

// HandleGoogleCallback exchanges the code, linking or creating an account by
// email. Google accounts default to the student role; a teacher promotes them.
func (s *AuthServiceImpl) HandleGoogleCallback(ctx context.Context, code string) (string, *models.User, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return "", nil, fmt.Errorf("google login is not configured")
	}

	info, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("google exchange failed: %w", err)
	}

	user, err := s.userRepo.GetByProviderID(ctx, "google", info.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		// Link to an existing local account with the same email if one exists.
		user, err = s.userRepo.GetByEmail(ctx, info.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}

	if user == nil {
		user = &models.User{
			ID:         uuid.New(),
			Email:      info.Email,
			Name:       info.Name,
			Role:       "student",
			Provider:   "google",
			ProviderID: info.ID,
			Avatar:     info.Picture,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", nil, fmt.Errorf("failed to create user: %w", err)
		}
		logger.Auth("GoogleCallback", "user created via google", map[string]interface{}{
			"email": user.Email,
		})
	} else if user.ProviderID == "" {
		user.Provider = "google"
		user.ProviderID = info.ID
		user.Avatar = info.Picture
		if err := s.userRepo.Update(ctx, user.ID, user); err != nil {
			return "", nil, fmt.Errorf("failed to link google account: %w", err)
		}
	}

	s.touchLastLogin(ctx, user)

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.StudentID, s.jwtSecret, tokenLifetime)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, user, nil
}

func (s *AuthServiceImpl) touchLastLogin(ctx context.Context, user *models.User) {
	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user.ID, user); err != nil {
		logger.AuthError("Login", "failed to update last login", err, map[string]interface{}{
			"user_id": user.ID.String(),
		})
	}
}
