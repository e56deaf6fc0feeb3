package middleware

import (
	"github.com/gofiber/fiber/v2"

	"classtrack/pkg/utils"
)

// Protected validates the bearer token and stores the user context in locals.
func Protected(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret)
		if err != nil {
			switch err {
			case utils.ErrExpiredToken:
				return utils.UnauthorizedResponse(c, "Token has expired")
			case utils.ErrInvalidToken:
				return utils.UnauthorizedResponse(c, "Invalid token")
			case utils.ErrMissingToken:
				return utils.UnauthorizedResponse(c, "Missing token")
			default:
				return utils.UnauthorizedResponse(c, "Token validation failed")
			}
		}

		c.Locals("user", userCtx)

		return c.Next()
	}
}

// RequireRole gates a route to one role. Must run after Protected.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := utils.GetUserFromContext(c)
		if err != nil {
			return utils.UnauthorizedResponse(c, "User not authenticated")
		}

		if user.Role != role {
			return utils.ForbiddenResponse(c, "Insufficient permissions")
		}

		return c.Next()
	}
}

// TeacherOnly gates a route to teachers.
func TeacherOnly() fiber.Handler {
	return RequireRole("teacher")
}

// ProtectedWithQueryToken accepts the token from the Authorization header or a
// query parameter. WebSocket clients can't send custom headers.
func ProtectedWithQueryToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string

		if authHeader := c.Get("Authorization"); authHeader != "" {
			token = utils.ExtractTokenFromHeader(authHeader)
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization")
		}

		userCtx, err := utils.ValidateTokenStringToUUID(token, jwtSecret)
		if err != nil {
			return utils.UnauthorizedResponse(c, "Token validation failed")
		}

		c.Locals("user", userCtx)
		return c.Next()
	}
}
