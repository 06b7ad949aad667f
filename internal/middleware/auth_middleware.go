package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/repository"
	"github.com/prakkhar03/skillbridge/internal/util"
)

const callerKey = "caller"

// IssueToken signs an HS256 token whose subject is the user ID.
func IssueToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func parseToken(secret, raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

// Auth resolves the bearer token to a stored user. Roles come from the
// database, not the token.
func Auth(secret string, users repository.UserRepositoryInterface) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return unauthorized(c, "Missing bearer token")
		}
		userID, err := parseToken(secret, strings.TrimSpace(raw))
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}
		user, err := users.FindByID(c.UserContext(), userID)
		if errors.Is(err, model.ErrNotFound) {
			return unauthorized(c, "Unknown user")
		}
		if err != nil {
			return util.HandleError(c, "Failed to resolve caller", err)
		}
		c.Locals(callerKey, user)
		return c.Next()
	}
}

// Caller returns the user resolved by Auth.
func Caller(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(callerKey).(*model.User)
	return user
}

func unauthorized(c *fiber.Ctx, message string) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusUnauthorized,
		Message: message,
	})
}
