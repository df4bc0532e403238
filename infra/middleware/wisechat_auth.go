package middleware

import (
	"strings"
	"time"

	"wisechat_server/pkg/apperr"
	"wisechat_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuth verifies an HS256 bearer token and stores the "sub" claim as the
// user id. Tokens are issued elsewhere.
func JWTAuth(secret string) fiber.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(time.Minute),
	)

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return apperr.Unauthorized("missing authorization")
		}
		if secret == "" {
			return apperr.ConfigError("JWT secret not configured")
		}

		claims := jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.WithContext(c.UserContext()).WithError(err).Warn("[JWTAuth] token rejected")
			return apperr.InvalidToken("invalid token")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return apperr.InvalidToken("invalid user id format")
		}

		c.Locals("user_id", userID)
		c.SetUserContext(logger.ContextWithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
