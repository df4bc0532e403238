package http

import (
	"strconv"

	"wisechat_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetUserID extracts the user id JWTAuth stored in the request locals.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperr.Unauthorized("")
	}
	return userID, nil
}

// ParseID reads a positive int64 route parameter.
func ParseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput(param, "must be a positive integer")
	}
	return id, nil
}

// bindJSON decodes the body and maps decode failures to BAD_REQUEST.
func bindJSON(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}
