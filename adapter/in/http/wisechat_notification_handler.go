package http

import (
	"wisechat_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles notification requests.
type NotificationHandler struct {
	notificationService in.NotificationService
}

func NewNotificationHandler(notificationService in.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) Register(router fiber.Router) {
	notifications := router.Group("/notifications")

	notifications.Get("/", h.ListNotifications)
	notifications.Post("/:id/read", h.MarkAsRead)
}

// ListNotifications returns the caller's notifications, newest first.
// ?unread_only=true restricts the list to unread entries.
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	unreadOnly := c.QueryBool("unread_only", false)
	notifications, err := h.notificationService.ListNotifications(c.UserContext(), userID, unreadOnly)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkAsRead(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
