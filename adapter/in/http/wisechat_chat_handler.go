package http

import (
	"wisechat_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves chats and their messages.
type ChatHandler struct {
	chatService    in.ChatService
	messageService in.MessageService
}

func NewChatHandler(chatService in.ChatService, messageService in.MessageService) *ChatHandler {
	return &ChatHandler{
		chatService:    chatService,
		messageService: messageService,
	}
}

func (h *ChatHandler) Register(router fiber.Router) {
	chats := router.Group("/chats")

	chats.Post("/", h.CreateChat)
	chats.Get("/", h.ListChats)
	chats.Get("/:id", h.GetChat)
	chats.Get("/:id/messages", h.ListMessages)
	chats.Get("/:id/bot-status", h.BotStatus)
}

// RegisterMessageWrites registers the message creation route separately so
// callers can put a rate limiter in front of it.
func (h *ChatHandler) RegisterMessageWrites(router fiber.Router, mw ...fiber.Handler) {
	handlers := append(mw, h.CreateMessage)
	router.Post("/chats/:id/messages", handlers...)
}

// =============================================================================
// Chats
// =============================================================================

func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	var req in.CreateChatRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	chat, err := h.chatService.CreateChat(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

func (h *ChatHandler) ListChats(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	chats, err := h.chatService.ListChats(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"chats": chats,
		"total": len(chats),
	})
}

func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}
	chatID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	chat, err := h.chatService.GetChat(c.UserContext(), userID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(chat)
}

// =============================================================================
// Messages
// =============================================================================

type createMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) CreateMessage(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}
	chatID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	var req createMessageRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.messageService.CreateMessage(c.UserContext(), userID, chatID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}
	chatID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	messages, err := h.messageService.ListMessages(c.UserContext(), userID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"total":    len(messages),
	})
}

func (h *ChatHandler) BotStatus(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}
	chatID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	status, err := h.messageService.BotReplyStatus(c.UserContext(), userID, chatID)
	if err != nil {
		return err
	}
	return c.JSON(status)
}
