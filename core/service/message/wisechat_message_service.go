package message

import (
	"context"
	"strings"
	"time"

	"wisechat_server/core/domain"
	"wisechat_server/core/port/in"
	"wisechat_server/core/port/out"
	"wisechat_server/core/service/chat"
	"wisechat_server/core/service/pipeline"
	"wisechat_server/pkg/apperr"
	"wisechat_server/pkg/logger"

	"github.com/google/uuid"
)

// MaxContentLength bounds a single user message, in runes.
const MaxContentLength = 4000

// Service runs the mood pipeline for incoming messages and persists the
// exchange.
type Service struct {
	chatRepo    domain.ChatRepository
	messageRepo domain.MessageRepository
	pipeline    *pipeline.Pipeline
	alerts      out.AlertPublisher
	now         func() time.Time
}

// NewService creates the message service. alerts may be nil.
func NewService(chatRepo domain.ChatRepository, messageRepo domain.MessageRepository, p *pipeline.Pipeline, alerts out.AlertPublisher) *Service {
	return &Service{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		pipeline:    p,
		alerts:      alerts,
		now:         time.Now,
	}
}

// CreateMessage stores the user message with its classification and the
// assistant reply, then overwrites the chat aggregate with the terminal
// classification.
func (s *Service) CreateMessage(ctx context.Context, userID uuid.UUID, chatID int64, content string) (*in.CreateMessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.MissingField("content")
	}
	if len([]rune(content)) > MaxContentLength {
		return nil, apperr.InvalidInput("content", "too long")
	}

	current, err := chat.LoadOwned(ctx, s.chatRepo, userID, chatID)
	if err != nil {
		return nil, err
	}

	outcome := s.pipeline.Process(ctx, content)
	result := outcome.Result

	createdAt := s.now().UTC()
	userMsg := domain.NewUserMessage(current.ID, userID, content, result, createdAt)
	botMsg := domain.NewBotMessage(current.ID, userID, result.ReplyText, createdAt)

	if err := s.messageRepo.CreateExchange(ctx, userMsg, botMsg); err != nil {
		return nil, apperr.DatabaseError("create messages", err)
	}

	if err := s.chatRepo.UpdateAggregate(ctx, current.ID, result.Sentiment, result.UrgencyLevel); err != nil {
		return nil, apperr.DatabaseError("update chat aggregate", err)
	}
	current.ApplyAggregate(result)

	log := logger.WithContext(ctx).WithFields(map[string]any{
		"chat_id":   current.ID,
		"sentiment": result.Sentiment,
		"urgency":   result.UrgencyLevel,
		"source":    outcome.Source,
	})

	if userMsg.AlertTriggered {
		log.Warn("[MessageService.CreateMessage] urgency alert raised")
		s.publishAlert(ctx, current, userMsg)
	} else {
		log.Debug("[MessageService.CreateMessage] message processed")
	}

	return &in.CreateMessageResult{
		OK:          true,
		UserMessage: userMsg,
		BotMessage:  botMsg,
		Chat:        current,
		Source:      string(outcome.Source),
	}, nil
}

// publishAlert is best effort; a failure never fails the message.
func (s *Service) publishAlert(ctx context.Context, c *domain.WiseChat, msg *domain.Message) {
	if s.alerts == nil {
		return
	}

	event := &domain.AlertEvent{
		ChatID:       c.ID,
		MessageID:    msg.ID,
		UserID:       c.UserID,
		ChatName:     c.Name,
		Content:      msg.Content,
		UrgencyLevel: msg.UrgencyLevel,
		UrgencyScore: msg.UrgencyScore,
		OccurredAt:   msg.CreatedAt,
	}
	if err := s.alerts.PublishAlert(ctx, event); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("chat_id", c.ID).
			Warn("[MessageService.publishAlert] failed to publish alert")
	}
}

// ListMessages returns the chat's messages oldest first.
func (s *Service) ListMessages(ctx context.Context, userID uuid.UUID, chatID int64) ([]*domain.Message, error) {
	if _, err := chat.LoadOwned(ctx, s.chatRepo, userID, chatID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, apperr.DatabaseError("list messages", err)
	}
	return messages, nil
}

// BotReplyStatus summarizes the assistant replies of a chat.
func (s *Service) BotReplyStatus(ctx context.Context, userID uuid.UUID, chatID int64) (*in.BotReplyStatus, error) {
	messages, err := s.ListMessages(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	status := &in.BotReplyStatus{TotalMessages: len(messages)}
	for _, m := range messages {
		if !m.IsBot {
			continue
		}
		status.BotMessages++
		status.LastReply = m
	}
	status.HasReplies = status.BotMessages > 0
	return status, nil
}
