package message

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"wisechat_server/core/domain"
	"wisechat_server/core/service/pipeline"
	"wisechat_server/pkg/apperr"

	"github.com/google/uuid"
)

type memoryChats struct {
	mu        sync.Mutex
	chats     map[int64]*domain.WiseChat
	updates   int
	updateErr error
}

func (m *memoryChats) Create(ctx context.Context, c *domain.WiseChat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.chats) + 1)
	cp := *c
	m.chats[c.ID] = &cp
	return nil
}

func (m *memoryChats) GetByID(ctx context.Context, id int64) (*domain.WiseChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryChats) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WiseChat, error) {
	return nil, nil
}

func (m *memoryChats) UpdateAggregate(ctx context.Context, id int64, s domain.Sentiment, u domain.UrgencyLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	m.chats[id].SentimentGeneral = s
	m.chats[id].UrgencyGeneral = u
	return nil
}

type memoryMessages struct {
	mu        sync.Mutex
	messages  []*domain.Message
	createErr error
	// insertErr fails individual inserts inside an exchange.
	insertErr func(msg *domain.Message) error
}

func (m *memoryMessages) CreateExchange(ctx context.Context, user, bot *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}

	staged := make([]*domain.Message, 0, 2)
	for _, msg := range []*domain.Message{user, bot} {
		if m.insertErr != nil {
			if err := m.insertErr(msg); err != nil {
				return err
			}
		}
		staged = append(staged, msg)
	}
	for _, msg := range staged {
		msg.ID = int64(len(m.messages) + 1)
		m.messages = append(m.messages, msg)
	}
	return nil
}

func (m *memoryMessages) ListByChat(ctx context.Context, chatID int64) ([]*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Message
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type recordingAlerts struct {
	mu     sync.Mutex
	events []*domain.AlertEvent
	err    error
}

func (r *recordingAlerts) PublishAlert(ctx context.Context, e *domain.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

type fixture struct {
	svc      *Service
	chats    *memoryChats
	messages *memoryMessages
	alerts   *recordingAlerts
	owner    uuid.UUID
	chatID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		chats:    &memoryChats{chats: map[int64]*domain.WiseChat{}},
		messages: &memoryMessages{},
		alerts:   &recordingAlerts{},
		owner:    uuid.New(),
	}
	c := domain.NewChat(f.owner, "diario", "")
	if err := f.chats.Create(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	f.chatID = c.ID
	f.svc = NewService(f.chats, f.messages, pipeline.New(pipeline.Deps{}), f.alerts)
	return f
}

func TestCreateMessageUrgent(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateMessage(context.Background(), f.owner, f.chatID, "  Necesito ayuda urgente ")
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	if !res.OK {
		t.Error("OK = false")
	}
	u := res.UserMessage
	if u.Content != "Necesito ayuda urgente" || u.IsBot {
		t.Errorf("user message = %+v", u)
	}
	if u.Sentiment != domain.SentimentNegative || u.UrgencyLevel != domain.UrgencyHigh || u.UrgencyScore != 3 || u.Emoji != "🚨" {
		t.Errorf("user classification = %s/%s/%d/%s", u.Sentiment, u.UrgencyLevel, u.UrgencyScore, u.Emoji)
	}
	if !u.AlertTriggered {
		t.Error("user AlertTriggered = false, want true")
	}

	b := res.BotMessage
	if !b.IsBot || b.Content == "" || b.AlertTriggered || b.UrgencyScore != 0 ||
		b.Sentiment != domain.SentimentNeutral || b.UrgencyLevel != domain.UrgencyLow || b.Emoji != "" {
		t.Errorf("bot message = %+v, want neutral defaults with a reply", b)
	}

	if res.Chat.SentimentGeneral != domain.SentimentNegative || res.Chat.UrgencyGeneral != domain.UrgencyHigh {
		t.Errorf("returned chat aggregate = %s/%s", res.Chat.SentimentGeneral, res.Chat.UrgencyGeneral)
	}
	stored, _ := f.chats.GetByID(context.Background(), f.chatID)
	if stored.SentimentGeneral != domain.SentimentNegative || stored.UrgencyGeneral != domain.UrgencyHigh {
		t.Errorf("stored aggregate = %s/%s, want negativo/alta", stored.SentimentGeneral, stored.UrgencyGeneral)
	}

	if len(f.alerts.events) != 1 {
		t.Fatalf("alerts published = %d, want 1", len(f.alerts.events))
	}
	if ev := f.alerts.events[0]; ev.ChatID != f.chatID || ev.MessageID != u.ID || ev.UserID != f.owner {
		t.Errorf("alert event = %+v", ev)
	}
}

func TestCreateMessageNoAlert(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CreateMessage(context.Background(), f.owner, f.chatID, "Gracias, me siento excelente")
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if res.UserMessage.AlertTriggered {
		t.Error("AlertTriggered = true for a positive message")
	}
	if len(f.alerts.events) != 0 {
		t.Errorf("alerts published = %d, want 0", len(f.alerts.events))
	}
	if res.Source != string(pipeline.SourceTemplate) {
		t.Errorf("Source = %s, want template", res.Source)
	}
}

func TestAggregateLastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateMessage(ctx, f.owner, f.chatID, "quiero morir"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateMessage(ctx, f.owner, f.chatID, "hola"); err != nil {
		t.Fatal(err)
	}

	stored, _ := f.chats.GetByID(ctx, f.chatID)
	if stored.SentimentGeneral != domain.SentimentNeutral || stored.UrgencyGeneral != domain.UrgencyLow {
		t.Errorf("aggregate = %s/%s, want the last message's neutro/baja", stored.SentimentGeneral, stored.UrgencyGeneral)
	}
	if f.chats.updates != 2 {
		t.Errorf("aggregate updates = %d, want 2", f.chats.updates)
	}
}

func TestCreateMessageRejected(t *testing.T) {
	tests := []struct {
		name    string
		user    func(f *fixture) uuid.UUID
		chatID  func(f *fixture) int64
		content string
		code    string
	}{
		{"empty content", func(f *fixture) uuid.UUID { return f.owner }, func(f *fixture) int64 { return f.chatID }, " \n ", apperr.CodeMissingField},
		{"unknown chat", func(f *fixture) uuid.UUID { return f.owner }, func(f *fixture) int64 { return 999 }, "hola", apperr.CodeNotFound},
		{"foreign chat", func(f *fixture) uuid.UUID { return uuid.New() }, func(f *fixture) int64 { return f.chatID }, "hola", apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateMessage(context.Background(), tt.user(f), tt.chatID(f), tt.content)
			if !apperr.HasCode(err, tt.code) {
				t.Errorf("CreateMessage() error = %v, want code %s", err, tt.code)
			}
			if len(f.messages.messages) != 0 || f.chats.updates != 0 {
				t.Error("nothing should be written for a rejected message")
			}
		})
	}
}

func TestCreateMessageStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.messages.createErr = errors.New("db down")

	_, err := f.svc.CreateMessage(context.Background(), f.owner, f.chatID, "hola")
	if !apperr.HasCode(err, apperr.CodeDatabaseError) {
		t.Errorf("error = %v, want DATABASE_ERROR", err)
	}
	if f.chats.updates != 0 {
		t.Error("aggregate must not be updated when message writes fail")
	}
}

func TestCreateMessageExchangeIsAtomic(t *testing.T) {
	tests := []struct {
		name  string
		fails func(msg *domain.Message) bool
	}{
		{"user insert fails", func(msg *domain.Message) bool { return !msg.IsBot }},
		{"bot insert fails", func(msg *domain.Message) bool { return msg.IsBot }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.messages.insertErr = func(msg *domain.Message) error {
				if tt.fails(msg) {
					return errors.New("insert failed")
				}
				return nil
			}

			_, err := f.svc.CreateMessage(context.Background(), f.owner, f.chatID, "hola")
			if !apperr.HasCode(err, apperr.CodeDatabaseError) {
				t.Errorf("error = %v, want DATABASE_ERROR", err)
			}
			msgs, _ := f.svc.ListMessages(context.Background(), f.owner, f.chatID)
			if len(msgs) != 0 {
				t.Errorf("stored %d messages, want none after a failed exchange", len(msgs))
			}
			if f.chats.updates != 0 {
				t.Error("aggregate must not be updated when the exchange fails")
			}
		})
	}
}

func TestCreateMessageAggregateFailure(t *testing.T) {
	f := newFixture(t)
	f.chats.updateErr = errors.New("db down")

	_, err := f.svc.CreateMessage(context.Background(), f.owner, f.chatID, "hola")
	if !apperr.HasCode(err, apperr.CodeDatabaseError) {
		t.Errorf("error = %v, want DATABASE_ERROR", err)
	}
}

func TestAlertFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.alerts.err = errors.New("redis down")

	if _, err := f.svc.CreateMessage(context.Background(), f.owner, f.chatID, "no aguanto más"); err != nil {
		t.Errorf("CreateMessage() error = %v, want nil despite alert failure", err)
	}
}

func TestListMessagesAndBotStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	step := 0
	f.svc.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	status, err := f.svc.BotReplyStatus(ctx, f.owner, f.chatID)
	if err != nil {
		t.Fatal(err)
	}
	if status.HasReplies || status.TotalMessages != 0 || status.LastReply != nil {
		t.Errorf("empty chat status = %+v", status)
	}

	first, _ := f.svc.CreateMessage(ctx, f.owner, f.chatID, "hola")
	second, _ := f.svc.CreateMessage(ctx, f.owner, f.chatID, "hoy estoy triste")

	msgs, err := f.svc.ListMessages(ctx, f.owner, f.chatID)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{first.UserMessage.ID, first.BotMessage.ID, second.UserMessage.ID, second.BotMessage.ID}
	if len(msgs) != len(want) {
		t.Fatalf("len(messages) = %d, want %d", len(msgs), len(want))
	}
	for i, m := range msgs {
		if m.ID != want[i] {
			t.Errorf("messages[%d].ID = %d, want %d", i, m.ID, want[i])
		}
	}

	status, err = f.svc.BotReplyStatus(ctx, f.owner, f.chatID)
	if err != nil {
		t.Fatal(err)
	}
	if !status.HasReplies || status.TotalMessages != 4 || status.BotMessages != 2 {
		t.Errorf("status = %+v, want 4 total, 2 bot", status)
	}
	if status.LastReply == nil || status.LastReply.ID != second.BotMessage.ID {
		t.Errorf("LastReply = %+v, want the second bot message", status.LastReply)
	}

	if _, err := f.svc.ListMessages(ctx, uuid.New(), f.chatID); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("ListMessages() by another user error = %v, want NOT_FOUND", err)
	}
}
