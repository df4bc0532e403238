// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"wisechat_server/core/domain"
	"wisechat_server/internal/stream"

	"github.com/google/uuid"
)

// AlertProducer implements out.AlertPublisher on the chat:alerts stream.
type AlertProducer struct {
	stream *stream.RedisStream
}

func NewAlertProducer(s *stream.RedisStream) *AlertProducer {
	return &AlertProducer{stream: s}
}

func (p *AlertProducer) PublishAlert(ctx context.Context, event *domain.AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	job := &stream.Job{
		ID:        uuid.New().String(),
		Type:      stream.JobChatAlert,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := p.stream.Publish(ctx, stream.StreamAlerts, job); err != nil {
		return fmt.Errorf("publish to %s: %w", stream.StreamAlerts, err)
	}
	return nil
}
