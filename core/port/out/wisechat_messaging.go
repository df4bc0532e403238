package out

import (
	"context"

	"wisechat_server/core/domain"
)

// AlertPublisher hands alert events to whoever creates notifications.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, event *domain.AlertEvent) error
}
