package out

import (
	"context"
	"time"
)

// AggregateCache JSON 캐시 인터페이스 (Redis)
type AggregateCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
