package persistence

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"wisechat_server/core/domain"
	"wisechat_server/core/port/out"
	"wisechat_server/pkg/logger"

	"github.com/google/uuid"
)

// DefaultChatCacheTTL applies when the adapter is built with a zero TTL.
const DefaultChatCacheTTL = 30 * time.Minute

// CachedChatAdapter wraps a ChatRepository with a Redis read-through cache.
// Cache failures are logged and fall through to the delegate.
type CachedChatAdapter struct {
	delegate domain.ChatRepository
	cache    out.AggregateCache
	ttl      time.Duration
	group    singleflight.Group

	// generation moves on every invalidation; a read-through that started
	// under an older generation does not write back.
	mu         sync.Mutex
	generation uint64
}

func NewCachedChatAdapter(delegate domain.ChatRepository, cache out.AggregateCache, ttl time.Duration) *CachedChatAdapter {
	if ttl <= 0 {
		ttl = DefaultChatCacheTTL
	}
	return &CachedChatAdapter{
		delegate: delegate,
		cache:    cache,
		ttl:      ttl,
	}
}

func chatCacheKey(id int64) string {
	return fmt.Sprintf("chat:%d", id)
}

func (a *CachedChatAdapter) Create(ctx context.Context, chat *domain.WiseChat) error {
	if err := a.delegate.Create(ctx, chat); err != nil {
		return err
	}
	a.store(ctx, chat)
	return nil
}

// GetByID checks the cache first; concurrent misses for one id share a
// single delegate call.
func (a *CachedChatAdapter) GetByID(ctx context.Context, id int64) (*domain.WiseChat, error) {
	key := chatCacheKey(id)

	var cached domain.WiseChat
	found, err := a.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("[CachedChatAdapter.GetByID] cache read failed")
	}
	if err == nil && found {
		return &cached, nil
	}

	v, err, _ := a.group.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		gen := a.currentGeneration()
		chat, err := a.delegate.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		a.storeIfCurrent(ctx, chat, gen)
		return chat, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing the flight must not share the pointer
	chat := *v.(*domain.WiseChat)
	return &chat, nil
}

func (a *CachedChatAdapter) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WiseChat, error) {
	return a.delegate.ListByUser(ctx, userID)
}

// UpdateAggregate writes the database first, then drops the cached entry so
// the next read picks up the new aggregate.
func (a *CachedChatAdapter) UpdateAggregate(ctx context.Context, id int64, sentiment domain.Sentiment, urgency domain.UrgencyLevel) error {
	if err := a.delegate.UpdateAggregate(ctx, id, sentiment, urgency); err != nil {
		return err
	}
	a.mu.Lock()
	a.generation++
	a.mu.Unlock()

	if err := a.cache.Delete(ctx, chatCacheKey(id)); err != nil {
		logger.WithError(err).WithField("chat_id", id).Warn("[CachedChatAdapter.UpdateAggregate] cache invalidation failed")
	}
	return nil
}

func (a *CachedChatAdapter) currentGeneration() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// storeIfCurrent holds mu across the write so an invalidation either sees
// the entry and deletes it or bumps the generation first.
func (a *CachedChatAdapter) storeIfCurrent(ctx context.Context, chat *domain.WiseChat, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != gen {
		return
	}
	a.store(ctx, chat)
}

func (a *CachedChatAdapter) store(ctx context.Context, chat *domain.WiseChat) {
	if err := a.cache.SetJSON(ctx, chatCacheKey(chat.ID), chat, a.ttl); err != nil {
		logger.WithError(err).WithField("chat_id", chat.ID).Warn("[CachedChatAdapter] cache write failed")
	}
}
