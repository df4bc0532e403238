package stream

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StreamAlerts = "chat:alerts"

	// DeadLetterSuffix names the stream that receives entries which kept
	// failing delivery.
	DeadLetterSuffix = ":dlq"

	JobChatAlert = "chat.alert"
)

// Job is the envelope stored under the "data" field of every stream entry.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Entry is one decoded stream entry.
type Entry struct {
	StreamID string
	Job      Job
}

type RedisStream struct {
	client *redis.Client
	group  string
	log    zerolog.Logger
}

func NewRedisStream(client *redis.Client, group string, log zerolog.Logger) *RedisStream {
	return &RedisStream{
		client: client,
		group:  group,
		log:    log.With().Str("component", "redis_stream").Logger(),
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, job *Job) (string, error) {
	jsonData, err := json.Marshal(job)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": jsonData},
	}).Result()
}

// Consume reads new entries for consumer until ctx is done. Entries are not
// acknowledged here; the handler owns the Ack once processing is settled.
// Undecodable entries are acknowledged and dropped.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, block time.Duration, handler func(ctx context.Context, e Entry)) {
	for {
		if ctx.Err() != nil {
			return
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    block,
		}).Result()

		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				s.log.Warn().Err(err).Str("stream", stream).Msg("stream read error")
				time.Sleep(time.Second)
			}
			continue
		}

		for _, st := range streams {
			s.dispatch(ctx, st.Stream, st.Messages, handler)
		}
	}
}

func (s *RedisStream) dispatch(ctx context.Context, stream string, msgs []redis.XMessage, handler func(ctx context.Context, e Entry)) {
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		var job Job
		if !ok || json.Unmarshal([]byte(data), &job) != nil {
			s.log.Error().Str("stream", stream).Str("id", msg.ID).Msg("dropping undecodable entry")
			_ = s.Ack(ctx, stream, msg.ID)
			continue
		}
		handler(ctx, Entry{StreamID: msg.ID, Job: job})
	}
}

// ReclaimConfig bounds how stuck pending entries are taken over.
type ReclaimConfig struct {
	MinIdle       time.Duration // entries idle for less are left alone
	MaxDeliveries int64         // at or above this count entries go to the dead-letter stream
	Count         int64
}

// DefaultReclaimConfig leaves room for a job to exhaust its in-pool retries
// before another consumer takes it over.
func DefaultReclaimConfig() ReclaimConfig {
	return ReclaimConfig{
		MinIdle:       5 * time.Minute,
		MaxDeliveries: 5,
		Count:         100,
	}
}

// Reclaim claims entries of any consumer that have been pending for at least
// cfg.MinIdle and hands them to handler under consumer. Entries delivered
// cfg.MaxDeliveries times are copied to the dead-letter stream and
// acknowledged instead. It returns the number of entries handed to handler.
func (s *RedisStream) Reclaim(ctx context.Context, stream, consumer string, cfg ReclaimConfig, handler func(ctx context.Context, e Entry)) (int, error) {
	if cfg.Count <= 0 {
		cfg.Count = DefaultReclaimConfig().Count
	}

	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  s.group,
		Start:  "-",
		End:    "+",
		Count:  cfg.Count,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	var ids []string
	for _, p := range pending {
		if p.Idle < cfg.MinIdle {
			continue
		}
		if cfg.MaxDeliveries > 0 && p.RetryCount >= cfg.MaxDeliveries {
			s.log.Warn().
				Str("stream", stream).
				Str("id", p.ID).
				Int64("deliveries", p.RetryCount).
				Msg("entry exceeded max deliveries, moving to dead letter")
			if err := s.deadLetter(ctx, stream, p.ID, p.RetryCount); err != nil {
				s.log.Error().Err(err).Str("id", p.ID).Msg("dead letter failed, entry left pending")
				continue
			}
			_ = s.Ack(ctx, stream, p.ID)
			continue
		}
		ids = append(ids, p.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	claimed, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   stream,
		Group:    s.group,
		Consumer: consumer,
		MinIdle:  cfg.MinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return 0, err
	}

	s.log.Info().Str("stream", stream).Int("claimed", len(claimed)).Msg("reclaimed pending entries")
	s.dispatch(ctx, stream, claimed, handler)
	return len(claimed), nil
}

func (s *RedisStream) deadLetter(ctx context.Context, stream, id string, deliveries int64) error {
	msgs, err := s.client.XRangeN(ctx, stream, id, id, 1).Result()
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		// trimmed away, nothing left to keep
		return nil
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream + DeadLetterSuffix,
		Values: map[string]any{
			"data":       msgs[0].Values["data"],
			"source_id":  id,
			"deliveries": deliveries,
		},
	}).Err()
}

func (s *RedisStream) Ack(ctx context.Context, stream, id string) error {
	return s.client.XAck(ctx, stream, s.group, id).Err()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}
