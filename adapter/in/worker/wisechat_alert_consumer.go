package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wisechat_server/internal/stream"
)

// AlertConsumer feeds chat:alerts stream entries into an AlertPool.
type AlertConsumer struct {
	stream       *stream.RedisStream
	pool         *AlertPool
	name         string
	block        time.Duration
	reclaim      stream.ReclaimConfig
	reclaimEvery time.Duration
	log          zerolog.Logger
}

func NewAlertConsumer(s *stream.RedisStream, p *AlertPool, name string, log zerolog.Logger) *AlertConsumer {
	return &AlertConsumer{
		stream:       s,
		pool:         p,
		name:         name,
		block:        5 * time.Second,
		reclaim:      stream.DefaultReclaimConfig(),
		reclaimEvery: 30 * time.Second,
		log:          log.With().Str("component", "alert_consumer").Str("consumer", name).Logger(),
	}
}

// Run blocks until ctx is done. Entries left pending by a crashed or
// stopped consumer are reclaimed once at start and then periodically.
func (c *AlertConsumer) Run(ctx context.Context) error {
	if err := c.stream.CreateGroup(ctx, stream.StreamAlerts); err != nil {
		return err
	}
	c.log.Info().Str("stream", stream.StreamAlerts).Msg("consuming alerts")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.reclaimLoop(ctx)
	}()

	c.stream.Consume(ctx, stream.StreamAlerts, c.name, c.block, c.submit)
	wg.Wait()
	return nil
}

func (c *AlertConsumer) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.reclaimEvery)
	defer ticker.Stop()

	for {
		if _, err := c.stream.Reclaim(ctx, stream.StreamAlerts, c.name, c.reclaim, c.submit); err != nil && ctx.Err() == nil {
			c.log.Warn().Err(err).Msg("reclaim pending entries failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *AlertConsumer) submit(_ context.Context, e stream.Entry) {
	if !c.pool.Submit(&Message{StreamID: e.StreamID, Job: e.Job}) {
		c.log.Warn().Str("stream_id", e.StreamID).Msg("pool not running, entry left pending")
	}
}
