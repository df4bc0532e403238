package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"wisechat_server/core/domain"
	"wisechat_server/internal/stream"
)

// =============================================================================
// go-pkgz/pool 기반 알림 Worker Pool
// =============================================================================

// AlertHandler turns an alert event into a notification.
type AlertHandler interface {
	HandleAlert(ctx context.Context, event *domain.AlertEvent) error
}

// Acker settles a stream entry once it has been handled.
type Acker interface {
	Ack(ctx context.Context, stream, id string) error
}

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	Workers    int           // 워커 수
	JobTimeout time.Duration // 작업 타임아웃
	MaxRetries int           // 재시도 횟수
	RetryDelay time.Duration // 첫 재시도 지연 (지수 증가)
}

// DefaultPoolConfig returns default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:    4,
		JobTimeout: 30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Message is one alert job travelling through the pool.
type Message struct {
	StreamID string
	Job      stream.Job
	Retries  int
}

// PoolMetrics holds pool metrics.
type PoolMetrics struct {
	JobsProcessed int64
	JobsFailed    int64
	JobsRetried   int64
}

// AlertPool processes alert jobs on a go-pkgz/pool worker group.
type AlertPool struct {
	handler AlertHandler
	acker   Acker
	config  PoolConfig
	log     zerolog.Logger

	pool    *pool.WorkerGroup[*Message]
	ctx     context.Context
	cancel  context.CancelFunc
	metrics PoolMetrics

	started bool
	mu      sync.Mutex
}

// alertWorker implements pool.Worker.
type alertWorker struct {
	pool *AlertPool
}

func (w *alertWorker) Do(ctx context.Context, msg *Message) error {
	return w.pool.processJob(ctx, msg)
}

// NewAlertPool creates the pool. acker may be nil when entries do not come
// from a stream.
func NewAlertPool(handler AlertHandler, acker Acker, config PoolConfig, log zerolog.Logger) *AlertPool {
	if config.Workers <= 0 {
		config.Workers = DefaultPoolConfig().Workers
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultPoolConfig().JobTimeout
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultPoolConfig().RetryDelay
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &AlertPool{
		handler: handler,
		acker:   acker,
		config:  config,
		log:     log.With().Str("component", "alert_pool").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts the worker group.
func (p *AlertPool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	p.pool = pool.New[*Message](p.config.Workers, &alertWorker{pool: p}).WithContinueOnError()
	if err := p.pool.Go(p.ctx); err != nil {
		return fmt.Errorf("start alert pool: %w", err)
	}
	p.started = true

	p.log.Info().Int("workers", p.config.Workers).Msg("alert pool started")
	return nil
}

// Submit queues a message. It returns false when the pool is not running.
func (p *AlertPool) Submit(msg *Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return false
	}
	p.pool.Submit(msg)
	return true
}

// Stop drains the pool and waits for in-flight jobs.
func (p *AlertPool) Stop(ctx context.Context) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	if err := p.pool.Close(ctx); err != nil {
		p.log.Warn().Err(err).Msg("alert pool closed with errors")
	}
	p.cancel()

	m := p.Metrics()
	p.log.Info().
		Int64("processed", m.JobsProcessed).
		Int64("failed", m.JobsFailed).
		Int64("retried", m.JobsRetried).
		Msg("alert pool stopped")
}

func (p *AlertPool) Metrics() PoolMetrics {
	return PoolMetrics{
		JobsProcessed: atomic.LoadInt64(&p.metrics.JobsProcessed),
		JobsFailed:    atomic.LoadInt64(&p.metrics.JobsFailed),
		JobsRetried:   atomic.LoadInt64(&p.metrics.JobsRetried),
	}
}

func (p *AlertPool) processJob(ctx context.Context, msg *Message) error {
	jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	err := p.handle(jobCtx, msg)
	if err == nil {
		atomic.AddInt64(&p.metrics.JobsProcessed, 1)
		p.ack(msg)
		return nil
	}

	p.log.Error().
		Err(err).
		Str("job_id", msg.Job.ID).
		Int("retries", msg.Retries).
		Msg("alert job failed")

	if msg.Retries < p.config.MaxRetries && !isPermanent(err) {
		msg.Retries++
		atomic.AddInt64(&p.metrics.JobsRetried, 1)
		backoff := p.config.RetryDelay * time.Duration(1<<(msg.Retries-1))
		time.AfterFunc(backoff, func() {
			if !p.Submit(msg) {
				p.log.Warn().Str("job_id", msg.Job.ID).Msg("retry dropped, pool stopped")
			}
		})
		return err
	}

	// dead letter: keep the payload in the log and settle the entry
	atomic.AddInt64(&p.metrics.JobsFailed, 1)
	p.log.Error().
		Str("job_id", msg.Job.ID).
		Bytes("payload", msg.Job.Payload).
		Msg("alert job permanently failed")
	p.ack(msg)
	return err
}

// permanentError marks failures that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

func (p *AlertPool) handle(ctx context.Context, msg *Message) error {
	if msg.Job.Type != stream.JobChatAlert {
		return permanent(fmt.Errorf("unsupported job type %q", msg.Job.Type))
	}
	var event domain.AlertEvent
	if err := json.Unmarshal(msg.Job.Payload, &event); err != nil {
		return permanent(fmt.Errorf("decode alert payload: %w", err))
	}
	return p.handler.HandleAlert(ctx, &event)
}

func (p *AlertPool) ack(msg *Message) {
	if p.acker == nil || msg.StreamID == "" {
		return
	}
	if err := p.acker.Ack(context.Background(), stream.StreamAlerts, msg.StreamID); err != nil {
		p.log.Warn().Err(err).Str("stream_id", msg.StreamID).Msg("ack failed")
	}
}
