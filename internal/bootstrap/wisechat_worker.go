package bootstrap

import (
	"context"
	"sync"
	"time"

	"wisechat_server/adapter/in/worker"
	"wisechat_server/config"
	"wisechat_server/pkg/logger"

	"github.com/rs/zerolog"
)

// Worker turns chat:alerts stream entries into notifications.
type Worker struct {
	pool     *worker.AlertPool
	consumer *worker.AlertConsumer
	deps     *Dependencies
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

func NewWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	zlog := logger.Default().Zerolog().With().Str("component", "worker").Logger()

	poolConfig := worker.DefaultPoolConfig()
	poolConfig.Workers = cfg.AlertWorkers

	wctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		deps:   deps,
		ctx:    wctx,
		cancel: cancel,
		zlog:   zlog,
	}

	// Redis Stream Consumer 설정 (Redis가 있을 때만)
	if deps.Stream != nil {
		w.pool = worker.NewAlertPool(deps.NotificationService, deps.Stream, poolConfig, zlog)
		w.consumer = worker.NewAlertConsumer(deps.Stream, w.pool, cfg.WorkerID, zlog)
	} else {
		logger.Warn("Redis not available, alerts are written synchronously by the API")
	}

	return w, cleanup, nil
}

// Start blocks until Stop is called.
func (w *Worker) Start() {
	if w.pool != nil {
		if err := w.pool.Start(); err != nil {
			w.zlog.Error().Err(err).Msg("alert pool failed to start")
			return
		}
	}

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			if err := w.consumer.Run(w.ctx); err != nil && err != context.Canceled {
				w.zlog.Error().Err(err).Msg("alert consumer error")
			}
		}()
	}

	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.cancel()
	// the consumer stops submitting before the pool drains
	w.wg.Wait()

	if w.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		w.pool.Stop(ctx)
	}
}

func (w *Worker) Metrics() worker.PoolMetrics {
	if w.pool == nil {
		return worker.PoolMetrics{}
	}
	return w.pool.Metrics()
}
