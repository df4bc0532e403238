package bootstrap

import (
	"context"

	"wisechat_server/adapter/out/messaging"
	"wisechat_server/adapter/out/persistence"
	"wisechat_server/config"
	"wisechat_server/core/agent/llm"
	"wisechat_server/core/domain"
	"wisechat_server/core/port/out"
	"wisechat_server/core/service/chat"
	"wisechat_server/core/service/message"
	"wisechat_server/core/service/notification"
	"wisechat_server/core/service/pipeline"
	"wisechat_server/core/service/responder"
	"wisechat_server/core/service/sentiment"
	"wisechat_server/infra/database"
	"wisechat_server/internal/stream"
	"wisechat_server/pkg/apperr"
	"wisechat_server/pkg/cache"
	"wisechat_server/pkg/logger"
	"wisechat_server/pkg/metrics"
	"wisechat_server/pkg/resilience"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const consumerGroup = "wisechat-workers"

type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	SQLDB  *sqlx.DB
	Redis  *redis.Client

	// Repositories
	ChatRepo         domain.ChatRepository
	MessageRepo      domain.MessageRepository
	NotificationRepo domain.NotificationRepository

	// Messaging
	Stream         *stream.RedisStream
	AlertPublisher out.AlertPublisher

	// Pipeline
	Metrics    *metrics.PipelineMetrics
	Breaker    *resilience.Breaker
	Completion *llm.MoodCompletion
	Pipeline   *pipeline.Pipeline

	// Services
	ChatService         *chat.Service
	MessageService      *message.Service
	NotificationService *notification.Service
}

func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// =========================================================================
	// Infrastructure
	// =========================================================================

	if cfg.DatabaseURL == "" {
		return nil, nil, apperr.ConfigError("DATABASE_URL is required")
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, apperr.DatabaseError("connect postgres", err)
	}
	deps.DB = db
	deps.SQLDB = database.NewSQLX(db)
	cleanups = append(cleanups, func() {
		_ = deps.SQLDB.Close()
		db.Close()
	})

	if err := database.EnsureSchema(ctx, db); err != nil {
		cleanup()
		return nil, nil, apperr.DatabaseError("ensure schema", err)
	}
	logger.Info("PostgreSQL connected")

	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			// the pipeline runs without Redis; alerts are then written in-process
			logger.WithError(err).Warn("Redis unavailable, continuing without cache and alert stream")
		} else {
			deps.Redis = rdb
			cleanups = append(cleanups, func() { _ = rdb.Close() })
			logger.Info("Redis connected")
		}
	}

	// =========================================================================
	// Repositories
	// =========================================================================

	var chatRepo domain.ChatRepository = persistence.NewChatAdapter(deps.SQLDB)
	if deps.Redis != nil {
		chatRepo = persistence.NewCachedChatAdapter(chatRepo, cache.NewRedisCache(deps.Redis, "wisechat:"), cfg.AggregateCacheTTL())
	}
	deps.ChatRepo = chatRepo
	deps.MessageRepo = persistence.NewMessageAdapter(deps.SQLDB)
	deps.NotificationRepo = persistence.NewNotificationAdapter(deps.SQLDB)

	// =========================================================================
	// Pipeline
	// =========================================================================

	deps.Metrics = metrics.NewPipelineMetrics()
	breakerCfg := resilience.DefaultBreakerConfig("openai")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		deps.Metrics.SetBreakerState(name, resilience.StateValue(to))
		logger.WithFields(map[string]any{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		}).Warn("[Breaker] state changed")
	}
	deps.Breaker = resilience.NewBreaker(breakerCfg)

	deps.Completion = llm.NewMoodCompletion(llm.CompletionConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout(),
	}, deps.Breaker)
	if !deps.Completion.IsAvailable() {
		logger.Warn("OPENAI_API_KEY not set, replies use templates only")
	}

	lexicon := sentiment.NewLexicon(cfg.MatchMode(), sentiment.DefaultWordLists())
	deps.Pipeline = pipeline.New(pipeline.Deps{
		Classifier: sentiment.NewClassifier(lexicon),
		Responder:  responder.New(),
		Completion: deps.Completion,
		Metrics:    deps.Metrics,
	})

	// =========================================================================
	// Services
	// =========================================================================

	deps.NotificationService = notification.NewService(deps.NotificationRepo)

	if deps.Redis != nil {
		deps.Stream = stream.NewRedisStream(deps.Redis, consumerGroup, logger.Default().Zerolog())
		deps.AlertPublisher = messaging.NewAlertProducer(deps.Stream)
	} else {
		deps.AlertPublisher = deps.NotificationService
	}

	deps.ChatService = chat.NewService(deps.ChatRepo)
	deps.MessageService = message.NewService(deps.ChatRepo, deps.MessageRepo, deps.Pipeline, deps.AlertPublisher)

	return deps, cleanup, nil
}
