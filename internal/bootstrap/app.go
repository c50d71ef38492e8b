package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"newsrag/internal/ai"
	"newsrag/internal/app"
	"newsrag/internal/chunker"
	"newsrag/internal/config"
	"newsrag/internal/embedding"
	"newsrag/internal/model"
	mysqlClient "newsrag/internal/platform/mysql"
	rabbitmqClient "newsrag/internal/platform/rabbitmq"
	redisClient "newsrag/internal/platform/redis"
	"newsrag/internal/repository"
	"newsrag/internal/session"
	"newsrag/internal/vectorstore"
	"newsrag/internal/worker"
)

// App wires the whole service together. Redis, MySQL and RabbitMQ are
// optional at startup: when one is unreachable the app degrades (in-memory
// sessions, no archive, no ingest queue) instead of refusing to boot, so a
// local run without infrastructure still answers queries.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	MySQL    *gorm.DB
	Redis    *redis.Client
	MQConn    *amqp.Connection
	Publisher *rabbitmqClient.ArticlePublisher
	Sessions  session.Store
	Articles  *repository.ArticleRepository

	Embedder    embedding.Embedder
	VectorStore vectorstore.Store
	Generator   ai.Generator

	QueryService *app.QueryService
	ChatService  *app.ChatService
	IndexService *app.IndexService
	IndexWorker  *worker.ArticleIndexWorker

	Degraded  []string
	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		logger.Warn("mysql unavailable, article archive disabled", zap.Error(err))
		a.Degraded = append(a.Degraded, "mysql")
	} else {
		if err := mysqlDB.AutoMigrate(&model.Article{}); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
		a.MySQL = mysqlDB
		a.Articles = repository.NewArticleRepository(mysqlDB)
	}

	ttl := time.Duration(cfg.Redis.SessionTTLSeconds) * time.Second
	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory sessions", zap.Error(err))
		a.Degraded = append(a.Degraded, "redis")
		a.Sessions = session.NewMemoryStore(ttl)
	} else {
		a.Redis = redisCli
		a.Sessions = session.NewRedisStore(redisCli, ttl, logger)
	}

	if cfg.LLM.APIKey != "" {
		a.Embedder = embedding.NewOpenAIEmbedder(
			cfg.LLM.APIKey,
			cfg.LLM.BaseURL,
			cfg.LLM.EmbeddingModel,
			cfg.LLM.EmbeddingDim,
			logger,
		)
	} else {
		logger.Warn("no llm api key configured, using hash embedder")
		a.Degraded = append(a.Degraded, "embedder")
		a.Embedder = embedding.NewHashEmbedder(cfg.LLM.EmbeddingDim)
	}

	a.VectorStore = vectorstore.NewQdrant(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.LLM.EmbeddingDim,
		logger,
	)
	a.Generator = ai.NewGenerator(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)

	splitter, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, cfg.RAG.MinChunkChars)
	if err != nil {
		return nil, fmt.Errorf("init chunker failed: %w", err)
	}

	a.IndexService = app.NewIndexService(splitter, a.Embedder, a.VectorStore, logger)
	a.QueryService = app.NewQueryService(
		a.Embedder,
		a.VectorStore,
		a.Generator,
		cfg.RAG.TopK,
		cfg.RAG.MinSimilarity,
		logger,
	)
	a.ChatService = app.NewChatService(a.QueryService, a.Sessions, logger)

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		logger.Warn("rabbitmq unavailable, article ingest queue disabled", zap.Error(err))
		a.Degraded = append(a.Degraded, "rabbitmq")
	} else {
		a.MQConn = mqConn
		a.Publisher = rabbitmqClient.NewArticlePublisher(mqConn, cfg.RabbitMQ.ArticleQueue)
		a.IndexWorker = worker.NewArticleIndexWorker(mqConn, a.Articles, a.IndexService, cfg.RabbitMQ.ArticleQueue, logger)
		if err := a.IndexWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start index worker failed: %w", err)
		}
	}

	if cfg.Ingest.IndexOnStart {
		a.indexOnStart(ctx)
	}

	return a, nil
}

// indexOnStart seeds the vector collection from the archive, or from the
// articles batch file when the archive is empty or unavailable. Failures are
// logged, not fatal; the service still serves queries over whatever the
// collection already holds.
func (a *App) indexOnStart(ctx context.Context) {
	articles := a.startupArticles()
	if len(articles) == 0 {
		a.Logger.Warn("index on start requested but no articles found")
		return
	}
	points, err := a.IndexService.IndexArticles(ctx, articles)
	if err != nil {
		a.Logger.Error("startup indexing failed", zap.Error(err))
		return
	}
	a.Logger.Info("startup indexing complete",
		zap.Int("articles", len(articles)),
		zap.Int("points", points),
	)
}

func (a *App) startupArticles() []model.Article {
	if a.Articles != nil {
		articles, err := a.Articles.ListAll()
		if err != nil {
			a.Logger.Warn("list archived articles failed", zap.Error(err))
		} else if len(articles) > 0 {
			return articles
		}
	}

	path := a.Config.Ingest.ArticlesFile
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	articles, err := app.LoadArticlesFile(path)
	if err != nil {
		a.Logger.Warn("load articles file failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	if a.Articles != nil {
		if err := a.Articles.UpsertBatch(articles); err != nil {
			a.Logger.Warn("archive articles batch failed", zap.Error(err))
		}
	}
	return articles
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func (a *App) Close() error {
	var closeErr error
	if a.IndexWorker != nil {
		a.IndexWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
