package di

import (
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mo7ami/backend-go/internal/config"
	"github.com/mo7ami/backend-go/internal/database"
	"github.com/mo7ami/backend-go/internal/generation"
	"github.com/mo7ami/backend-go/internal/logger"
	"github.com/mo7ami/backend-go/internal/retrieval"
	"github.com/mo7ami/backend-go/internal/services"
	"github.com/mo7ami/backend-go/internal/voice"
)

// RegisterProviders 注册所有依赖提供者
func RegisterProviders(container *dig.Container) error {
	providers := []interface{}{
		// 基础设施
		func() *config.Config { return config.AppConfig },
		func() *gorm.DB { return database.DB },
		func() *redis.Client { return database.RedisClient },
		func() *zap.Logger { return logger.Logger },
		func(cfg *config.Config) *openai.Client {
			return openai.NewClient(cfg.OpenAI.APIKey)
		},

		// 检索
		func(cfg *config.Config) retrieval.Embedder {
			return retrieval.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
		},
		newVectorStore,
		retrieval.NewDocumentRepo,
		func(embedder retrieval.Embedder, store retrieval.VectorStore, repo *retrieval.DocumentRepo, cfg *config.Config, log *zap.Logger) *retrieval.Engine {
			return retrieval.NewEngine(embedder, store, repo, cfg.RAG, log)
		},

		// 生成
		func(client *openai.Client, cfg *config.Config, log *zap.Logger) *generation.Generator {
			return generation.NewGenerator(client, cfg.OpenAI, cfg.RAG.AuthorityURL, log)
		},

		// 配额
		newQuotaCounter,
		func(counter services.QuotaCounter, cfg *config.Config) *services.QuotaService {
			return services.NewQuotaService(counter, cfg.Quota)
		},

		// 对话与统计
		services.NewConversationService,
		services.NewAnalyticsService,
		func(engine *retrieval.Engine, generator *generation.Generator, quota *services.QuotaService,
			conversations *services.ConversationService, analytics *services.AnalyticsService, log *zap.Logger) *services.ChatService {
			return services.NewChatService(engine, generator, quota, conversations, analytics, log)
		},

		// 语音
		func(cfg *config.Config) *voice.SpeechCache {
			return voice.NewSpeechCache(cfg.Voice.CacheSize)
		},
		func(client *openai.Client, cache *voice.SpeechCache, cfg *config.Config, log *zap.Logger) *voice.Service {
			return voice.NewService(client, cache, cfg.Voice, log)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}

// newVectorStore 按配置选择向量存储实现
func newVectorStore(cfg *config.Config, db *gorm.DB, log *zap.Logger) (retrieval.VectorStore, error) {
	if cfg.VectorStore.Provider == "milvus" {
		store, err := retrieval.NewMilvusVectorStore(retrieval.MilvusOptions{
			Address:    cfg.VectorStore.Milvus.Address,
			Username:   cfg.VectorStore.Milvus.Username,
			Password:   cfg.VectorStore.Milvus.Password,
			Collection: cfg.VectorStore.Milvus.Collection,
			Database:   cfg.VectorStore.Milvus.Database,
			VectorSize: cfg.VectorStore.Milvus.VectorSize,
			UseTLS:     cfg.VectorStore.Milvus.TLS,
		})
		if err != nil {
			log.Warn("failed to connect to Milvus, falling back to database vector store", zap.Error(err))
			return retrieval.NewDatabaseVectorStore(db), nil
		}
		return store, nil
	}
	return retrieval.NewDatabaseVectorStore(db), nil
}

// newQuotaCounter Redis可用时用Redis计数，否则退回数据库UPSERT
func newQuotaCounter(cfg *config.Config, client *redis.Client, db *gorm.DB) services.QuotaCounter {
	if cfg.Quota.Backend == "redis" && client != nil {
		return services.NewRedisQuotaCounter(client)
	}
	return services.NewPostgresQuotaCounter(db)
}
