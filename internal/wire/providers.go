// Package wire 提供依赖注入配置
package wire

import (
	"context"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"novelcraft/internal/application/agent"
	"novelcraft/internal/config"
	"novelcraft/internal/domain/repository"
	infraembedding "novelcraft/internal/infrastructure/embedding"
	"novelcraft/internal/infrastructure/persistence/filestore"
	"novelcraft/internal/infrastructure/persistence/milvus"
	"novelcraft/internal/infrastructure/persistence/redis"
	"novelcraft/internal/interfaces/http/handler"
	"novelcraft/internal/workflow/chain"
)

// ProvideRedisConfig 提取 Redis 子配置
func ProvideRedisConfig(cfg *config.Config) *config.RedisConfig {
	return &cfg.Cache.Redis
}

// ProvideMilvusConfig 提取 Milvus 子配置
func ProvideMilvusConfig(cfg *config.Config) *config.MilvusConfig {
	return &cfg.Vector.Milvus
}

// ProvideEmbeddingConfig 提取 Embedding 子配置
func ProvideEmbeddingConfig(cfg *config.Config) *config.EmbeddingConfig {
	return &cfg.Embedding
}

// ProvideStore 创建大纲文件存储
func ProvideStore(cfg *config.Config) (*filestore.Store, error) {
	return filestore.NewStore(cfg.Storage.DataDir)
}

// ProvideRedisClient 创建 Redis 客户端及其清理函数
func ProvideRedisClient(cfg *config.RedisConfig) (*redis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideMilvusClient 创建 Milvus 客户端，向量维度取 Embedding 配置
func ProvideMilvusClient(ctx context.Context, cfg *config.MilvusConfig, embCfg *config.EmbeddingConfig) (*milvus.Client, func(), error) {
	client, err := milvus.NewClient(ctx, cfg, embCfg.Dimension)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideEmbedder 创建 Eino Embedding 客户端
func ProvideEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (einoembedding.Embedder, error) {
	return infraembedding.NewEinoEmbedder(ctx, cfg)
}

// ProvideContextAssembler 创建上下文组装器
func ProvideContextAssembler(cfg *config.Config, memories repository.MemoryRepository) *agent.ContextAssembler {
	return agent.NewContextAssembler(memories, cfg.Workflow.ContextTimeout)
}

// ProvideEngine 创建工作流引擎
func ProvideEngine(
	cfg *config.Config,
	planner *chain.PlannerChain,
	writer *chain.WriterChain,
	reviewer *chain.ReviewerChain,
	assembler *agent.ContextAssembler,
	memories repository.MemoryRepository,
	projects repository.ProjectRepository,
	chapters repository.ChapterRepository,
	sections repository.SectionRepository,
) *agent.Engine {
	return agent.NewEngine(planner, writer, reviewer, assembler,
		memories, projects, chapters, sections, cfg.Workflow.GenerationTimeout)
}

// ProvideSession 创建流式会话包装器
func ProvideSession(cfg *config.Config, engine *agent.Engine) *agent.Session {
	return agent.NewSession(engine, cfg.Workflow.StreamBuffer)
}

// ProvideHealthHandler 创建健康检查处理器
func ProvideHealthHandler(cfg *config.Config, redisClient *redis.Client, milvusClient *milvus.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, redisClient, milvusClient)
}
