//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"novelcraft/internal/application/agent"
	"novelcraft/internal/config"
	"novelcraft/internal/domain/repository"
	"novelcraft/internal/infrastructure/llm"
	"novelcraft/internal/infrastructure/persistence/filestore"
	"novelcraft/internal/infrastructure/persistence/milvus"
	"novelcraft/internal/infrastructure/persistence/redis"
	"novelcraft/internal/interfaces/http/handler"
	"novelcraft/internal/interfaces/http/router"
	"novelcraft/internal/workflow/chain"
	workflowport "novelcraft/internal/workflow/port"
)

// StoreSet 大纲文件存储
var StoreSet = wire.NewSet(
	ProvideStore,
	filestore.NewProjectRepository,
	filestore.NewChapterRepository,
	filestore.NewSectionRepository,
	wire.Bind(new(repository.ProjectRepository), new(*filestore.ProjectRepository)),
	wire.Bind(new(repository.ChapterRepository), new(*filestore.ChapterRepository)),
	wire.Bind(new(repository.SectionRepository), new(*filestore.SectionRepository)),
)

// RedisSet Redis 客户端、缓存与限流器
var RedisSet = wire.NewSet(
	ProvideRedisConfig,
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
)

// MemorySet 向量记忆层
var MemorySet = wire.NewSet(
	ProvideMilvusConfig,
	ProvideEmbeddingConfig,
	ProvideEmbedder,
	ProvideMilvusClient,
	milvus.NewMemoryRepository,
	wire.Bind(new(repository.MemoryRepository), new(*milvus.MemoryRepository)),
)

// WorkflowSet 生成链与引擎
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewPlannerChain,
	chain.NewWriterChain,
	chain.NewReviewerChain,
	chain.NewTitlesChain,
	ProvideContextAssembler,
	ProvideEngine,
	ProvideSession,
	agent.NewTitleExtractor,
)

// HandlerSet HTTP 处理器
var HandlerSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewProjectHandler,
	handler.NewChapterHandler,
	handler.NewSectionHandler,
	handler.NewKnowledgeHandler,
	handler.NewChatHandler,
	handler.NewTitlesHandler,
	wire.Struct(new(router.Handlers), "*"),
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StoreSet,
		RedisSet,
		MemorySet,
		WorkflowSet,
		HandlerSet,
		router.New,
	)
	return nil, nil, nil
}
