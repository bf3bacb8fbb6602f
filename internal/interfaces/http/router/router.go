// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"novelcraft/internal/config"
	"novelcraft/internal/infrastructure/persistence/redis"
	"novelcraft/internal/interfaces/http/handler"
	"novelcraft/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Project   *handler.ProjectHandler
	Chapter   *handler.ChapterHandler
	Section   *handler.SectionHandler
	Knowledge *handler.KnowledgeHandler
	Chat      *handler.ChatHandler
	Titles    *handler.TitlesHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *Handlers
	limiter  *redis.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers *Handlers, limiter *redis.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.RateLimit(r.cfg.Security.RateLimit, r.limiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	{
		api.GET("/projects", r.handlers.Project.List)
		api.POST("/projects", r.handlers.Project.Create)

		project := api.Group("/projects/:project")
		{
			project.GET("", r.handlers.Project.Get)
			project.DELETE("", r.handlers.Project.Delete)
			project.PUT("/outline", r.handlers.Project.UpdateOutline)

			project.GET("/chapters", r.handlers.Chapter.List)
			project.POST("/chapters", r.handlers.Chapter.Create)

			chapter := project.Group("/chapters/:chapter")
			{
				chapter.GET("", r.handlers.Chapter.Get)
				chapter.PUT("", r.handlers.Chapter.Update)
				chapter.DELETE("", r.handlers.Chapter.Delete)

				chapter.GET("/sections", r.handlers.Section.List)
				chapter.POST("/sections", r.handlers.Section.Create)
				chapter.GET("/sections/:section", r.handlers.Section.Get)
				chapter.PUT("/sections/:section", r.handlers.Section.Update)
				chapter.DELETE("/sections/:section", r.handlers.Section.Delete)
			}

			project.GET("/knowledge", r.handlers.Knowledge.List)
			project.DELETE("/knowledge", r.handlers.Knowledge.Clear)
			project.DELETE("/knowledge/:memory", r.handlers.Knowledge.DeleteOne)
		}

		api.POST("/extract-titles", r.handlers.Titles.Extract)
		api.POST("/chat", r.handlers.Chat.Chat)
	}
}
