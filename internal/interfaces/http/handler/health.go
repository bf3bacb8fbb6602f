// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"novelcraft/internal/infrastructure/persistence/milvus"
	"novelcraft/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	redis   *redis.Client
	milvus  *milvus.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(version string, redisClient *redis.Client, milvusClient *milvus.Client) *HealthHandler {
	return &HealthHandler{
		version: version,
		redis:   redisClient,
		milvus:  milvusClient,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 就绪检查：依赖全部可达才返回 200
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"redis":  {Status: "unknown"},
		"milvus": {Status: "unknown"},
	}
	ready := true

	if h.redis != nil {
		start := time.Now()
		if err := h.redis.HealthCheck(ctx); err != nil {
			checks["redis"].Status = "down"
			checks["redis"].Error = err.Error()
			ready = false
		} else {
			checks["redis"].Status = "up"
			checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		}
	} else {
		checks["redis"].Status = "disabled"
	}

	if h.milvus != nil {
		start := time.Now()
		if err := h.milvus.HealthCheck(ctx); err != nil {
			checks["milvus"].Status = "down"
			checks["milvus"].Error = err.Error()
			ready = false
		} else {
			checks["milvus"].Status = "up"
			checks["milvus"].LatencyMs = time.Since(start).Milliseconds()
		}
	} else {
		checks["milvus"].Status = "disabled"
	}

	status := http.StatusOK
	overall := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		overall = "not_ready"
	}
	c.JSON(status, readinessResponse{Status: overall, Checks: checks})
}

// Live 存活检查接口
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "alive"})
}
