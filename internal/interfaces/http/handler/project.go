package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	"novelcraft/internal/infrastructure/persistence/redis"
	"novelcraft/internal/interfaces/http/dto"
	apperrors "novelcraft/pkg/errors"
	"novelcraft/pkg/logger"
)

// projectCacheTTL 项目元数据缓存时长，写路径上主动失效
const projectCacheTTL = 30 * time.Second

// ProjectHandler 项目处理器
// 删除项目时连带清空该项目的向量记忆分区
type ProjectHandler struct {
	projects repository.ProjectRepository
	memories repository.MemoryRepository
	cache    *redis.Cache
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projects repository.ProjectRepository, memories repository.MemoryRepository, cache *redis.Cache) *ProjectHandler {
	return &ProjectHandler{projects: projects, memories: memories, cache: cache}
}

// List 项目列表，读穿缓存
func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		raw, err := h.cache.GetOrLoad(ctx, redis.ProjectListKey(), projectCacheTTL, func() (interface{}, error) {
			return h.projects.List(ctx)
		})
		if err == nil {
			var projects []*entity.Project
			if jsonErr := json.Unmarshal(raw, &projects); jsonErr == nil {
				dto.Success(c, projects)
				return
			}
		}
		// 缓存路径失败时退回直读
		logger.Warn(ctx, "project list cache unavailable, falling back to store", "error", errString(err))
	}

	projects, err := h.projects.List(ctx)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, projects)
}

// Create 创建项目，非法或重复的项目名统一返回 400
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	name, ok := entity.SanitizeProjectName(req.Name)
	if !ok {
		dto.BadRequest(c, "invalid project name")
		return
	}

	ctx := c.Request.Context()
	project := entity.NewProject(name, req.Description)
	if err := h.projects.Create(ctx, project); err != nil {
		if errors.Is(err, apperrors.ErrProjectExists) {
			dto.BadRequest(c, "project already exists")
			return
		}
		dto.FromAppError(c, err)
		return
	}

	h.invalidate(c, name)
	dto.Created(c, project)
}

// Get 获取单个项目
func (h *ProjectHandler) Get(c *gin.Context) {
	name := c.Param("project")
	ctx := c.Request.Context()

	if h.cache != nil {
		raw, err := h.cache.GetOrLoad(ctx, redis.ProjectKey(name), projectCacheTTL, func() (interface{}, error) {
			project, err := h.projects.Get(ctx, name)
			if err != nil {
				return nil, err
			}
			if project == nil {
				return nil, apperrors.ErrProjectNotFound
			}
			return project, nil
		})
		if err == nil {
			var project entity.Project
			if jsonErr := json.Unmarshal(raw, &project); jsonErr == nil {
				dto.Success(c, &project)
				return
			}
		} else if errors.Is(err, apperrors.ErrProjectNotFound) {
			dto.NotFound(c, "project not found")
			return
		}
	}

	project, err := h.projects.Get(ctx, name)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if project == nil {
		dto.NotFound(c, "project not found")
		return
	}
	dto.Success(c, project)
}

// UpdateOutline 更新项目总大纲
func (h *ProjectHandler) UpdateOutline(c *gin.Context) {
	name := c.Param("project")

	var req dto.UpdateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	if err := h.projects.UpdateOutline(ctx, name, req.Outline); err != nil {
		dto.FromAppError(c, err)
		return
	}

	h.invalidate(c, name)
	dto.Success(c, dto.MessageResponse{Message: "outline updated"})
}

// Delete 删除项目及其知识库
func (h *ProjectHandler) Delete(c *gin.Context) {
	name := c.Param("project")
	ctx := c.Request.Context()

	deleted, err := h.projects.Delete(ctx, name)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	// 项目目录不存在也继续清理记忆，保持与大纲树的最终一致
	if memErr := h.memories.DeleteAll(ctx, name); memErr != nil {
		logger.Warn(ctx, "failed to purge project memories",
			"project", name, "error", memErr.Error())
	}

	if !deleted {
		dto.NotFound(c, "project not found")
		return
	}

	h.invalidate(c, name)
	dto.Success(c, dto.MessageResponse{Message: "project and knowledge base deleted"})
}

// invalidate 写路径上的缓存失效
func (h *ProjectHandler) invalidate(c *gin.Context, name string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(c.Request.Context(), redis.ProjectKey(name), redis.ProjectListKey()); err != nil {
		logger.Warn(c.Request.Context(), "cache invalidation failed", "project", name, "error", err.Error())
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
