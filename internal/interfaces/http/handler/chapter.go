package handler

import (
	"github.com/gin-gonic/gin"

	"novelcraft/internal/domain/repository"
	"novelcraft/internal/interfaces/http/dto"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	chapters repository.ChapterRepository
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(chapters repository.ChapterRepository) *ChapterHandler {
	return &ChapterHandler{chapters: chapters}
}

// List 按序号升序返回项目的全部章节
func (h *ChapterHandler) List(c *gin.Context) {
	chapters, err := h.chapters.List(c.Request.Context(), c.Param("project"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, chapters)
}

// Create 创建章节，序号由存储层按当前数量分配
func (h *ChapterHandler) Create(c *gin.Context) {
	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.chapters.Create(c.Request.Context(), c.Param("project"), req.Title, req.Outline)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Created(c, chapter)
}

// Get 获取单个章节
func (h *ChapterHandler) Get(c *gin.Context) {
	chapter, err := h.chapters.Get(c.Request.Context(), c.Param("project"), c.Param("chapter"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if chapter == nil {
		dto.NotFound(c, "chapter not found")
		return
	}
	dto.Success(c, chapter)
}

// Update 字段级更新章节，缺省字段保持不变
func (h *ChapterHandler) Update(c *gin.Context) {
	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapter, err := h.chapters.Update(c.Request.Context(), c.Param("project"), c.Param("chapter"), repository.ChapterPatch{
		Title:   req.Title,
		Outline: req.Outline,
	})
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if chapter == nil {
		dto.NotFound(c, "chapter not found")
		return
	}
	dto.Success(c, chapter)
}

// Delete 删除章节及其小节，剩余章节重排为稠密序号
func (h *ChapterHandler) Delete(c *gin.Context) {
	deleted, err := h.chapters.Delete(c.Request.Context(), c.Param("project"), c.Param("chapter"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if !deleted {
		dto.NotFound(c, "chapter not found")
		return
	}
	dto.Success(c, dto.MessageResponse{Message: "chapter deleted"})
}
