package handler

import (
	"github.com/gin-gonic/gin"

	"novelcraft/internal/domain/repository"
	"novelcraft/internal/interfaces/http/dto"
)

// SectionHandler 小节处理器
type SectionHandler struct {
	sections repository.SectionRepository
}

// NewSectionHandler 创建小节处理器
func NewSectionHandler(sections repository.SectionRepository) *SectionHandler {
	return &SectionHandler{sections: sections}
}

// List 按序号升序返回章节下的全部小节
func (h *SectionHandler) List(c *gin.Context) {
	sections, err := h.sections.List(c.Request.Context(), c.Param("project"), c.Param("chapter"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, sections)
}

// Create 创建小节，序号由存储层按当前数量分配
func (h *SectionHandler) Create(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	section, err := h.sections.Create(c.Request.Context(), c.Param("project"), c.Param("chapter"), req.Title, req.Outline)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Created(c, section)
}

// Get 获取单个小节
func (h *SectionHandler) Get(c *gin.Context) {
	section, err := h.sections.Get(c.Request.Context(), c.Param("project"), c.Param("chapter"), c.Param("section"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if section == nil {
		dto.NotFound(c, "section not found")
		return
	}
	dto.Success(c, section)
}

// Update 字段级更新小节，缺省字段保持不变
func (h *SectionHandler) Update(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	section, err := h.sections.Update(c.Request.Context(), c.Param("project"), c.Param("chapter"), c.Param("section"), repository.SectionPatch{
		Title:   req.Title,
		Outline: req.Outline,
		Content: req.Content,
	})
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if section == nil {
		dto.NotFound(c, "section not found")
		return
	}
	dto.Success(c, section)
}

// Delete 删除小节，剩余小节重排为稠密序号
func (h *SectionHandler) Delete(c *gin.Context) {
	deleted, err := h.sections.Delete(c.Request.Context(), c.Param("project"), c.Param("chapter"), c.Param("section"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if !deleted {
		dto.NotFound(c, "section not found")
		return
	}
	dto.Success(c, dto.MessageResponse{Message: "section deleted"})
}
