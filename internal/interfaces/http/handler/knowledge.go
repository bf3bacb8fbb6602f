package handler

import (
	"github.com/gin-gonic/gin"

	"novelcraft/internal/domain/repository"
	"novelcraft/internal/interfaces/http/dto"
)

// KnowledgeHandler 项目知识库（向量记忆）处理器
type KnowledgeHandler struct {
	memories repository.MemoryRepository
}

// NewKnowledgeHandler 创建知识库处理器
func NewKnowledgeHandler(memories repository.MemoryRepository) *KnowledgeHandler {
	return &KnowledgeHandler{memories: memories}
}

// List 返回项目的全部记忆条目
func (h *KnowledgeHandler) List(c *gin.Context) {
	entries, err := h.memories.GetAll(c.Request.Context(), c.Param("project"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.ToMemoryItems(entries))
}

// DeleteOne 删除单条记忆
func (h *KnowledgeHandler) DeleteOne(c *gin.Context) {
	deleted, err := h.memories.DeleteOne(c.Request.Context(), c.Param("project"), c.Param("memory"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	if !deleted {
		dto.NotFound(c, "memory not found")
		return
	}
	dto.Success(c, dto.MessageResponse{Message: "memory deleted"})
}

// Clear 清空项目知识库
func (h *KnowledgeHandler) Clear(c *gin.Context) {
	if err := h.memories.DeleteAll(c.Request.Context(), c.Param("project")); err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.MessageResponse{Message: "knowledge base cleared"})
}
