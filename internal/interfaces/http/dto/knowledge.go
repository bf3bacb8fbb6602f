package dto

import (
	"novelcraft/internal/domain/entity"
)

// MemoryItemResponse 知识库条目响应
type MemoryItemResponse struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata entity.MemoryTags `json:"metadata"`
}

// ToMemoryItems 将记忆条目转换为响应格式
func ToMemoryItems(entries []*entity.MemoryEntry) []*MemoryItemResponse {
	items := make([]*MemoryItemResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, &MemoryItemResponse{
			ID:       e.ID,
			Content:  e.Text,
			Metadata: e.Tags,
		})
	}
	return items
}
