package repository

import (
	"context"

	"novelcraft/internal/domain/entity"
)

// MemoryRepository 项目级向量记忆接口
// Search 在项目记忆不存在时返回空切片而非错误
type MemoryRepository interface {
	// Add 写入一条记忆，返回条目 ID
	Add(ctx context.Context, project, text string, tags entity.MemoryTags) (string, error)

	// Search 检索与 query 最相关的至多 k 条文本，按相关度降序
	Search(ctx context.Context, project, query string, k int) ([]string, error)

	// GetAll 返回项目的全部记忆条目
	GetAll(ctx context.Context, project string) ([]*entity.MemoryEntry, error)

	// DeleteOne 删除单条记忆，返回是否确有删除
	DeleteOne(ctx context.Context, project, id string) (bool, error)

	// DeleteAll 清空项目的全部记忆
	DeleteAll(ctx context.Context, project string) error
}
