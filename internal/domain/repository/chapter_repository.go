package repository

import (
	"context"

	"novelcraft/internal/domain/entity"
)

// ChapterPatch 章节字段级更新，nil 字段表示不修改
type ChapterPatch struct {
	Title   *string
	Outline *string
}

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节，order 分配为当前章节数 + 1
	Create(ctx context.Context, project string, title, outline string) (*entity.Chapter, error)

	// Get 根据 ID 获取章节
	Get(ctx context.Context, project, chapterID string) (*entity.Chapter, error)

	// GetByOrder 根据 order 获取章节
	GetByOrder(ctx context.Context, project string, order int) (*entity.Chapter, error)

	// List 按 order 升序返回全部章节
	List(ctx context.Context, project string) ([]*entity.Chapter, error)

	// Update 按补丁更新章节字段
	Update(ctx context.Context, project, chapterID string, patch ChapterPatch) (*entity.Chapter, error)

	// Delete 删除章节及其小节并重排剩余章节，返回是否确有删除
	Delete(ctx context.Context, project, chapterID string) (bool, error)
}
