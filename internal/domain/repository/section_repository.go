package repository

import (
	"context"

	"novelcraft/internal/domain/entity"
)

// SectionPatch 小节字段级更新，nil 字段表示不修改
type SectionPatch struct {
	Title   *string
	Outline *string
	Content *string
}

// SectionRepository 小节仓储接口
type SectionRepository interface {
	// Create 创建小节，order 分配为该章节当前小节数 + 1
	Create(ctx context.Context, project, chapterID string, title, outline string) (*entity.Section, error)

	// Get 根据 ID 获取小节
	Get(ctx context.Context, project, chapterID, sectionID string) (*entity.Section, error)

	// GetByOrder 根据 order 获取小节
	GetByOrder(ctx context.Context, project, chapterID string, order int) (*entity.Section, error)

	// List 按 order 升序返回章节下全部小节
	List(ctx context.Context, project, chapterID string) ([]*entity.Section, error)

	// Update 按补丁更新小节字段
	Update(ctx context.Context, project, chapterID, sectionID string, patch SectionPatch) (*entity.Section, error)

	// Delete 删除小节并重排剩余小节，返回是否确有删除
	Delete(ctx context.Context, project, chapterID, sectionID string) (bool, error)
}
