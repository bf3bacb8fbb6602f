// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"novelcraft/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
// 所有 Get 操作在实体不存在时返回 (nil, nil)，由调用方显式处理未找到
type ProjectRepository interface {
	// Create 创建项目，同名项目已存在时返回冲突错误
	Create(ctx context.Context, project *entity.Project) error

	// Get 根据名称获取项目
	Get(ctx context.Context, name string) (*entity.Project, error)

	// List 获取全部项目
	List(ctx context.Context) ([]*entity.Project, error)

	// UpdateOutline 更新项目的总大纲
	UpdateOutline(ctx context.Context, name string, outline string) error

	// Delete 删除项目及其整棵子树，返回是否确有删除
	Delete(ctx context.Context, name string) (bool, error)
}
