package filestore

import (
	"context"
	"os"
	"sort"

	"novelcraft/internal/domain/entity"
	apperrors "novelcraft/pkg/errors"
	"novelcraft/pkg/logger"
	"novelcraft/pkg/metrics"
)

// ProjectRepository 项目仓储的文件实现
type ProjectRepository struct {
	store *Store
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(store *Store) *ProjectRepository {
	return &ProjectRepository{store: store}
}

// Create 创建项目，项目目录已存在时返回冲突错误
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "filestore.ProjectRepository.Create")
	defer span.End()

	lock := r.store.projectLock(project.Name)
	lock.Lock()
	defer lock.Unlock()

	if _, err := os.Stat(r.store.projectDir(project.Name)); err == nil {
		return apperrors.ErrProjectExists
	}

	if err := writeJSON(r.store.projectFile(project.Name), project); err != nil {
		span.RecordError(err)
		metrics.OutlineWritesTotal.WithLabelValues("project", "error").Inc()
		return err
	}
	metrics.OutlineWritesTotal.WithLabelValues("project", "success").Inc()
	return nil
}

// Get 根据名称获取项目，不存在返回 (nil, nil)
func (r *ProjectRepository) Get(ctx context.Context, name string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "filestore.ProjectRepository.Get")
	defer span.End()

	var project entity.Project
	found, err := readJSON(r.store.projectFile(name), &project)
	if err != nil {
		// 损坏的项目文件按未找到处理
		logger.Warn(ctx, "skip corrupt project file", "project", name, "error", err.Error())
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return &project, nil
}

// List 获取全部项目，按创建时间升序
func (r *ProjectRepository) List(ctx context.Context) ([]*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "filestore.ProjectRepository.List")
	defer span.End()

	entries, err := os.ReadDir(r.store.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []*entity.Project{}, nil
		}
		span.RecordError(err)
		return nil, err
	}

	projects := make([]*entity.Project, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := r.Get(ctx, e.Name())
		if err != nil {
			return nil, err
		}
		if p != nil {
			projects = append(projects, p)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

// UpdateOutline 更新项目总大纲
func (r *ProjectRepository) UpdateOutline(ctx context.Context, name string, outline string) error {
	ctx, span := tracer.Start(ctx, "filestore.ProjectRepository.UpdateOutline")
	defer span.End()

	lock := r.store.projectLock(name)
	lock.Lock()
	defer lock.Unlock()

	project, err := r.Get(ctx, name)
	if err != nil {
		return err
	}
	if project == nil {
		return apperrors.ErrProjectNotFound
	}

	project.NovelOutline = outline
	if err := writeJSON(r.store.projectFile(name), project); err != nil {
		span.RecordError(err)
		metrics.OutlineWritesTotal.WithLabelValues("project", "error").Inc()
		return err
	}
	metrics.OutlineWritesTotal.WithLabelValues("project", "success").Inc()
	return nil
}

// Delete 删除项目整棵子树，返回是否确有删除
func (r *ProjectRepository) Delete(ctx context.Context, name string) (bool, error) {
	ctx, span := tracer.Start(ctx, "filestore.ProjectRepository.Delete")
	defer span.End()

	lock := r.store.projectLock(name)
	lock.Lock()
	defer lock.Unlock()

	dir := r.store.projectDir(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		span.RecordError(err)
		return false, err
	}
	r.store.releaseLock(name)
	logger.Info(ctx, "project deleted", "project", name)
	return true, nil
}
