package filestore

import (
	"context"
	"os"
	"sort"
	"strings"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	"novelcraft/pkg/logger"
	"novelcraft/pkg/metrics"
)

// SectionRepository 小节仓储的文件实现
type SectionRepository struct {
	store *Store
}

// NewSectionRepository 创建小节仓储
func NewSectionRepository(store *Store) *SectionRepository {
	return &SectionRepository{store: store}
}

// Create 创建小节，order 分配为该章节当前小节数 + 1
func (r *SectionRepository) Create(ctx context.Context, project, chapterID string, title, outline string) (*entity.Section, error) {
	ctx, span := tracer.Start(ctx, "filestore.SectionRepository.Create")
	defer span.End()

	lock := r.store.projectLock(project)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.list(ctx, project, chapterID)
	if err != nil {
		return nil, err
	}

	section := entity.NewSection(chapterID, title, outline, len(existing)+1)
	if err := writeJSON(r.store.sectionFile(project, chapterID, section.ID), section); err != nil {
		span.RecordError(err)
		metrics.OutlineWritesTotal.WithLabelValues("section", "error").Inc()
		return nil, err
	}
	metrics.OutlineWritesTotal.WithLabelValues("section", "success").Inc()
	return section, nil
}

// Get 根据 ID 获取小节，不存在返回 (nil, nil)
func (r *SectionRepository) Get(ctx context.Context, project, chapterID, sectionID string) (*entity.Section, error) {
	ctx, span := tracer.Start(ctx, "filestore.SectionRepository.Get")
	defer span.End()

	var section entity.Section
	found, err := readJSON(r.store.sectionFile(project, chapterID, sectionID), &section)
	if err != nil {
		logger.Warn(ctx, "skip corrupt section file", "project", project, "section_id", sectionID, "error", err.Error())
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return &section, nil
}

// GetByOrder 根据 order 获取小节，不存在返回 (nil, nil)
func (r *SectionRepository) GetByOrder(ctx context.Context, project, chapterID string, order int) (*entity.Section, error) {
	sections, err := r.List(ctx, project, chapterID)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if s.Order == order {
			return s, nil
		}
	}
	return nil, nil
}

// List 按 order 升序返回章节下全部小节，损坏的小节文件跳过
func (r *SectionRepository) List(ctx context.Context, project, chapterID string) ([]*entity.Section, error) {
	ctx, span := tracer.Start(ctx, "filestore.SectionRepository.List")
	defer span.End()

	return r.list(ctx, project, chapterID)
}

func (r *SectionRepository) list(ctx context.Context, project, chapterID string) ([]*entity.Section, error) {
	entries, err := os.ReadDir(r.store.sectionsDir(project, chapterID))
	if err != nil {
		if os.IsNotExist(err) {
			return []*entity.Section{}, nil
		}
		return nil, err
	}

	sections := make([]*entity.Section, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		var section entity.Section
		found, err := readJSON(r.store.sectionFile(project, chapterID, id), &section)
		if err != nil {
			logger.Warn(ctx, "skip corrupt section file", "project", project, "section_id", id, "error", err.Error())
			continue
		}
		if found {
			sections = append(sections, &section)
		}
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
	return sections, nil
}

// Update 按补丁更新小节字段，nil 字段不修改
func (r *SectionRepository) Update(ctx context.Context, project, chapterID, sectionID string, patch repository.SectionPatch) (*entity.Section, error) {
	ctx, span := tracer.Start(ctx, "filestore.SectionRepository.Update")
	defer span.End()

	lock := r.store.projectLock(project)
	lock.Lock()
	defer lock.Unlock()

	section, err := r.Get(ctx, project, chapterID, sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, nil
	}

	if patch.Title != nil {
		section.Title = *patch.Title
	}
	if patch.Outline != nil {
		section.Outline = *patch.Outline
	}
	if patch.Content != nil {
		section.Content = *patch.Content
	}

	if err := writeJSON(r.store.sectionFile(project, chapterID, sectionID), section); err != nil {
		span.RecordError(err)
		metrics.OutlineWritesTotal.WithLabelValues("section", "error").Inc()
		return nil, err
	}
	metrics.OutlineWritesTotal.WithLabelValues("section", "success").Inc()
	return section, nil
}

// Delete 删除小节并重排剩余小节，删除与重排在项目锁内原子执行
func (r *SectionRepository) Delete(ctx context.Context, project, chapterID, sectionID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "filestore.SectionRepository.Delete")
	defer span.End()

	lock := r.store.projectLock(project)
	lock.Lock()
	defer lock.Unlock()

	path := r.store.sectionFile(project, chapterID, sectionID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		span.RecordError(err)
		return false, err
	}

	if err := r.reorder(ctx, project, chapterID); err != nil {
		span.RecordError(err)
		return true, err
	}
	return true, nil
}

// reorder 重排小节 order 为稠密的 1..N，仅写回发生变化的小节
func (r *SectionRepository) reorder(ctx context.Context, project, chapterID string) error {
	sections, err := r.list(ctx, project, chapterID)
	if err != nil {
		return err
	}
	for i, section := range sections {
		want := i + 1
		if section.Order == want {
			continue
		}
		section.Order = want
		if err := writeJSON(r.store.sectionFile(project, chapterID, section.ID), section); err != nil {
			return err
		}
	}
	return nil
}
