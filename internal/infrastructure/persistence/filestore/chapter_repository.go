package filestore

import (
	"context"
	"os"
	"sort"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	"novelcraft/pkg/logger"
	"novelcraft/pkg/metrics"
)

// ChapterRepository 章节仓储的文件实现
type ChapterRepository struct {
	store *Store
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(store *Store) *ChapterRepository {
	return &ChapterRepository{store: store}
}

// Create 创建章节，order 分配为当前章节数 + 1
func (r *ChapterRepository) Create(ctx context.Context, project string, title, outline string) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "filestore.ChapterRepository.Create")
	defer span.End()

	lock := r.store.projectLock(project)
	lock.Lock()
	defer lock.Unlock()

	existing, err := r.list(ctx, project)
	if err != nil {
		return nil, err
	}

	chapter := entity.NewChapter(title, outline, len(existing)+1)
	if err := writeJSON(r.store.chapterFile(project, chapter.ID), chapter); err != nil {
		span.RecordError(err)
		metrics.OutlineWritesTotal.WithLabelValues("chapter", "error").Inc()
		return nil, err
	}
	metrics.OutlineWritesTotal.WithLabelValues("chapter", "success").Inc()
	return chapter, nil
}

// Get 根据 ID 获取章节，不存在返回 (nil, nil)
func (r *ChapterRepository) Get(ctx context.Context, project, chapterID string) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "filestore.ChapterRepository.Get")
	defer span.End()

	var chapter entity.Chapter
	found, err := readJSON(r.store.chapterFile(project, chapterID), &chapter)
	if err != nil {
		logger.Warn(ctx, "skip corrupt chapter file", "project", project, "chapter_id", chapterID, "error", err.Error())
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return &chapter, nil
}

// GetByOrder 根据 order 获取章节，不存在返回 (nil, nil)
func (r *ChapterRepository) GetByOrder(ctx context.Context, project string, order int) (*entity.Chapter, error) {
	chapters, err := r.List(ctx, project)
	if err != nil {
		return nil, err
	}
	for _, c := range chapters {
		if c.Order == order {
			return c, nil
		}
	}
	return nil, nil
}

// List 按 order 升序返回全部章节，损坏的章节文件跳过
func (r *ChapterRepository) List(ctx context.Context, project string) ([]*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "filestore.ChapterRepository.List")
	defer span.End()

	return r.list(ctx, project)
}

// list 无追踪版本，供已持有项目锁的调用方复用
func (r *ChapterRepository) list(ctx context.Context, project string) ([]*entity.Chapter, error) {
	entries, err := os.ReadDir(r.store.chaptersDir(project))
	if err != nil {
		if os.IsNotExist(err) {
			return []*entity.Chapter{}, nil
		}
		return nil, err
	}

	chapters := make([]*entity.Chapter, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		var chapter entity.Chapter
		found, err := readJSON(r.store.chapterFile(project, e.Name()), &chapter)
		if err != nil {
			logger.Warn(ctx, "skip corrupt chapter file", "project", project, "chapter_id", e.Name(), "error", err.Error())
			continue
		}
		if found {
			chapters = append(chapters, &chapter)
		}
	}
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].Order < chapters[j].Order
	})
	return chapters, nil
}

// Update 按补丁更新章节字段，nil 字段不修改
func (r *ChapterRepository) Update(ctx context.Context, project, chapterID string, patch repository.ChapterPatch) (*entity.Chapter, error) {
	ctx, span := tracer.Start(ctx, "filestore.ChapterRepository.Update")
	defer span.End()

	lock := r.store.projectLock(project)
	lock.Lock()
	defer lock.Unlock()

	chapter, err := r.Get(ctx, project, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, nil
	}

	if patch.Title != nil {
		chapter.Title = *patch.Title
	}
	if patch.Outline != nil {
		chapter.Outline = *patch.Outline
	}

	if err := writeJSON(r.store.chapterFile(project, chapterID), chapter); err != nil {
		span.RecordError(err)
		metrics.OutlineWritesTotal.WithLabelValues("chapter", "error").Inc()
		return nil, err
	}
	metrics.OutlineWritesTotal.WithLabelValues("chapter", "success").Inc()
	return chapter, nil
}

// Delete 删除章节及其小节并重排剩余章节
// 删除与重排在项目锁内作为一个原子单元执行
func (r *ChapterRepository) Delete(ctx context.Context, project, chapterID string) (bool, error) {
	ctx, span := tracer.Start(ctx, "filestore.ChapterRepository.Delete")
	defer span.End()

	lock := r.store.projectLock(project)
	lock.Lock()
	defer lock.Unlock()

	dir := r.store.chapterDir(project, chapterID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		span.RecordError(err)
		return false, err
	}

	if err := r.reorder(ctx, project); err != nil {
		span.RecordError(err)
		return true, err
	}
	return true, nil
}

// reorder 重排章节 order 为稠密的 1..N，仅写回发生变化的章节
func (r *ChapterRepository) reorder(ctx context.Context, project string) error {
	chapters, err := r.list(ctx, project)
	if err != nil {
		return err
	}
	for i, chapter := range chapters {
		want := i + 1
		if chapter.Order == want {
			continue
		}
		chapter.Order = want
		if err := writeJSON(r.store.chapterFile(project, chapter.ID), chapter); err != nil {
			return err
		}
	}
	return nil
}
