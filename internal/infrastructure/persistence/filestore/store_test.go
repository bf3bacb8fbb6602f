package filestore

import (
	"context"
	"os"
	"sync"
	"testing"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	apperrors "novelcraft/pkg/errors"
)

func newTestStore(t *testing.T) (*Store, *ProjectRepository, *ChapterRepository, *SectionRepository) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, NewProjectRepository(store), NewChapterRepository(store), NewSectionRepository(store)
}

func mustCreateProject(t *testing.T, repo *ProjectRepository, name string) *entity.Project {
	t.Helper()
	p := entity.NewProject(name, "")
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

// TestProjectCreateDuplicate 重复创建同名项目应返回冲突错误
func TestProjectCreateDuplicate(t *testing.T) {
	_, projects, _, _ := newTestStore(t)

	mustCreateProject(t, projects, "Test")
	err := projects.Create(context.Background(), entity.NewProject("Test", ""))
	if err != apperrors.ErrProjectExists {
		t.Fatalf("expected ErrProjectExists, got %v", err)
	}
}

// TestProjectGetMissing 不存在的项目返回 (nil, nil)
func TestProjectGetMissing(t *testing.T) {
	_, projects, _, _ := newTestStore(t)

	p, err := projects.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil project, got %+v", p)
	}
}

// TestChapterOrderAssignment 创建章节的 order 总是当前数量 + 1
func TestChapterOrderAssignment(t *testing.T) {
	_, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	for i := 1; i <= 5; i++ {
		c, err := chapters.Create(ctx, "Test", "chapter", "")
		if err != nil {
			t.Fatalf("create chapter %d: %v", i, err)
		}
		if c.Order != i {
			t.Fatalf("chapter %d: expected order %d, got %d", i, i, c.Order)
		}
	}
}

// TestChapterDeleteReorders 删除任意章节后剩余 order 必须是稠密的 1..N 且保持相对顺序
func TestChapterDeleteReorders(t *testing.T) {
	_, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		c, err := chapters.Create(ctx, "Test", "chapter", "")
		if err != nil {
			t.Fatalf("create chapter: %v", err)
		}
		ids = append(ids, c.ID)
	}

	// 删除第 2 和第 4 章
	for _, id := range []string{ids[1], ids[3]} {
		deleted, err := chapters.Delete(ctx, "Test", id)
		if err != nil {
			t.Fatalf("delete chapter %s: %v", id, err)
		}
		if !deleted {
			t.Fatalf("chapter %s not deleted", id)
		}
	}

	remaining, err := chapters.List(ctx, "Test")
	if err != nil {
		t.Fatalf("list chapters: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(remaining))
	}
	wantIDs := []string{ids[0], ids[2], ids[4]}
	for i, c := range remaining {
		if c.Order != i+1 {
			t.Fatalf("chapter %d: expected order %d, got %d", i, i+1, c.Order)
		}
		if c.ID != wantIDs[i] {
			t.Fatalf("chapter %d: relative order broken, expected %s got %s", i, wantIDs[i], c.ID)
		}
	}
}

// TestChapterPatchSentinel 只更新 title 时不得覆盖已有 outline
func TestChapterPatchSentinel(t *testing.T) {
	_, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	c, err := chapters.Create(ctx, "Test", "old title", "existing outline")
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	newTitle := "new title"
	updated, err := chapters.Update(ctx, "Test", c.ID, repository.ChapterPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("update chapter: %v", err)
	}
	if updated.Title != "new title" {
		t.Fatalf("title not updated: %s", updated.Title)
	}
	if updated.Outline != "existing outline" {
		t.Fatalf("outline clobbered: %q", updated.Outline)
	}

	// 空字符串与未设置是不同的状态
	empty := ""
	updated, err = chapters.Update(ctx, "Test", c.ID, repository.ChapterPatch{Outline: &empty})
	if err != nil {
		t.Fatalf("update chapter: %v", err)
	}
	if updated.Outline != "" {
		t.Fatalf("expected outline cleared, got %q", updated.Outline)
	}
	if updated.Title != "new title" {
		t.Fatalf("title clobbered: %q", updated.Title)
	}
}

// TestSectionLifecycle 小节创建、按 order 查询、删除后重排
func TestSectionLifecycle(t *testing.T) {
	_, projects, chapters, sections := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	c, err := chapters.Create(ctx, "Test", "chapter", "")
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	var secIDs []string
	for i := 1; i <= 3; i++ {
		s, err := sections.Create(ctx, "Test", c.ID, "section", "")
		if err != nil {
			t.Fatalf("create section: %v", err)
		}
		if s.Order != i {
			t.Fatalf("expected order %d, got %d", i, s.Order)
		}
		if s.ChapterID != c.ID {
			t.Fatalf("section not scoped to chapter: %s", s.ChapterID)
		}
		secIDs = append(secIDs, s.ID)
	}

	byOrder, err := sections.GetByOrder(ctx, "Test", c.ID, 2)
	if err != nil {
		t.Fatalf("get by order: %v", err)
	}
	if byOrder == nil || byOrder.ID != secIDs[1] {
		t.Fatalf("get by order returned wrong section: %+v", byOrder)
	}

	deleted, err := sections.Delete(ctx, "Test", c.ID, secIDs[0])
	if err != nil || !deleted {
		t.Fatalf("delete section: deleted=%v err=%v", deleted, err)
	}

	remaining, err := sections.List(ctx, "Test", c.ID)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(remaining))
	}
	for i, s := range remaining {
		if s.Order != i+1 {
			t.Fatalf("section %d: expected order %d, got %d", i, i+1, s.Order)
		}
	}
}

// TestCorruptChapterSkipped 单个损坏的章节文件不得导致整个列表失败
func TestCorruptChapterSkipped(t *testing.T) {
	store, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	good, err := chapters.Create(ctx, "Test", "good", "")
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	bad, err := chapters.Create(ctx, "Test", "bad", "")
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	if err := os.WriteFile(store.chapterFile("Test", bad.ID), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	list, err := chapters.List(ctx, "Test")
	if err != nil {
		t.Fatalf("list with corrupt entry failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != good.ID {
		t.Fatalf("expected only good chapter, got %d entries", len(list))
	}

	// 读路径上的损坏按未找到处理
	got, err := chapters.Get(ctx, "Test", bad.ID)
	if err != nil {
		t.Fatalf("get corrupt chapter errored: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for corrupt chapter, got %+v", got)
	}
}

// TestConcurrentDeletes 并发删除兄弟章节不得产生非稠密或重复的 order
func TestConcurrentDeletes(t *testing.T) {
	_, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	const total = 10
	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		c, err := chapters.Create(ctx, "Test", "chapter", "")
		if err != nil {
			t.Fatalf("create chapter: %v", err)
		}
		ids = append(ids, c.ID)
	}

	victims := []string{ids[1], ids[3], ids[5], ids[7]}
	var wg sync.WaitGroup
	for _, id := range victims {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := chapters.Delete(ctx, "Test", id); err != nil {
				t.Errorf("delete %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	remaining, err := chapters.List(ctx, "Test")
	if err != nil {
		t.Fatalf("list chapters: %v", err)
	}
	if len(remaining) != total-len(victims) {
		t.Fatalf("expected %d chapters, got %d", total-len(victims), len(remaining))
	}
	seen := make(map[int]bool)
	for i, c := range remaining {
		if c.Order != i+1 {
			t.Fatalf("non-dense ordering at index %d: %d", i, c.Order)
		}
		if seen[c.Order] {
			t.Fatalf("duplicate order %d", c.Order)
		}
		seen[c.Order] = true
	}
}

// TestEndToEndChapterScenario 创建 Intro/Rising 两章并删除 Intro 后，
// Rising 成为唯一章节且 order 为 1
func TestEndToEndChapterScenario(t *testing.T) {
	_, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	intro, err := chapters.Create(ctx, "Test", "Intro", "")
	if err != nil {
		t.Fatalf("create Intro: %v", err)
	}
	if intro.Order != 1 {
		t.Fatalf("Intro: expected order 1, got %d", intro.Order)
	}

	rising, err := chapters.Create(ctx, "Test", "Rising", "")
	if err != nil {
		t.Fatalf("create Rising: %v", err)
	}
	if rising.Order != 2 {
		t.Fatalf("Rising: expected order 2, got %d", rising.Order)
	}

	if _, err := chapters.Delete(ctx, "Test", intro.ID); err != nil {
		t.Fatalf("delete Intro: %v", err)
	}

	list, err := chapters.List(ctx, "Test")
	if err != nil {
		t.Fatalf("list chapters: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(list))
	}
	if list[0].Title != "Rising" || list[0].Order != 1 {
		t.Fatalf("expected Rising with order 1, got %s order %d", list[0].Title, list[0].Order)
	}
}

// TestProjectDeleteRemovesSubtree 删除项目后其章节不可再访问
func TestProjectDeleteRemovesSubtree(t *testing.T) {
	_, projects, chapters, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateProject(t, projects, "Test")

	c, err := chapters.Create(ctx, "Test", "chapter", "")
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	deleted, err := projects.Delete(ctx, "Test")
	if err != nil || !deleted {
		t.Fatalf("delete project: deleted=%v err=%v", deleted, err)
	}

	got, err := chapters.Get(ctx, "Test", c.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected chapter gone, got %+v", got)
	}

	deleted, err = projects.Delete(ctx, "Test")
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if deleted {
		t.Fatal("second delete reported true")
	}
}
