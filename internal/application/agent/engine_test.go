package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	"novelcraft/internal/workflow/chain"
	wfmodel "novelcraft/internal/workflow/model"
)

// fakeChatModel 返回固定文本，流式模式按 chunks 逐段吐出
type fakeChatModel struct {
	content string
	chunks  []string
	err     error
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]*schema.Message, 0, len(f.chunks))
	for _, c := range f.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

type fakeFactory struct {
	m model.BaseChatModel
}

func (f *fakeFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	return f.m, nil
}

// fakeMemoryRepo 记录写入并返回预置的检索结果
type fakeMemoryRepo struct {
	mu      sync.Mutex
	added   []entity.MemoryEntry
	results []string
	err     error
}

func (f *fakeMemoryRepo) Add(_ context.Context, project, text string, tags entity.MemoryTags) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.added = append(f.added, entity.MemoryEntry{ID: fmt.Sprintf("m%d", len(f.added)+1), Text: text, Tags: tags})
	return fmt.Sprintf("m%d", len(f.added)), nil
}

func (f *fakeMemoryRepo) Search(_ context.Context, _, _ string, _ int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeMemoryRepo) GetAll(_ context.Context, _ string) ([]*entity.MemoryEntry, error) {
	return nil, nil
}

func (f *fakeMemoryRepo) DeleteOne(_ context.Context, _, _ string) (bool, error) { return false, nil }
func (f *fakeMemoryRepo) DeleteAll(_ context.Context, _ string) error            { return nil }

func (f *fakeMemoryRepo) snapshot() []entity.MemoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.MemoryEntry(nil), f.added...)
}

// fakeProjectRepo 仅记录大纲写回
type fakeProjectRepo struct {
	outlines map[string]string
}

func (f *fakeProjectRepo) Create(_ context.Context, _ *entity.Project) error    { return nil }
func (f *fakeProjectRepo) Get(_ context.Context, _ string) (*entity.Project, error) { return nil, nil }
func (f *fakeProjectRepo) List(_ context.Context) ([]*entity.Project, error)    { return nil, nil }
func (f *fakeProjectRepo) Delete(_ context.Context, _ string) (bool, error)     { return false, nil }

func (f *fakeProjectRepo) UpdateOutline(_ context.Context, name, outline string) error {
	if f.outlines == nil {
		f.outlines = make(map[string]string)
	}
	f.outlines[name] = outline
	return nil
}

type fakeChapterRepo struct {
	byOrder map[int]*entity.Chapter
	patches map[string]repository.ChapterPatch
}

func (f *fakeChapterRepo) Create(_ context.Context, _ string, _, _ string) (*entity.Chapter, error) {
	return nil, nil
}
func (f *fakeChapterRepo) Get(_ context.Context, _, _ string) (*entity.Chapter, error) {
	return nil, nil
}
func (f *fakeChapterRepo) GetByOrder(_ context.Context, _ string, order int) (*entity.Chapter, error) {
	return f.byOrder[order], nil
}
func (f *fakeChapterRepo) List(_ context.Context, _ string) ([]*entity.Chapter, error) {
	return nil, nil
}
func (f *fakeChapterRepo) Update(_ context.Context, _, chapterID string, patch repository.ChapterPatch) (*entity.Chapter, error) {
	if f.patches == nil {
		f.patches = make(map[string]repository.ChapterPatch)
	}
	f.patches[chapterID] = patch
	return f.byOrder[0], nil
}
func (f *fakeChapterRepo) Delete(_ context.Context, _, _ string) (bool, error) { return false, nil }

type fakeSectionRepo struct {
	byOrder map[int]*entity.Section
	patches map[string]repository.SectionPatch
}

func (f *fakeSectionRepo) Create(_ context.Context, _, _ string, _, _ string) (*entity.Section, error) {
	return nil, nil
}
func (f *fakeSectionRepo) Get(_ context.Context, _, _, _ string) (*entity.Section, error) {
	return nil, nil
}
func (f *fakeSectionRepo) GetByOrder(_ context.Context, _, _ string, order int) (*entity.Section, error) {
	return f.byOrder[order], nil
}
func (f *fakeSectionRepo) List(_ context.Context, _, _ string) ([]*entity.Section, error) {
	return nil, nil
}
func (f *fakeSectionRepo) Update(_ context.Context, _, _, sectionID string, patch repository.SectionPatch) (*entity.Section, error) {
	if f.patches == nil {
		f.patches = make(map[string]repository.SectionPatch)
	}
	f.patches[sectionID] = patch
	return nil, nil
}
func (f *fakeSectionRepo) Delete(_ context.Context, _, _, _ string) (bool, error) {
	return false, nil
}

type engineFixture struct {
	engine   *Engine
	memories *fakeMemoryRepo
	projects *fakeProjectRepo
	chapters *fakeChapterRepo
	sections *fakeSectionRepo
}

func newEngineFixture(m model.BaseChatModel) *engineFixture {
	factory := &fakeFactory{m: m}
	memories := &fakeMemoryRepo{}
	projects := &fakeProjectRepo{}
	chapters := &fakeChapterRepo{}
	sections := &fakeSectionRepo{}

	engine := NewEngine(
		chain.NewPlannerChain(factory),
		chain.NewWriterChain(factory),
		chain.NewReviewerChain(factory),
		NewContextAssembler(memories, time.Second),
		memories,
		projects,
		chapters,
		sections,
		30*time.Second,
	)
	return &engineFixture{engine: engine, memories: memories, projects: projects, chapters: chapters, sections: sections}
}

func TestPlanNovelUpdatesOutlineAndMemory(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "全书大纲内容"})
	st := &wfmodel.State{Topic: "修仙", Project: "demo", Granularity: wfmodel.GranularityNovel}

	if err := fx.engine.Plan(context.Background(), st); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if st.NovelOutline != "全书大纲内容" {
		t.Fatalf("novel outline = %q", st.NovelOutline)
	}
	if st.Draft != "" {
		t.Fatalf("novel planning must not produce a draft, got %q", st.Draft)
	}
	if st.RevisionNumber != 0 {
		t.Fatalf("revision number = %d, want 0", st.RevisionNumber)
	}
	if got := fx.projects.outlines["demo"]; got != "全书大纲内容" {
		t.Fatalf("project outline = %q", got)
	}

	added := fx.memories.snapshot()
	if len(added) != 1 {
		t.Fatalf("memory entries = %d, want 1", len(added))
	}
	if added[0].Tags.Type != "plan_novel" {
		t.Fatalf("memory tag type = %q", added[0].Tags.Type)
	}
}

func TestPlanChapterSetsStructure(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "章节结构"})
	fx.chapters.byOrder = map[int]*entity.Chapter{
		2: {ID: "ch2", Title: "第二章", Order: 2},
	}
	st := &wfmodel.State{
		Topic:        "悬疑",
		Project:      "demo",
		Granularity:  wfmodel.GranularityChapter,
		ChapterOrder: 2,
		NovelOutline: "已有总大纲",
	}

	if err := fx.engine.Plan(context.Background(), st); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if st.ChapterStructure != "章节结构" {
		t.Fatalf("chapter structure = %q", st.ChapterStructure)
	}
	if st.Draft != "" {
		t.Fatalf("chapter planning must not produce a draft")
	}

	patch, ok := fx.chapters.patches["ch2"]
	if !ok {
		t.Fatal("chapter outline was not written back")
	}
	if patch.Outline == nil || *patch.Outline != "章节结构" {
		t.Fatalf("chapter patch outline = %v", patch.Outline)
	}
	if patch.Title != nil {
		t.Fatal("planning must not touch the chapter title")
	}
}

func TestPlanSectionChainsIntoWrite(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "小节正文或大纲"})
	st := &wfmodel.State{
		Topic:        "科幻",
		Project:      "demo",
		Granularity:  wfmodel.GranularitySection,
		ChapterOrder: 1,
		SectionOrder: 1,
	}

	if err := fx.engine.Plan(context.Background(), st); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if st.SectionOutline == "" {
		t.Fatal("section outline not set")
	}
	if st.Draft == "" {
		t.Fatal("section planning must chain into writing")
	}
	if st.RevisionNumber != 1 {
		t.Fatalf("revision number = %d, want 1", st.RevisionNumber)
	}
}

func TestPlanFullMarksNestedLevels(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "一体化策划"})
	st := &wfmodel.State{Topic: "末世", Project: "demo", Granularity: wfmodel.GranularityFull}

	if err := fx.engine.Plan(context.Background(), st); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if st.NovelOutline != "一体化策划" {
		t.Fatalf("novel outline = %q", st.NovelOutline)
	}
	if !strings.Contains(st.ChapterStructure, "包含在总策划内容中") {
		t.Fatalf("chapter structure marker missing: %q", st.ChapterStructure)
	}
}

func TestWriteIncrementsRevision(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "正文草稿"})
	st := &wfmodel.State{
		Project:      "demo",
		Granularity:  wfmodel.GranularitySection,
		SectionOutline: "写作大纲",
		RevisionNumber: 1,
	}

	if err := fx.engine.Write(context.Background(), st); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if st.Draft != "正文草稿" {
		t.Fatalf("draft = %q", st.Draft)
	}
	if st.RevisionNumber != 2 {
		t.Fatalf("revision number = %d, want 2", st.RevisionNumber)
	}
}

func TestReviewSetsCritique(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "节奏太慢"})
	st := &wfmodel.State{Project: "demo", Draft: "草稿"}

	if err := fx.engine.Review(context.Background(), st); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if st.Critique != "节奏太慢" {
		t.Fatalf("critique = %q", st.Critique)
	}
}

func TestRunRejectsUnknownRole(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{content: "x"})
	if err := fx.engine.Run(context.Background(), wfmodel.Role("editor"), &wfmodel.State{}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		critique string
		revision int
		want     wfmodel.Decision
	}{
		{"first critique revises", "需要改进开头", 1, wfmodel.DecisionRevise},
		{"second critique revises", "对话生硬", 2, wfmodel.DecisionRevise},
		{"revision cap ends", "还是不行", 3, wfmodel.DecisionEnd},
		{"approval ends", "写得很好 APPROVE", 1, wfmodel.DecisionEnd},
		{"approval inside sentence ends", "整体 APPROVED 可以发布", 1, wfmodel.DecisionEnd},
		{"empty critique revises", "", 0, wfmodel.DecisionRevise},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.critique, tt.revision); got != tt.want {
				t.Fatalf("Decide(%q, %d) = %v, want %v", tt.critique, tt.revision, got, tt.want)
			}
		})
	}
}

func TestPlannerContextPrefersInlineOutline(t *testing.T) {
	memories := &fakeMemoryRepo{results: []string{"不该被用到"}}
	a := NewContextAssembler(memories, time.Second)

	st := &wfmodel.State{Project: "demo", Granularity: wfmodel.GranularityChapter, NovelOutline: "总大纲"}
	if got := a.PlannerContext(context.Background(), st); got != "总大纲" {
		t.Fatalf("context = %q, want inline outline", got)
	}
}

func TestPlannerContextFallsBackToMemory(t *testing.T) {
	memories := &fakeMemoryRepo{results: []string{"片段一", "片段二"}}
	a := NewContextAssembler(memories, time.Second)

	st := &wfmodel.State{Project: "demo", Granularity: wfmodel.GranularityChapter}
	if got := a.PlannerContext(context.Background(), st); got != "片段一\n\n片段二" {
		t.Fatalf("context = %q", got)
	}
}

func TestContextDegradesOnSearchError(t *testing.T) {
	memories := &fakeMemoryRepo{err: fmt.Errorf("vector store down")}
	a := NewContextAssembler(memories, time.Second)

	if got := a.WriterContext(context.Background(), "demo"); got != "" {
		t.Fatalf("context = %q, want empty on failure", got)
	}
}

func TestWriterContextJoinsWithNewline(t *testing.T) {
	memories := &fakeMemoryRepo{results: []string{"设定A", "设定B", "设定C"}}
	a := NewContextAssembler(memories, time.Second)

	if got := a.WriterContext(context.Background(), "demo"); got != "设定A\n设定B\n设定C" {
		t.Fatalf("context = %q", got)
	}
}
