package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	apperrors "novelcraft/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProjectRepo struct {
	projects map[string]*entity.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*entity.Project)}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *entity.Project) error {
	if _, ok := f.projects[p.Name]; ok {
		return apperrors.ErrProjectExists
	}
	f.projects[p.Name] = p
	return nil
}

func (f *fakeProjectRepo) Get(_ context.Context, name string) (*entity.Project, error) {
	return f.projects[name], nil
}

func (f *fakeProjectRepo) List(_ context.Context) ([]*entity.Project, error) {
	out := make([]*entity.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectRepo) UpdateOutline(_ context.Context, name, outline string) error {
	if p, ok := f.projects[name]; ok {
		p.NovelOutline = outline
	}
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, name string) (bool, error) {
	if _, ok := f.projects[name]; !ok {
		return false, nil
	}
	delete(f.projects, name)
	return true, nil
}

type fakeMemoryRepo struct {
	purged []string
}

func (f *fakeMemoryRepo) Add(_ context.Context, _, _ string, _ entity.MemoryTags) (string, error) {
	return "", nil
}
func (f *fakeMemoryRepo) Search(_ context.Context, _, _ string, _ int) ([]string, error) {
	return nil, nil
}
func (f *fakeMemoryRepo) GetAll(_ context.Context, _ string) ([]*entity.MemoryEntry, error) {
	return nil, nil
}
func (f *fakeMemoryRepo) DeleteOne(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}
func (f *fakeMemoryRepo) DeleteAll(_ context.Context, project string) error {
	f.purged = append(f.purged, project)
	return nil
}

type fakeChapterRepo struct {
	chapters map[string]*entity.Chapter
	patches  map[string]repository.ChapterPatch
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{
		chapters: make(map[string]*entity.Chapter),
		patches:  make(map[string]repository.ChapterPatch),
	}
}

func (f *fakeChapterRepo) Create(_ context.Context, _ string, title, outline string) (*entity.Chapter, error) {
	ch := entity.NewChapter(title, outline, len(f.chapters)+1)
	f.chapters[ch.ID] = ch
	return ch, nil
}

func (f *fakeChapterRepo) Get(_ context.Context, _, chapterID string) (*entity.Chapter, error) {
	return f.chapters[chapterID], nil
}

func (f *fakeChapterRepo) GetByOrder(_ context.Context, _ string, order int) (*entity.Chapter, error) {
	for _, ch := range f.chapters {
		if ch.Order == order {
			return ch, nil
		}
	}
	return nil, nil
}

func (f *fakeChapterRepo) List(_ context.Context, _ string) ([]*entity.Chapter, error) {
	out := make([]*entity.Chapter, 0, len(f.chapters))
	for _, ch := range f.chapters {
		out = append(out, ch)
	}
	return out, nil
}

func (f *fakeChapterRepo) Update(_ context.Context, _, chapterID string, patch repository.ChapterPatch) (*entity.Chapter, error) {
	ch, ok := f.chapters[chapterID]
	if !ok {
		return nil, nil
	}
	f.patches[chapterID] = patch
	if patch.Title != nil {
		ch.Title = *patch.Title
	}
	if patch.Outline != nil {
		ch.Outline = *patch.Outline
	}
	return ch, nil
}

func (f *fakeChapterRepo) Delete(_ context.Context, _, chapterID string) (bool, error) {
	if _, ok := f.chapters[chapterID]; !ok {
		return false, nil
	}
	delete(f.chapters, chapterID)
	return true, nil
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newProjectRouter(projects repository.ProjectRepository, memories repository.MemoryRepository) *gin.Engine {
	h := NewProjectHandler(projects, memories, nil)
	r := gin.New()
	r.GET("/api/projects", h.List)
	r.POST("/api/projects", h.Create)
	r.GET("/api/projects/:project", h.Get)
	r.DELETE("/api/projects/:project", h.Delete)
	return r
}

func TestProjectCreateAndGet(t *testing.T) {
	r := newProjectRouter(newFakeProjectRepo(), &fakeMemoryRepo{})

	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "my-novel", "description": "test"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects/my-novel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
}

func TestProjectCreateRejectsBadNames(t *testing.T) {
	r := newProjectRouter(newFakeProjectRepo(), &fakeMemoryRepo{})

	for _, name := range []string{"../escape", "名字", "a/b", "   "} {
		w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": name})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("name %q: status = %d, want 400", name, w.Code)
		}
	}
}

func TestProjectCreateDuplicateIs400(t *testing.T) {
	r := newProjectRouter(newFakeProjectRepo(), &fakeMemoryRepo{})

	doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "dup"})
	w := doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "dup"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", w.Code)
	}
}

func TestProjectDeletePurgesMemories(t *testing.T) {
	projects := newFakeProjectRepo()
	memories := &fakeMemoryRepo{}
	r := newProjectRouter(projects, memories)

	doJSON(t, r, http.MethodPost, "/api/projects", gin.H{"name": "doomed"})
	w := doJSON(t, r, http.MethodDelete, "/api/projects/doomed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if len(memories.purged) != 1 || memories.purged[0] != "doomed" {
		t.Fatalf("memories purged = %v", memories.purged)
	}
}

func TestProjectGetMissingIs404(t *testing.T) {
	r := newProjectRouter(newFakeProjectRepo(), &fakeMemoryRepo{})

	w := doJSON(t, r, http.MethodGet, "/api/projects/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func newChapterRouter(chapters repository.ChapterRepository) *gin.Engine {
	h := NewChapterHandler(chapters)
	r := gin.New()
	r.POST("/api/projects/:project/chapters", h.Create)
	r.GET("/api/projects/:project/chapters/:chapter", h.Get)
	r.PUT("/api/projects/:project/chapters/:chapter", h.Update)
	r.DELETE("/api/projects/:project/chapters/:chapter", h.Delete)
	return r
}

func TestChapterUpdatePatchSemantics(t *testing.T) {
	repo := newFakeChapterRepo()
	r := newChapterRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/api/projects/p/chapters", gin.H{"title": "开端", "outline": "第一章大纲"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	var created struct {
		Data entity.Chapter `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	// 只更新标题，大纲字段不应出现在补丁中
	w = doJSON(t, r, http.MethodPut, "/api/projects/p/chapters/"+created.Data.ID, gin.H{"title": "新标题"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d", w.Code)
	}

	patch := repo.patches[created.Data.ID]
	if patch.Title == nil || *patch.Title != "新标题" {
		t.Fatalf("patch title = %v", patch.Title)
	}
	if patch.Outline != nil {
		t.Fatal("outline must not be patched when omitted")
	}
	if repo.chapters[created.Data.ID].Outline != "第一章大纲" {
		t.Fatal("outline lost on title-only update")
	}
}

func TestChapterMissingIs404(t *testing.T) {
	r := newChapterRouter(newFakeChapterRepo())

	w := doJSON(t, r, http.MethodGet, "/api/projects/p/chapters/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get status = %d, want 404", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/projects/p/chapters/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete status = %d, want 404", w.Code)
	}
}
