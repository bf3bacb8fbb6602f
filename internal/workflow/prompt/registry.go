// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptPlannerNovelV1   PromptID = "planner_novel_v1"
	PromptPlannerChapterV1 PromptID = "planner_chapter_v1"
	PromptPlannerSectionV1 PromptID = "planner_section_v1"
	PromptWriterV1         PromptID = "writer_v1"
	PromptReviewerV1       PromptID = "reviewer_v1"
	PromptTitlesChapterV1  PromptID = "titles_chapter_v1"
	PromptTitlesSectionV1  PromptID = "titles_section_v1"
)

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptPlannerNovelV1:
		return "templates/planner_novel_v1.system.txt", "templates/planner_novel_v1.user.txt", nil
	case PromptPlannerChapterV1:
		return "templates/planner_chapter_v1.system.txt", "templates/planner_chapter_v1.user.txt", nil
	case PromptPlannerSectionV1:
		return "templates/planner_section_v1.system.txt", "templates/planner_section_v1.user.txt", nil
	case PromptWriterV1:
		return "templates/writer_v1.system.txt", "templates/writer_v1.user.txt", nil
	case PromptReviewerV1:
		return "templates/reviewer_v1.system.txt", "templates/reviewer_v1.user.txt", nil
	case PromptTitlesChapterV1:
		return "templates/titles_chapter_v1.system.txt", "templates/titles_chapter_v1.user.txt", nil
	case PromptTitlesSectionV1:
		return "templates/titles_section_v1.system.txt", "templates/titles_section_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
