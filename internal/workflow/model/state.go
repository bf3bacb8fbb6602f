// Package model 定义工作流层的状态与输入输出模型
package model

import "fmt"

// Role 生成角色
type Role string

const (
	RolePlanner  Role = "planner"
	RoleWriter   Role = "writer"
	RoleReviewer Role = "reviewer"
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePlanner, RoleWriter, RoleReviewer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown agent role: %q", s)
	}
}

// Granularity 规划粒度
type Granularity string

const (
	GranularityNovel   Granularity = "novel"
	GranularityChapter Granularity = "chapter"
	GranularitySection Granularity = "section"
	GranularityFull    Granularity = "full"
)

// ParseGranularity 解析粒度字符串，空串回退到 full
func ParseGranularity(s string) (Granularity, error) {
	if s == "" {
		return GranularityFull, nil
	}
	switch Granularity(s) {
	case GranularityNovel, GranularityChapter, GranularitySection, GranularityFull:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("unknown granularity: %q", s)
	}
}

// State 一次引擎调用的瞬态工作流状态，请求结束即丢弃
// 有意义字段写回大纲库/记忆库由引擎显式负责，不随状态自动持久化
type State struct {
	Topic       string
	Project     string
	Granularity Granularity

	// 当前位置（1 基序号）
	ChapterOrder int
	SectionOrder int
	ChapterTitle string

	// 分层大纲累积字段
	NovelOutline     string
	ChapterStructure string
	SectionOutline   string

	Draft          string
	Critique       string
	RevisionNumber int
}

// Decision 修订循环的继续决策
type Decision string

const (
	DecisionRevise Decision = "revise"
	DecisionEnd    Decision = "end"
)

// ResultField 角色完成后承载结果的状态字段名，用于终止事件的结构化结果
func ResultField(role Role, g Granularity) string {
	switch role {
	case RoleWriter:
		return "draft"
	case RoleReviewer:
		return "critique"
	default:
		switch g {
		case GranularityChapter:
			return "chapter_structure"
		case GranularitySection:
			return "section_outline"
		default:
			return "novel_outline"
		}
	}
}
