// Package agent 实现多角色小说生成工作流的应用层编排
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"novelcraft/internal/domain/repository"
	wfmodel "novelcraft/internal/workflow/model"
	"novelcraft/pkg/logger"
)

// 作家角色的固定检索查询，用于保证语气与设定的连续性
const writerGroundingQuery = "character setting style"

// ContextAssembler 按粒度为生成 Prompt 组装文本上下文
// 记忆检索是尽力而为的：超时或出错都降级为空上下文，绝不让角色调用失败
type ContextAssembler struct {
	memories repository.MemoryRepository
	timeout  time.Duration
}

// NewContextAssembler 创建上下文组装器
func NewContextAssembler(memories repository.MemoryRepository, timeout time.Duration) *ContextAssembler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ContextAssembler{memories: memories, timeout: timeout}
}

// PlannerContext 架构师上下文
// chapter 粒度优先使用调用方提供的总大纲，否则检索项目记忆；
// section 粒度优先使用章节结构，否则检索章节大纲；
// novel/full 粒度除主题外不需要上下文
func (a *ContextAssembler) PlannerContext(ctx context.Context, st *wfmodel.State) string {
	switch st.Granularity {
	case wfmodel.GranularityChapter:
		if st.NovelOutline != "" {
			return st.NovelOutline
		}
		query := fmt.Sprintf("%s 总大纲 世界观 角色", st.Project)
		return a.search(ctx, st.Project, query, 3, "\n\n")

	case wfmodel.GranularitySection:
		if st.ChapterStructure != "" {
			return st.ChapterStructure
		}
		query := fmt.Sprintf("%s 章节大纲", st.Topic)
		return a.search(ctx, st.Project, query, 2, "\n\n")

	default:
		return ""
	}
}

// WriterContext 作家角色的固定检索上下文，与大纲上下文相互独立
func (a *ContextAssembler) WriterContext(ctx context.Context, project string) string {
	return a.search(ctx, project, writerGroundingQuery, 3, "\n")
}

// search 带超时检索记忆并按排名拼接，空结果与失败都返回空串
func (a *ContextAssembler) search(ctx context.Context, project, query string, k int, sep string) string {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results, err := a.memories.Search(ctx, project, query, k)
	if err != nil {
		logger.Warn(ctx, "memory retrieval failed, falling back to empty context",
			"project", project, "query", query, "error", err.Error())
		return ""
	}
	return strings.Join(results, sep)
}
