package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"novelcraft/internal/domain/entity"
	"novelcraft/internal/domain/repository"
	"novelcraft/internal/workflow/chain"
	wfmodel "novelcraft/internal/workflow/model"
	apperrors "novelcraft/pkg/errors"
	"novelcraft/pkg/logger"
	"novelcraft/pkg/metrics"
)

// maxRevisions 修订循环上限，revision_number 超过该值即强制结束
const maxRevisions = 2

// Engine 工作流引擎：角色分派、自动转移与规划结果的写回
// 所有状态都是请求级的，引擎本身不持有跨请求的可变状态
type Engine struct {
	planner  *chain.PlannerChain
	writer   *chain.WriterChain
	reviewer *chain.ReviewerChain

	assembler *ContextAssembler
	memories  repository.MemoryRepository
	projects  repository.ProjectRepository
	chapters  repository.ChapterRepository
	sections  repository.SectionRepository

	genTimeout time.Duration
}

// NewEngine 创建工作流引擎
func NewEngine(
	planner *chain.PlannerChain,
	writer *chain.WriterChain,
	reviewer *chain.ReviewerChain,
	assembler *ContextAssembler,
	memories repository.MemoryRepository,
	projects repository.ProjectRepository,
	chapters repository.ChapterRepository,
	sections repository.SectionRepository,
	genTimeout time.Duration,
) *Engine {
	if genTimeout <= 0 {
		genTimeout = 300 * time.Second
	}
	return &Engine{
		planner:    planner,
		writer:     writer,
		reviewer:   reviewer,
		assembler:  assembler,
		memories:   memories,
		projects:   projects,
		chapters:   chapters,
		sections:   sections,
		genTimeout: genTimeout,
	}
}

// Run 按角色分派一次引擎调用
func (e *Engine) Run(ctx context.Context, role wfmodel.Role, st *wfmodel.State) error {
	switch role {
	case wfmodel.RolePlanner:
		return e.Plan(ctx, st)
	case wfmodel.RoleWriter:
		return e.Write(ctx, st)
	case wfmodel.RoleReviewer:
		return e.Review(ctx, st)
	default:
		return apperrors.ErrInvalidParam.WithDetail("unknown agent role: " + string(role))
	}
}

// Plan 架构师步骤
// 成功后写回记忆库与大纲库（均非致命），section 粒度自动转入 Write
func (e *Engine) Plan(ctx context.Context, st *wfmodel.State) error {
	start := time.Now()

	in := &wfmodel.PlannerInput{
		Topic:        st.Topic,
		Granularity:  st.Granularity,
		ChapterOrder: st.ChapterOrder,
		SectionOrder: st.SectionOrder,
		Context:      e.assembler.PlannerContext(ctx, st),
		ChapterTitle: st.ChapterTitle,
	}

	msg, err := e.generate(ctx, func(ctx context.Context) (*schema.Message, error) {
		return e.planner.Invoke(ctx, in)
	})
	if err != nil {
		metrics.AgentInvocationsTotal.WithLabelValues("planner", string(st.Granularity), "error").Inc()
		return err
	}

	metrics.AgentInvocationsTotal.WithLabelValues("planner", string(st.Granularity), "success").Inc()
	metrics.AgentGenerationDuration.WithLabelValues("planner").Observe(time.Since(start).Seconds())

	content := msg.Content
	e.PersistPlanMemory(ctx, st, content)
	e.persistPlanOutline(ctx, st, content)
	applyPlanResult(st, content)

	// 只有 section 粒度在规划后自动进入写作，其余粒度到此即终态
	if st.Granularity == wfmodel.GranularitySection {
		return e.Write(ctx, st)
	}
	return nil
}

// Write 作家步骤：指导文本取小节大纲（section 粒度）或累积的总大纲
func (e *Engine) Write(ctx context.Context, st *wfmodel.State) error {
	start := time.Now()

	guide := st.NovelOutline
	if st.Granularity == wfmodel.GranularitySection {
		guide = st.SectionOutline
	}

	in := &wfmodel.WriterInput{
		Guide:    guide,
		Context:  e.assembler.WriterContext(ctx, st.Project),
		Critique: st.Critique,
	}

	msg, err := e.generate(ctx, func(ctx context.Context) (*schema.Message, error) {
		return e.writer.Invoke(ctx, in)
	})
	if err != nil {
		metrics.AgentInvocationsTotal.WithLabelValues("writer", string(st.Granularity), "error").Inc()
		return err
	}

	metrics.AgentInvocationsTotal.WithLabelValues("writer", string(st.Granularity), "success").Inc()
	metrics.AgentGenerationDuration.WithLabelValues("writer").Observe(time.Since(start).Seconds())

	st.Draft = msg.Content
	st.RevisionNumber++
	return nil
}

// Review 评论家步骤：批评意见写入状态，继续/结束交由 Decide 判定
func (e *Engine) Review(ctx context.Context, st *wfmodel.State) error {
	start := time.Now()

	in := &wfmodel.ReviewerInput{Draft: st.Draft}

	msg, err := e.generate(ctx, func(ctx context.Context) (*schema.Message, error) {
		return e.reviewer.Invoke(ctx, in)
	})
	if err != nil {
		metrics.AgentInvocationsTotal.WithLabelValues("reviewer", string(st.Granularity), "error").Inc()
		return err
	}

	metrics.AgentInvocationsTotal.WithLabelValues("reviewer", string(st.Granularity), "success").Inc()
	metrics.AgentGenerationDuration.WithLabelValues("reviewer").Observe(time.Since(start).Seconds())

	st.Critique = msg.Content
	return nil
}

// generate 带整体超时执行一次生成，超时与提供商错误统一映射为应用错误
func (e *Engine) generate(ctx context.Context, fn func(context.Context) (*schema.Message, error)) (*schema.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, e.genTimeout)
	defer cancel()

	msg, err := fn(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.ErrGenerationTimeout.WithError(err)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "generation failed")
	}
	return msg, nil
}

// PersistPlanMemory 规划结果写入记忆库，失败仅记录日志
func (e *Engine) PersistPlanMemory(ctx context.Context, st *wfmodel.State, content string) {
	if content == "" {
		return
	}
	tags := entity.MemoryTags{
		Type:    "plan_" + string(st.Granularity),
		Chapter: st.ChapterOrder,
		Section: st.SectionOrder,
	}
	if _, err := e.memories.Add(ctx, st.Project, content, tags); err != nil {
		logger.Warn(ctx, "failed to store plan in memory",
			"project", st.Project, "granularity", string(st.Granularity), "error", err.Error())
	}
}

// persistPlanOutline 规划结果按粒度写回大纲库
// 目标章节/小节不存在时跳过写入，所有失败都只记录日志
func (e *Engine) persistPlanOutline(ctx context.Context, st *wfmodel.State, content string) {
	switch st.Granularity {
	case wfmodel.GranularityNovel, wfmodel.GranularityFull:
		if err := e.projects.UpdateOutline(ctx, st.Project, content); err != nil {
			logger.Warn(ctx, "failed to save project outline",
				"project", st.Project, "error", err.Error())
		}

	case wfmodel.GranularityChapter:
		chapter, err := e.chapters.GetByOrder(ctx, st.Project, st.ChapterOrder)
		if err != nil || chapter == nil {
			logger.Warn(ctx, "chapter not found, skipping outline save",
				"project", st.Project, "chapter_order", st.ChapterOrder)
			return
		}
		if _, err := e.chapters.Update(ctx, st.Project, chapter.ID, repository.ChapterPatch{Outline: &content}); err != nil {
			logger.Warn(ctx, "failed to save chapter outline",
				"project", st.Project, "chapter_id", chapter.ID, "error", err.Error())
		}

	case wfmodel.GranularitySection:
		chapter, err := e.chapters.GetByOrder(ctx, st.Project, st.ChapterOrder)
		if err != nil || chapter == nil {
			logger.Warn(ctx, "chapter not found, skipping outline save",
				"project", st.Project, "chapter_order", st.ChapterOrder)
			return
		}
		section, err := e.sections.GetByOrder(ctx, st.Project, chapter.ID, st.SectionOrder)
		if err != nil || section == nil {
			logger.Warn(ctx, "section not found, skipping outline save",
				"project", st.Project, "chapter_id", chapter.ID, "section_order", st.SectionOrder)
			return
		}
		if _, err := e.sections.Update(ctx, st.Project, chapter.ID, section.ID, repository.SectionPatch{Outline: &content}); err != nil {
			logger.Warn(ctx, "failed to save section outline",
				"project", st.Project, "section_id", section.ID, "error", err.Error())
		}
	}
}

// applyPlanResult 按粒度更新状态的大纲字段并重置修订计数
func applyPlanResult(st *wfmodel.State, content string) {
	st.RevisionNumber = 0

	switch st.Granularity {
	case wfmodel.GranularityNovel:
		st.NovelOutline = content
	case wfmodel.GranularityChapter:
		st.ChapterStructure = content
	case wfmodel.GranularitySection:
		st.SectionOutline = content
	default: // full：章节与小节层级包含在总策划内容中
		st.NovelOutline = content
		st.ChapterStructure = "（包含在总策划内容中）"
		st.SectionOutline = "（包含在总策划内容中）"
	}
}

// Decide 修订循环的继续决策（纯函数）
// revision_number 超过上限即结束，否则由批评意见是否表示认可决定
func Decide(critique string, revisionNumber int) wfmodel.Decision {
	if revisionNumber > maxRevisions {
		return wfmodel.DecisionEnd
	}
	if containsApproval(critique) {
		return wfmodel.DecisionEnd
	}
	return wfmodel.DecisionRevise
}

// containsApproval 判定批评意见是否表示认可
// 沿用子串匹配语义以保持兼容，收紧判定只需要改这里
func containsApproval(critique string) bool {
	return strings.Contains(critique, "APPROVE")
}
