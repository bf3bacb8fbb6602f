// Package chain 按角色封装 Eino 生成链，每条链支持单次调用与流式两种模式
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	einoobs "novelcraft/internal/observability/eino"
	wfmodel "novelcraft/internal/workflow/model"
	workflowport "novelcraft/internal/workflow/port"
	workflowprompt "novelcraft/internal/workflow/prompt"
)

var promptRegistry = workflowprompt.NewRegistry()

// PlannerChain 架构师链：按粒度生成总大纲 / 章节结构 / 小节写作大纲
type PlannerChain struct {
	factory workflowport.ChatModelFactory
}

// NewPlannerChain 创建架构师链
func NewPlannerChain(factory workflowport.ChatModelFactory) *PlannerChain {
	return &PlannerChain{factory: factory}
}

// Invoke 单次调用，返回完整结果
func (c *PlannerChain) Invoke(ctx context.Context, in *wfmodel.PlannerInput) (*schema.Message, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	ctx = einoobs.WithAgent(ctx, "planner")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	msgs, err := formatPlannerMessages(ctx, in)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

// Stream 返回 Eino StreamReader，调用方负责 Close()
func (c *PlannerChain) Stream(ctx context.Context, in *wfmodel.PlannerInput) (*schema.StreamReader[*schema.Message], error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	ctx = einoobs.WithAgent(ctx, "planner")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	msgs, err := formatPlannerMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, msgs)
}

func (c *PlannerChain) validate(in *wfmodel.PlannerInput) error {
	if c == nil || c.factory == nil {
		return fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return fmt.Errorf("input is nil")
	}
	return nil
}

func formatPlannerMessages(ctx context.Context, in *wfmodel.PlannerInput) ([]*schema.Message, error) {
	switch in.Granularity {
	case wfmodel.GranularityChapter:
		tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptPlannerChapterV1)
		if err != nil {
			return nil, err
		}
		// 章节标题缺省时退回主题本身
		displayTitle := strings.TrimSpace(in.ChapterTitle)
		if displayTitle == "" {
			displayTitle = strings.TrimSpace(in.Topic)
		}
		userInputBlock := ""
		if strings.TrimSpace(in.Topic) != "" {
			userInputBlock = "\n【用户的想法和要求】\n" + strings.TrimSpace(in.Topic)
		}
		return tpl.Format(ctx, map[string]any{
			"chapter_title":    displayTitle,
			"context":          in.Context,
			"user_input_block": userInputBlock,
		})

	case wfmodel.GranularitySection:
		tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptPlannerSectionV1)
		if err != nil {
			return nil, err
		}
		return tpl.Format(ctx, map[string]any{
			"current_chapter": in.ChapterOrder,
			"current_section": in.SectionOrder,
			"context":         in.Context,
		})

	default:
		// novel 与 full 共用总大纲模板
		tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptPlannerNovelV1)
		if err != nil {
			return nil, err
		}
		return tpl.Format(ctx, map[string]any{
			"topic": strings.TrimSpace(in.Topic),
		})
	}
}
