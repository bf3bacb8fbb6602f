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

// TitlesChain 标题提取链：从大纲文本中提取章节/小节标题列表
type TitlesChain struct {
	factory workflowport.ChatModelFactory
}

// NewTitlesChain 创建标题提取链
func NewTitlesChain(factory workflowport.ChatModelFactory) *TitlesChain {
	return &TitlesChain{factory: factory}
}

// Invoke 单次调用，返回按行分隔的标题文本
func (c *TitlesChain) Invoke(ctx context.Context, in *wfmodel.TitlesInput) (*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Outline) == "" {
		return nil, fmt.Errorf("outline is required")
	}
	ctx = einoobs.WithAgent(ctx, "titles")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	id := workflowprompt.PromptTitlesChapterV1
	if in.Kind == wfmodel.TitleKindSection {
		id = workflowprompt.PromptTitlesSectionV1
	}
	tpl, err := promptRegistry.ChatTemplate(id)
	if err != nil {
		return nil, err
	}
	msgs, err := tpl.Format(ctx, map[string]any{
		"outline": in.Outline,
	})
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
