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

// ReviewerChain 评论家链：审阅草稿并产出批评意见
type ReviewerChain struct {
	factory workflowport.ChatModelFactory
}

// NewReviewerChain 创建评论家链
func NewReviewerChain(factory workflowport.ChatModelFactory) *ReviewerChain {
	return &ReviewerChain{factory: factory}
}

// Invoke 单次调用，返回完整批评意见
func (c *ReviewerChain) Invoke(ctx context.Context, in *wfmodel.ReviewerInput) (*schema.Message, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	ctx = einoobs.WithAgent(ctx, "reviewer")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	msgs, err := formatReviewerMessages(ctx, in)
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
func (c *ReviewerChain) Stream(ctx context.Context, in *wfmodel.ReviewerInput) (*schema.StreamReader[*schema.Message], error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	ctx = einoobs.WithAgent(ctx, "reviewer")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	msgs, err := formatReviewerMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, msgs)
}

func (c *ReviewerChain) validate(in *wfmodel.ReviewerInput) error {
	if c == nil || c.factory == nil {
		return fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Draft) == "" {
		return fmt.Errorf("draft is required")
	}
	return nil
}

func formatReviewerMessages(ctx context.Context, in *wfmodel.ReviewerInput) ([]*schema.Message, error) {
	tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptReviewerV1)
	if err != nil {
		return nil, err
	}
	return tpl.Format(ctx, map[string]any{
		"draft": in.Draft,
	})
}
