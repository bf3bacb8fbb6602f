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

// WriterChain 作家链：依据指导方案撰写小节正文
type WriterChain struct {
	factory workflowport.ChatModelFactory
}

// NewWriterChain 创建作家链
func NewWriterChain(factory workflowport.ChatModelFactory) *WriterChain {
	return &WriterChain{factory: factory}
}

// Invoke 单次调用，返回完整草稿
func (c *WriterChain) Invoke(ctx context.Context, in *wfmodel.WriterInput) (*schema.Message, error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	ctx = einoobs.WithAgent(ctx, "writer")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	msgs, err := formatWriterMessages(ctx, in)
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
func (c *WriterChain) Stream(ctx context.Context, in *wfmodel.WriterInput) (*schema.StreamReader[*schema.Message], error) {
	if err := c.validate(in); err != nil {
		return nil, err
	}
	ctx = einoobs.WithAgent(ctx, "writer")

	chatModel, err := c.factory.Get(ctx, in.Provider)
	if err != nil {
		return nil, err
	}

	msgs, err := formatWriterMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, msgs)
}

func (c *WriterChain) validate(in *wfmodel.WriterInput) error {
	if c == nil || c.factory == nil {
		return fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Guide) == "" {
		return fmt.Errorf("section outline is required")
	}
	return nil
}

func formatWriterMessages(ctx context.Context, in *wfmodel.WriterInput) ([]*schema.Message, error) {
	tpl, err := promptRegistry.ChatTemplate(workflowprompt.PromptWriterV1)
	if err != nil {
		return nil, err
	}
	critiqueBlock := ""
	if strings.TrimSpace(in.Critique) != "" {
		critiqueBlock = "【之前的批评（如有，请修复）】" + strings.TrimSpace(in.Critique)
	}
	return tpl.Format(ctx, map[string]any{
		"section_outline": in.Guide,
		"context":         in.Context,
		"critique_block":  critiqueBlock,
	})
}
