package agent

import (
	"context"
	"regexp"
	"strings"

	"novelcraft/internal/workflow/chain"
	wfmodel "novelcraft/internal/workflow/model"
	apperrors "novelcraft/pkg/errors"
)

// leadingNumber 匹配行首编号及其后的分隔符，如 "1. " "2：" "3 "
var leadingNumber = regexp.MustCompile(`^\d+[:：.\s]+`)

// TitleExtractor 从大纲文本中提取章节/小节标题列表
type TitleExtractor struct {
	titles *chain.TitlesChain
}

// NewTitleExtractor 创建标题提取器
func NewTitleExtractor(titles *chain.TitlesChain) *TitleExtractor {
	return &TitleExtractor{titles: titles}
}

// Extract 调用标题提取链并解析为干净的标题切片
// 模型输出格式并不稳定，解析端负责剥离编号与"第N章/节"装饰
func (t *TitleExtractor) Extract(ctx context.Context, outline string, kind wfmodel.TitleKind, provider string) ([]string, error) {
	msg, err := t.titles.Invoke(ctx, &wfmodel.TitlesInput{
		Outline:  outline,
		Kind:     kind,
		Provider: provider,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "title extraction failed")
	}
	return ParseTitleLines(msg.Content, kind), nil
}

// ParseTitleLines 将模型输出的逐行标题清洗为纯标题文本，空行与清洗后为空的行被丢弃
func ParseTitleLines(raw string, kind wfmodel.TitleKind) []string {
	marker := "章"
	if kind == wfmodel.TitleKindSection {
		marker = "节"
	}

	titles := make([]string, 0, 8)
	for _, line := range strings.Split(raw, "\n") {
		title := strings.TrimSpace(line)
		if title == "" {
			continue
		}

		// "第3章：xxx" 这类装饰全部剥掉，剩下的行首编号再单独处理
		title = strings.ReplaceAll(title, "第", "")
		title = strings.ReplaceAll(title, marker, "")
		title = strings.ReplaceAll(title, "：", ":")
		title = strings.ReplaceAll(title, "、", "")
		title = strings.TrimSpace(leadingNumber.ReplaceAllString(title, ""))

		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
