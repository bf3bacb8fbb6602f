package handler

import (
	"github.com/gin-gonic/gin"

	"novelcraft/internal/application/agent"
	"novelcraft/internal/interfaces/http/dto"
	wfmodel "novelcraft/internal/workflow/model"
)

// TitlesHandler 标题提取处理器
type TitlesHandler struct {
	extractor *agent.TitleExtractor
}

// NewTitlesHandler 创建标题提取处理器
func NewTitlesHandler(extractor *agent.TitleExtractor) *TitlesHandler {
	return &TitlesHandler{extractor: extractor}
}

// Extract 从大纲文本中提取章节/小节标题列表
func (h *TitlesHandler) Extract(c *gin.Context) {
	var req dto.ExtractTitlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	kind := wfmodel.TitleKindChapter
	if req.ExtractType == "section" {
		kind = wfmodel.TitleKindSection
	}

	titles, err := h.extractor.Extract(c.Request.Context(), req.Outline, kind, "")
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.ExtractTitlesResponse{
		Titles: titles,
		Count:  len(titles),
	})
}
