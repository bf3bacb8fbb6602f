package handler

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"novelcraft/internal/application/agent"
	"novelcraft/internal/domain/repository"
	"novelcraft/internal/interfaces/http/dto"
	wfmodel "novelcraft/internal/workflow/model"
	"novelcraft/pkg/logger"
)

// ChatHandler 流式角色调用处理器
// 事件以 data-only SSE 帧下发，流末尾固定输出 data: [DONE]
type ChatHandler struct {
	session  *agent.Session
	chapters repository.ChapterRepository
	sections repository.SectionRepository
}

// NewChatHandler 创建流式对话处理器
func NewChatHandler(session *agent.Session, chapters repository.ChapterRepository, sections repository.SectionRepository) *ChatHandler {
	return &ChatHandler{session: session, chapters: chapters, sections: sections}
}

// Chat 启动一次流式角色调用
func (h *ChatHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	agentName := req.Agent
	if agentName == "" {
		agentName = string(wfmodel.RolePlanner)
	}
	role, err := wfmodel.ParseRole(agentName)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	granularityName := req.Granularity
	if granularityName == "" {
		granularityName = string(wfmodel.GranularityNovel)
	}
	granularity, err := wfmodel.ParseGranularity(granularityName)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	st := &wfmodel.State{
		Topic:          req.Topic,
		Project:        req.ProjectName,
		Granularity:    granularity,
		ChapterOrder:   1,
		SectionOrder:   1,
		ChapterTitle:   req.ChapterTitle,
		SectionOutline: req.SectionOutline,
		Draft:          req.Draft,
		Critique:       req.Critique,
	}
	h.resolveOrders(c, &req, st)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := h.session.Run(c.Request.Context(), role, st)

	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			fmt.Fprint(w, "data: [DONE]\n\n")
			return false
		}
		payload, err := json.Marshal(event)
		if err != nil {
			logger.Error(c.Request.Context(), "failed to marshal stream event", err)
			return true
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		return true
	})
}

// resolveOrders 将请求中的章节/小节 ID 解析为 1 基序号，解析失败保持默认值 1
func (h *ChatHandler) resolveOrders(c *gin.Context, req *dto.ChatRequest, st *wfmodel.State) {
	ctx := c.Request.Context()

	if req.CurrentChapter != "" {
		chapter, err := h.chapters.Get(ctx, req.ProjectName, req.CurrentChapter)
		if err != nil || chapter == nil {
			logger.Warn(ctx, "chapter lookup failed, using default order",
				"project", req.ProjectName, "chapter_id", req.CurrentChapter)
		} else {
			st.ChapterOrder = chapter.Order
			if st.ChapterTitle == "" {
				st.ChapterTitle = chapter.Title
			}
		}
	}

	if req.CurrentChapter != "" && req.CurrentSection != "" {
		section, err := h.sections.Get(ctx, req.ProjectName, req.CurrentChapter, req.CurrentSection)
		if err != nil || section == nil {
			logger.Warn(ctx, "section lookup failed, using default order",
				"project", req.ProjectName, "section_id", req.CurrentSection)
		} else {
			st.SectionOrder = section.Order
		}
	}
}
