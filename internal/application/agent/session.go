package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"

	wfmodel "novelcraft/internal/workflow/model"
	"novelcraft/pkg/logger"
	"novelcraft/pkg/metrics"
)

// Event 流式会话对外的单个事件帧
// start 帧只有 agent+data，stream 帧带 content，end 帧带 data，
// 失败时只有顶层 error 字段
type Event struct {
	Agent   string         `json:"agent,omitempty"`
	Type    string         `json:"type,omitempty"`
	Content string         `json:"content,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Session 将一次角色调用包装为有序事件流
// 生产者协程读取 Eino StreamReader 并推入有界通道，
// 消费方（HTTP 处理器）负责 SSE 帧封装与 [DONE] 哨兵
type Session struct {
	engine *Engine
	buffer int
}

// NewSession 创建流式会话包装器
func NewSession(engine *Engine, buffer int) *Session {
	if buffer <= 0 {
		buffer = 64
	}
	return &Session{engine: engine, buffer: buffer}
}

// Run 启动一次流式角色调用，返回的通道在终止事件后关闭
// 客户端取消（ctx 结束）会停止生产者并抑制任何待执行的持久化：
// 要么完整生成并持久化，要么什么都不持久化
func (s *Session) Run(ctx context.Context, role wfmodel.Role, st *wfmodel.State) <-chan Event {
	events := make(chan Event, s.buffer)

	go func() {
		defer close(events)

		// 起始帧只带 agent 与 data，与流式帧区分
		if !s.emit(ctx, events, Event{
			Agent: "system",
			Data:  map[string]any{"message": fmt.Sprintf("开始%s工作...", role)},
		}) {
			return
		}

		reader, err := s.openStream(ctx, role, st)
		if err != nil {
			s.emit(ctx, events, Event{Error: err.Error()})
			return
		}
		defer reader.Close()

		var full strings.Builder
		for {
			msg, recvErr := reader.Recv()
			if errors.Is(recvErr, io.EOF) {
				break
			}
			if recvErr != nil {
				s.emit(ctx, events, Event{Error: recvErr.Error()})
				return
			}
			if msg.Content == "" {
				continue
			}

			full.WriteString(msg.Content)
			metrics.StreamChunksTotal.WithLabelValues(string(role)).Inc()
			if !s.emit(ctx, events, Event{Agent: string(role), Type: "stream", Content: msg.Content}) {
				// 客户端断开：不持久化截断的文本
				logger.Info(ctx, "stream cancelled by client, skipping persistence",
					"agent", string(role), "project", st.Project)
				return
			}
		}

		content := full.String()

		// 完整累积之后、终止事件之前持久化（仅架构师角色），
		// 只读取终止事件的客户端也能观察到一致的记忆状态
		if role == wfmodel.RolePlanner && content != "" {
			s.engine.PersistPlanMemory(ctx, st, content)
		}
		applyStreamResult(role, st, content)

		s.emit(ctx, events, Event{
			Agent: string(role),
			Type:  "end",
			Data:  map[string]any{wfmodel.ResultField(role, st.Granularity): content},
		})
	}()

	return events
}

// openStream 按角色组装输入并打开底层生成流
func (s *Session) openStream(ctx context.Context, role wfmodel.Role, st *wfmodel.State) (*schema.StreamReader[*schema.Message], error) {
	switch role {
	case wfmodel.RolePlanner:
		return s.engine.planner.Stream(ctx, &wfmodel.PlannerInput{
			Topic:        st.Topic,
			Granularity:  st.Granularity,
			ChapterOrder: st.ChapterOrder,
			SectionOrder: st.SectionOrder,
			Context:      s.engine.assembler.PlannerContext(ctx, st),
			ChapterTitle: st.ChapterTitle,
		})

	case wfmodel.RoleWriter:
		guide := st.SectionOutline
		if guide == "" {
			guide = st.Topic
		}
		return s.engine.writer.Stream(ctx, &wfmodel.WriterInput{
			Guide:    guide,
			Context:  s.engine.assembler.WriterContext(ctx, st.Project),
			Critique: st.Critique,
		})

	case wfmodel.RoleReviewer:
		draft := st.Draft
		if draft == "" {
			draft = st.Topic
		}
		return s.engine.reviewer.Stream(ctx, &wfmodel.ReviewerInput{Draft: draft})

	default:
		return nil, fmt.Errorf("unknown agent: %s", role)
	}
}

// emit 向事件通道发送一帧，ctx 结束时返回 false
func (s *Session) emit(ctx context.Context, events chan<- Event, e Event) bool {
	select {
	case events <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

// applyStreamResult 将流式累积结果写入对应的状态字段
func applyStreamResult(role wfmodel.Role, st *wfmodel.State, content string) {
	switch role {
	case wfmodel.RolePlanner:
		applyPlanResult(st, content)
	case wfmodel.RoleWriter:
		st.Draft = content
		st.RevisionNumber++
	case wfmodel.RoleReviewer:
		st.Critique = content
	}
}
