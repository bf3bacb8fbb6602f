package agent

import (
	"context"
	"testing"

	wfmodel "novelcraft/internal/workflow/model"
)

func collectEvents(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	for e := range ch {
		events = append(events, e)
	}
	return events
}

func TestSessionWriterEventOrder(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{chunks: []string{"Hello", " world"}})
	session := NewSession(fx.engine, 8)

	st := &wfmodel.State{Topic: "test", Project: "demo", Granularity: wfmodel.GranularitySection, SectionOutline: "大纲"}
	events := collectEvents(t, session.Run(context.Background(), wfmodel.RoleWriter, st))

	if len(events) != 4 {
		t.Fatalf("events = %d, want 4 (start + 2 stream + end)", len(events))
	}
	if events[0].Agent != "system" || events[0].Data["message"] == "" {
		t.Fatalf("first event = %+v, want system start", events[0])
	}
	if events[1].Type != "stream" || events[1].Content != "Hello" {
		t.Fatalf("second event = %+v", events[1])
	}
	if events[2].Type != "stream" || events[2].Content != " world" {
		t.Fatalf("third event = %+v", events[2])
	}

	end := events[3]
	if end.Agent != "writer" || end.Type != "end" {
		t.Fatalf("end event = %+v", end)
	}
	if got := end.Data["draft"]; got != "Hello world" {
		t.Fatalf("end data draft = %v", got)
	}
	if st.Draft != "Hello world" {
		t.Fatalf("state draft = %q", st.Draft)
	}
	if st.RevisionNumber != 1 {
		t.Fatalf("revision number = %d, want 1", st.RevisionNumber)
	}
}

func TestSessionPlannerPersistsMemoryOnly(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{chunks: []string{"第一章", "：开端"}})
	session := NewSession(fx.engine, 8)

	st := &wfmodel.State{Topic: "玄幻", Project: "demo", Granularity: wfmodel.GranularityNovel}
	events := collectEvents(t, session.Run(context.Background(), wfmodel.RolePlanner, st))

	end := events[len(events)-1]
	if end.Type != "end" {
		t.Fatalf("last event = %+v, want end", end)
	}
	if got := end.Data["novel_outline"]; got != "第一章：开端" {
		t.Fatalf("end data = %v", got)
	}

	added := fx.memories.snapshot()
	if len(added) != 1 {
		t.Fatalf("memory entries = %d, want 1", len(added))
	}
	if added[0].Text != "第一章：开端" {
		t.Fatalf("memory text = %q", added[0].Text)
	}
	// 流式路径只写记忆库，不回写大纲库
	if len(fx.projects.outlines) != 0 {
		t.Fatalf("streaming path must not write the outline store, got %v", fx.projects.outlines)
	}
}

func TestSessionReviewerEndField(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{chunks: []string{"APPROVE"}})
	session := NewSession(fx.engine, 8)

	st := &wfmodel.State{Project: "demo", Draft: "草稿", Granularity: wfmodel.GranularitySection}
	events := collectEvents(t, session.Run(context.Background(), wfmodel.RoleReviewer, st))

	end := events[len(events)-1]
	if got := end.Data["critique"]; got != "APPROVE" {
		t.Fatalf("end data critique = %v", got)
	}
	if st.Critique != "APPROVE" {
		t.Fatalf("state critique = %q", st.Critique)
	}
}

func TestSessionUnknownRoleEmitsError(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{chunks: []string{"x"}})
	session := NewSession(fx.engine, 8)

	events := collectEvents(t, session.Run(context.Background(), wfmodel.Role("editor"), &wfmodel.State{}))
	last := events[len(events)-1]
	if last.Error == "" {
		t.Fatalf("expected error event, got %+v", last)
	}
}

func TestSessionSkipsEmptyChunks(t *testing.T) {
	fx := newEngineFixture(&fakeChatModel{chunks: []string{"", "内容", ""}})
	session := NewSession(fx.engine, 8)

	st := &wfmodel.State{Project: "demo", Draft: "草稿"}
	events := collectEvents(t, session.Run(context.Background(), wfmodel.RoleReviewer, st))

	var streamCount int
	for _, e := range events {
		if e.Type == "stream" {
			streamCount++
		}
	}
	if streamCount != 1 {
		t.Fatalf("stream events = %d, want 1", streamCount)
	}
}
