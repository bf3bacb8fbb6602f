package agent

import (
	"reflect"
	"testing"

	wfmodel "novelcraft/internal/workflow/model"
)

func TestParseTitleLinesChapter(t *testing.T) {
	raw := "第1章：初入宗门\n第2章 试炼\n\n3. 突破\n"
	got := ParseTitleLines(raw, wfmodel.TitleKindChapter)
	want := []string{"初入宗门", "试炼", "突破"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("titles = %v, want %v", got, want)
	}
}

func TestParseTitleLinesSection(t *testing.T) {
	raw := "第1节：相遇\n2：对峙\n第3节 转折"
	got := ParseTitleLines(raw, wfmodel.TitleKindSection)
	want := []string{"相遇", "对峙", "转折"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("titles = %v, want %v", got, want)
	}
}

func TestParseTitleLinesDropsEmptyAfterCleaning(t *testing.T) {
	got := ParseTitleLines("第1章\n   \n", wfmodel.TitleKindChapter)
	if len(got) != 0 {
		t.Fatalf("titles = %v, want none", got)
	}
}

func TestParseTitleLinesPlainList(t *testing.T) {
	got := ParseTitleLines("觉醒\n远行", wfmodel.TitleKindChapter)
	want := []string{"觉醒", "远行"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("titles = %v, want %v", got, want)
	}
}
