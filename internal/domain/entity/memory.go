package entity

// 记忆条目的 type 标签取值
const (
	MemoryTypeGeneral     = "general"
	MemoryTypePlanNovel   = "plan_novel"
	MemoryTypePlanChapter = "plan_chapter"
	MemoryTypePlanSection = "plan_section"
)

// MemoryTags 记忆条目的标签，type 为判别字段
// chapter/section 为 0 表示不关联具体章节/小节
type MemoryTags struct {
	Type    string `json:"type"`
	Chapter int    `json:"chapter,omitempty"`
	Section int    `json:"section,omitempty"`
}

// MemoryEntry 向量记忆条目，由记忆服务持有
type MemoryEntry struct {
	ID   string     `json:"id"`
	Text string     `json:"text"`
	Tags MemoryTags `json:"tags"`
}
