package dto

// ChatRequest 流式角色调用请求
// current_chapter/current_section 为实体 ID，服务端解析为序号后再进入工作流
type ChatRequest struct {
	Topic       string `json:"topic" binding:"required"`
	ProjectName string `json:"project_name" binding:"required"`

	Agent       string `json:"agent,omitempty"`
	Granularity string `json:"granularity,omitempty"`

	ChapterTitle   string `json:"chapter_title,omitempty"`
	Critique       string `json:"critique,omitempty"`
	SectionOutline string `json:"section_outline,omitempty"`
	Draft          string `json:"draft,omitempty"`
	CurrentChapter string `json:"current_chapter,omitempty"`
	CurrentSection string `json:"current_section,omitempty"`

	Provider string `json:"provider,omitempty"`
}

// ExtractTitlesRequest 标题提取请求
type ExtractTitlesRequest struct {
	Outline     string `json:"outline" binding:"required"`
	ExtractType string `json:"extract_type,omitempty"`
}

// ExtractTitlesResponse 标题提取响应
type ExtractTitlesResponse struct {
	Titles []string `json:"titles"`
	Count  int      `json:"count"`
}
