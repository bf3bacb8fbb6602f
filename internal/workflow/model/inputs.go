package model

// PlannerInput 架构师链输入
type PlannerInput struct {
	Topic        string
	Granularity  Granularity
	ChapterOrder int
	SectionOrder int
	Context      string
	ChapterTitle string
	Provider     string
}

// WriterInput 作家链输入
type WriterInput struct {
	// Guide 指导文本：section 粒度为小节大纲，否则为总大纲
	Guide    string
	Context  string
	Critique string
	Provider string
}

// ReviewerInput 评论家链输入
type ReviewerInput struct {
	Draft    string
	Provider string
}

// TitleKind 标题提取对象
type TitleKind string

const (
	TitleKindChapter TitleKind = "chapter"
	TitleKindSection TitleKind = "section"
)

// TitlesInput 标题提取链输入
type TitlesInput struct {
	Outline  string
	Kind     TitleKind
	Provider string
}
