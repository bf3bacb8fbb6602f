package dto

// CreateChapterRequest 创建章节请求，order 由存储层分配
type CreateChapterRequest struct {
	Title   string `json:"title" binding:"required"`
	Outline string `json:"outline,omitempty"`
}

// UpdateChapterRequest 章节字段级更新，缺省字段保持不变
type UpdateChapterRequest struct {
	Title   *string `json:"title,omitempty"`
	Outline *string `json:"outline,omitempty"`
}
