package dto

// CreateSectionRequest 创建小节请求，order 由存储层分配
type CreateSectionRequest struct {
	Title   string `json:"title" binding:"required"`
	Outline string `json:"outline,omitempty"`
}

// UpdateSectionRequest 小节字段级更新，缺省字段保持不变
type UpdateSectionRequest struct {
	Title   *string `json:"title,omitempty"`
	Outline *string `json:"outline,omitempty"`
	Content *string `json:"content,omitempty"`
}
